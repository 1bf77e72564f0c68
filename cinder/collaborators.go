package cinder

// NativeFunc implements a symbol in Go. Arguments arrive in declaration
// order, already converted to the parameter types.
type NativeFunc func(args []GenericValue) (GenericValue, error)

// LazyFunctionCreator is consulted for symbols the program image does not
// define. It reports false when it cannot provide name either.
type LazyFunctionCreator func(name string) (NativeFunc, bool)

// Frontend compiles fragments against one persistent symbol table.
type Frontend interface {
	Parse(src Source) (*Unit, error)
	// Check analyzes unit and inserts its declarations. Insertions since
	// the last Mark can be undone with Rollback.
	Check(unit *Unit, opts CompilationOptions) ([]Decl, error)
	Mark() undoMark
	Rollback(m undoMark)
	Commit()
	TranslationUnit() *TranslationUnit
	// ReplaceBody is the one mutation allowed on a checked function: the
	// wrapper synthesizer uses it to turn a trailing expression into a
	// return.
	ReplaceBody(fn *FuncDecl, stmts []Stmt, result Type) error
	PushContext(dc DeclContext) func()
	Diagnostics() *Diagnostics
}

// Backend turns checked declarations into runnable code.
type Backend interface {
	Emit(decls []Decl) error
	Run(linkName string) (GenericValue, error)
	AddSymbol(name string, fn NativeFunc)
	InstallLazyFunctionCreator(fn LazyFunctionCreator)
	RunStaticInitializersOnce() error
	Symbols() []string
}

var (
	_ Frontend = (*frontend)(nil)
	_ Backend  = (*jit)(nil)
)
