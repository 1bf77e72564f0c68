package cinder

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Version of the interpreter, reported by the CLI banner.
const Version = "0.4.0"

const inputFile = "<input>"

// Config controls output, logging and execution bounds of an Interpreter.
type Config struct {
	Stdout io.Writer
	Stderr io.Writer
	// Logger receives debug and error records; nil discards them.
	Logger *slog.Logger

	IncludePaths []string
	// ReadFile loads included files; nil uses os.ReadFile.
	ReadFile func(string) ([]byte, error)

	// SyntaxOnly compiles fragments for their diagnostics and never runs
	// them.
	SyntaxOnly    bool
	DynamicLookup bool
	PrintAST      bool

	// StepQuota bounds the statements one entry point may execute; zero
	// means unbounded.
	StepQuota      int
	RecursionLimit int
}

// Interpreter compiles and runs fragments of cinder C against one
// persistent program. It is not safe for concurrent use.
type Interpreter struct {
	cfg    Config
	logger *slog.Logger

	fe      *frontend
	be      *jit
	session *session
	names   nameGenerator

	cleanups  cleanupRegistry
	callbacks Callbacks
	dynamic   bool
	printing  ValuePrinting
	closed    bool
}

// LineResult is what ProcessLine reports for one line of input.
type LineResult struct {
	// Value is the captured value of a trailing expression, if any.
	Value Value
	// Decl is the first declaration the line introduced.
	Decl        Decl
	Transaction *Transaction
}

// NewInterpreter constructs an Interpreter with defaults applied and the
// builtin prelude installed.
func NewInterpreter(cfg Config) (*Interpreter, error) {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.StepQuota < 0 {
		cfg.StepQuota = 0
	}
	if cfg.RecursionLimit <= 0 {
		cfg.RecursionLimit = 1024
	}

	in := &Interpreter{
		cfg:      cfg,
		logger:   cfg.Logger,
		fe:       newFrontend(cfg.IncludePaths, cfg.ReadFile, cfg.Logger),
		be:       newJIT(cfg.StepQuota, cfg.RecursionLimit, cfg.Logger),
		dynamic:  cfg.DynamicLookup,
		printing: ValuePrintingAuto,
	}
	in.session = &session{
		fe:         in.fe,
		be:         in.be,
		syntaxOnly: cfg.SyntaxOnly,
		printAST:   cfg.PrintAST,
		debugOut:   cfg.Stdout,
		logger:     cfg.Logger,
	}
	in.be.dynamic = in.evaluateDynamic
	if err := in.installPrelude(); err != nil {
		return nil, fmt.Errorf("cinder: installing prelude: %w", err)
	}
	return in, nil
}

// MustNewInterpreter constructs an Interpreter or panics.
func MustNewInterpreter(cfg Config) *Interpreter {
	in, err := NewInterpreter(cfg)
	if err != nil {
		panic(err)
	}
	return in
}

func (in *Interpreter) options() CompilationOptions {
	return CompilationOptions{Debug: in.session.printAST}
}

// Declare compiles text as top-level declarations without wrapping it.
func (in *Interpreter) Declare(text string) (*Transaction, error) {
	if in.closed {
		return nil, ErrClosed
	}
	return in.declare(text, in.options())
}

func (in *Interpreter) declare(text string, opts CompilationOptions) (*Transaction, error) {
	tx, err := in.session.Compile(Source{Text: text, File: inputFile}, opts, unitHooks{})
	in.flushWarnings(err)
	return tx, err
}

// Evaluate runs text as the body of a function and returns the value of
// its trailing expression. Nothing is printed.
func (in *Interpreter) Evaluate(text string) (Value, error) {
	if in.closed {
		return Value{}, ErrClosed
	}
	opts := in.options()
	opts.ResultEvaluation = true
	opts.DynamicScoping = in.dynamic
	res, err := in.evaluate(text, opts, false)
	return res.Value, err
}

// Echo is Evaluate that also prints the value according to the value
// printing mode. A void trailing expression yields a void Value.
func (in *Interpreter) Echo(text string) (Value, error) {
	if in.closed {
		return Value{}, ErrClosed
	}
	opts := in.options()
	opts.ResultEvaluation = true
	opts.ValuePrinting = in.printing
	opts.DynamicScoping = in.dynamic
	res, err := in.evaluate(text, opts, true)
	return res.Value, err
}

// ProcessLine handles one line of interactive input. Text that must stay at
// the top level is declared; anything else is wrapped with its
// declarations hoisted into the program, run, and its value echoed.
func (in *Interpreter) ProcessLine(text string) (LineResult, error) {
	if in.closed {
		return LineResult{}, ErrClosed
	}
	opts := in.options()
	opts.DeclarationExtraction = true
	opts.MutedWarnings = []string{WarnUnusedExpr, WarnUnusedCall}
	if !CanWrap(text) {
		return in.processRaw(text, opts)
	}
	opts.ResultEvaluation = true
	opts.ValuePrinting = in.printing
	opts.DynamicScoping = in.dynamic
	return in.evaluate(text, opts, true)
}

// ProcessRawLine declares text without wrapping and reports its first
// declaration.
func (in *Interpreter) ProcessRawLine(text string) (LineResult, error) {
	if in.closed {
		return LineResult{}, ErrClosed
	}
	opts := in.options()
	opts.DeclarationExtraction = true
	return in.processRaw(text, opts)
}

func (in *Interpreter) processRaw(text string, opts CompilationOptions) (LineResult, error) {
	tx, err := in.declare(text, opts)
	if tx == nil {
		return LineResult{}, err
	}
	return LineResult{Decl: tx.FirstDecl(), Transaction: tx}, err
}

// EvaluateIn evaluates expr with names resolved from scope first and with
// dynamic lookup active. A nil scope is the translation unit.
func (in *Interpreter) EvaluateIn(expr string, scope DeclContext, echo bool) (Value, error) {
	if in.closed {
		return Value{}, ErrClosed
	}
	if scope != nil {
		restore := in.fe.PushContext(scope)
		defer restore()
	}
	opts := in.options()
	opts.ResultEvaluation = true
	opts.DynamicScoping = true
	if echo {
		opts.ValuePrinting = in.printing
	}
	res, err := in.evaluate(expr, opts, echo)
	return res.Value, err
}

func (in *Interpreter) evaluate(text string, opts CompilationOptions, echo bool) (LineResult, error) {
	if pos, ok := escapesWrapper(text); ok {
		return LineResult{}, &CompileError{Diagnostics: []Diagnostic{{
			Severity: SeverityError,
			Pos:      pos,
			Message:  "unmatched closing bracket",
			File:     inputFile,
			source:   text,
		}}}
	}
	w := newWrapper(in.names.next())
	src := Source{Text: wrapInput(text, w.name), Display: text, File: inputFile, LineOffset: -1}
	tx, err := in.session.Compile(src, opts, in.wrapperHooks(w, opts))
	in.flushWarnings(err)
	if err != nil {
		return LineResult{}, err
	}
	return in.execute(w, tx, opts, echo)
}

func (in *Interpreter) wrapperHooks(w *wrapper, opts CompilationOptions) unitHooks {
	return unitHooks{
		prepare: func(unit *Unit) error {
			if err := w.bind(unit); err != nil {
				return err
			}
			if opts.DeclarationExtraction {
				w.extractDeclarations(unit)
			}
			return nil
		},
		finalize: func([]Decl) error {
			w.dropDeducedInitializers()
			if !opts.ResultEvaluation {
				return nil
			}
			return w.capture(in.fe)
		},
	}
}

// execute runs a compiled wrapper and packages its result.
func (in *Interpreter) execute(w *wrapper, tx *Transaction, opts CompilationOptions, echo bool) (LineResult, error) {
	res := LineResult{Transaction: tx}
	if opts.DeclarationExtraction && len(w.hoisted) > 0 {
		res.Decl = w.hoisted[0]
	}
	if in.cfg.SyntaxOnly {
		return res, nil
	}

	restore := in.session.pushActive(tx)
	gv, err := in.runFunction(w.name)
	restore()
	if err != nil {
		return res, err
	}

	switch {
	case !w.result.IsValid():
	case w.result.IsVoid():
		if echo {
			res.Value = voidValue()
		}
	default:
		res.Value = newValue(gv, w.result)
	}
	if res.Value.IsValid() && shouldPrint(opts.ValuePrinting, w.suppressed) {
		if err := res.Value.Print(in.cfg.Stdout); err != nil {
			return res, err
		}
	}
	return res, nil
}

// flushWarnings writes the warnings of a successful compile to Stderr.
func (in *Interpreter) flushWarnings(err error) {
	if err != nil {
		in.logger.Debug("fragment rejected", "compile_error", isCompileError(err), "error", err)
		return
	}
	in.fe.Diagnostics().writeWarnings(in.cfg.Stderr)
}

// LookupDecl looks name up once in within, or in the translation unit when
// within is nil.
func (in *Interpreter) LookupDecl(name string, within DeclContext) NamedDeclResult {
	if within == nil {
		within = in.fe.TranslationUnit()
	}
	return lookupIn(within, name)
}

// LookupQualified resolves a name such as `A::B::c` from the translation
// unit.
func (in *Interpreter) LookupQualified(name string) NamedDeclResult {
	return lookupQualifiedName(in.fe.TranslationUnit(), name)
}

// LookupClass finds a namespace or a defined class by qualified name.
func (in *Interpreter) LookupClass(name string) NamedDeclResult {
	return lookupClassName(in.fe.TranslationUnit(), name)
}

// AddSymbol provides the code of a declared function from Go. name is the
// linkage name, as returned by Mangle.
func (in *Interpreter) AddSymbol(name string, fn NativeFunc) {
	in.be.AddSymbol(name, fn)
}

func (in *Interpreter) InstallLazyFunctionCreator(fn LazyFunctionCreator) {
	in.be.InstallLazyFunctionCreator(fn)
}

// LoadFile declares the contents of a source file, resolved like an
// `#include "path"` directive.
func (in *Interpreter) LoadFile(path string) (*Transaction, error) {
	if in.closed {
		return nil, ErrClosed
	}
	if strings.ContainsAny(path, "\"\n") {
		return nil, fmt.Errorf("cinder: invalid file name %q", path)
	}
	return in.declare(`#include "`+path+`"`, in.options())
}

func (in *Interpreter) AddIncludePath(dir string) {
	in.fe.AddIncludePath(dir)
}

func (in *Interpreter) IncludePaths() []string {
	return in.fe.IncludePaths()
}

// EnablePrintAST prints the syntax tree of every committed transaction to
// Stdout.
func (in *Interpreter) EnablePrintAST(enabled bool) {
	in.session.printAST = enabled
}

func (in *Interpreter) Transactions() []*Transaction {
	return in.session.Transactions()
}

func (in *Interpreter) LastTransaction() *Transaction {
	return in.session.LastTransaction()
}

func (in *Interpreter) LastTopLevelDecl() Decl {
	return in.session.LastTopLevelDecl()
}

// Diagnostics returns the messages of the last compile.
func (in *Interpreter) Diagnostics() []Diagnostic {
	return in.fe.Diagnostics().Items()
}

// Symbols lists the linkage names known to the program image.
func (in *Interpreter) Symbols() []string {
	return in.be.Symbols()
}

func (in *Interpreter) Version() string {
	return Version
}

// SetValuePrinting selects how Echo, ProcessLine and echoing EvaluateIn
// print captured values. The default is ValuePrintingAuto.
func (in *Interpreter) SetValuePrinting(mode ValuePrinting) {
	in.printing = mode
}

func (in *Interpreter) ValuePrinting() ValuePrinting {
	return in.printing
}

// ConfigSummary describes the execution bounds in effect.
func (in *Interpreter) ConfigSummary() string {
	return fmt.Sprintf("steps=%d recursion=%d dynamic_lookup=%t syntax_only=%t", in.cfg.StepQuota, in.cfg.RecursionLimit, in.dynamic, in.cfg.SyntaxOnly)
}
