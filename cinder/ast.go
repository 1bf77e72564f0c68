package cinder

// Node is implemented by every syntax tree element.
type Node interface {
	Pos() Position
}

// Decl is a named declaration owned by a DeclContext.
type Decl interface {
	Node
	DeclName() string
	Parent() DeclContext
	setParent(DeclContext)
}

// DeclContext is a declaration that owns a scope: the translation unit,
// namespaces, classes and functions.
type DeclContext interface {
	ContextName() string
	ParentContext() DeclContext
	scope() *Scope
}

// StorageClass records the storage specifier written on a declaration.
type StorageClass int

const (
	StorageNone StorageClass = iota
	StorageStatic
	StorageExtern
)

// TypeRef is a type as spelled in source, resolved by semantic analysis.
type TypeRef struct {
	Name      string
	Qualifier []string
	position  Position
}

func (t *TypeRef) Pos() Position { return t.position }

func (t *TypeRef) String() string {
	if len(t.Qualifier) == 0 {
		return t.Name
	}
	return joinQualified(t.Qualifier, t.Name)
}

// TranslationUnit is the root declaration context of a session.
type TranslationUnit struct {
	decls []Decl
	table *Scope
}

func newTranslationUnit() *TranslationUnit {
	return &TranslationUnit{table: newScope()}
}

func (tu *TranslationUnit) ContextName() string        { return "" }
func (tu *TranslationUnit) ParentContext() DeclContext { return nil }
func (tu *TranslationUnit) scope() *Scope              { return tu.table }

// Decls returns the top-level declarations in the order they were added.
func (tu *TranslationUnit) Decls() []Decl {
	return append([]Decl(nil), tu.decls...)
}

type declBase struct {
	position Position
	parent   DeclContext
}

func (d *declBase) Pos() Position            { return d.position }
func (d *declBase) Parent() DeclContext      { return d.parent }
func (d *declBase) setParent(dc DeclContext) { d.parent = dc }

// VarDecl declares a global, local, parameter or field.
type VarDecl struct {
	declBase
	Name     string
	TypeRef  *TypeRef
	Type     Type
	Init     Expr
	Storage  StorageClass
	ExternC  bool
	IsParam  bool
	IsField  bool
	Global   bool
	FieldIdx int
}

func (d *VarDecl) DeclName() string { return d.Name }

// IsDefinition reports whether the declaration allocates storage.
func (d *VarDecl) IsDefinition() bool {
	return d.Storage != StorageExtern || d.Init != nil
}

// FuncDecl declares a function, method or destructor.
type FuncDecl struct {
	declBase
	Name         string
	Params       []*VarDecl
	ResultRef    *TypeRef
	Result       Type
	Body         *CompoundStmt
	ExternC      bool
	Static       bool
	Class        *ClassDecl
	IsDestructor bool
	Wrapper      bool
	// Pure marks builtins whose only effect is their result.
	Pure bool

	// lookupContext overrides where unqualified names in the body are
	// resolved; nil means the semantic parent.
	lookupContext DeclContext
	source        string
	table         *Scope
}

func (d *FuncDecl) DeclName() string           { return d.Name }
func (d *FuncDecl) ContextName() string        { return d.Name }
func (d *FuncDecl) ParentContext() DeclContext { return d.parent }
func (d *FuncDecl) scope() *Scope {
	if d.table == nil {
		d.table = newScope()
	}
	return d.table
}

// IsMethod reports whether the function needs a receiver object.
func (d *FuncDecl) IsMethod() bool { return d.Class != nil && !d.Static }

// ParamTypes returns the resolved parameter types.
func (d *FuncDecl) ParamTypes() []Type {
	types := make([]Type, len(d.Params))
	for i, p := range d.Params {
		types[i] = p.Type
	}
	return types
}

// ClassDecl declares a class or struct.
type ClassDecl struct {
	declBase
	Name       string
	Struct     bool
	Fields     []*VarDecl
	Methods    []*FuncDecl
	Destructor *FuncDecl
	complete   bool
	table      *Scope
}

func (d *ClassDecl) DeclName() string           { return d.Name }
func (d *ClassDecl) ContextName() string        { return d.Name }
func (d *ClassDecl) ParentContext() DeclContext { return d.parent }
func (d *ClassDecl) scope() *Scope {
	if d.table == nil {
		d.table = newScope()
	}
	return d.table
}

// NamespaceDecl declares one occurrence of a namespace block. Reopened
// namespaces share the scope of the first occurrence.
type NamespaceDecl struct {
	declBase
	Name     string
	Decls    []Decl
	Original *NamespaceDecl
	table    *Scope
}

func (d *NamespaceDecl) DeclName() string           { return d.Name }
func (d *NamespaceDecl) ContextName() string        { return d.Name }
func (d *NamespaceDecl) ParentContext() DeclContext { return d.parent }
func (d *NamespaceDecl) scope() *Scope {
	if d.Original != nil {
		return d.Original.scope()
	}
	if d.table == nil {
		d.table = newScope()
	}
	return d.table
}

// DirectiveDecl is a `#` line at the top level.
type DirectiveDecl struct {
	declBase
	Kind string
	Arg  string
}

func (d *DirectiveDecl) DeclName() string { return "#" + d.Kind }

// Unit is the parse result of one fragment.
type Unit struct {
	Decls  []Decl
	Source string
	File   string
}

func joinQualified(qualifier []string, name string) string {
	out := ""
	for _, q := range qualifier {
		out += q + "::"
	}
	return out + name
}

// QualifiedName spells a declaration with its enclosing namespaces and
// classes.
func QualifiedName(d Decl) string {
	var parts []string
	for dc := d.Parent(); dc != nil; dc = dc.ParentContext() {
		if _, ok := dc.(*TranslationUnit); ok {
			break
		}
		parts = append([]string{dc.ContextName()}, parts...)
	}
	return joinQualified(parts, d.DeclName())
}
