package cinder

// Expr is an expression. Type is valid after semantic analysis.
type Expr interface {
	Node
	Type() Type
	setType(Type)
}

type exprBase struct {
	ty       Type
	position Position
}

func (e *exprBase) Type() Type     { return e.ty }
func (e *exprBase) setType(t Type) { e.ty = t }
func (e *exprBase) Pos() Position  { return e.position }

func at(pos Position) exprBase { return exprBase{position: pos} }

type IntLit struct {
	exprBase
	Value int64
}

type FloatLit struct {
	exprBase
	Value float64
}

type StringLit struct {
	exprBase
	Value string
}

type BoolLit struct {
	exprBase
	Value bool
}

// Ident names a variable or function, optionally qualified (`N::x`) or
// anchored at the translation unit (`::x`).
type Ident struct {
	exprBase
	Name      string
	Qualifier []string
	Global    bool
	Ref       Decl
}

func (e *Ident) String() string {
	name := joinQualified(e.Qualifier, e.Name)
	if e.Global {
		return "::" + name
	}
	return name
}

type UnaryExpr struct {
	exprBase
	Op TokenType
	X  Expr
}

// IncDecExpr is `++x`, `x++`, `--x` or `x--`.
type IncDecExpr struct {
	exprBase
	Op      TokenType
	X       Expr
	Postfix bool
}

type BinaryExpr struct {
	exprBase
	Op TokenType
	X  Expr
	Y  Expr
}

type AssignExpr struct {
	exprBase
	Op     TokenType
	Target Expr
	Value  Expr
}

type CondExpr struct {
	exprBase
	Cond Expr
	Then Expr
	Else Expr
}

// CallExpr calls a free function, a static method or, when Recv is set, a
// method on an object.
type CallExpr struct {
	exprBase
	Fun  Expr
	Args []Expr
	Func *FuncDecl
	Recv Expr
}

type MemberExpr struct {
	exprBase
	X     Expr
	Name  string
	Field *VarDecl
}

// ConvExpr is an implicit conversion inserted by semantic analysis.
type ConvExpr struct {
	exprBase
	X Expr
}

// ThisFieldExpr reads a field of the receiver inside a method body.
type ThisFieldExpr struct {
	exprBase
	Field *VarDecl
}

// HostValueExpr is a constant supplied by the host, such as a value
// returned by dynamic lookup callbacks.
type HostValueExpr struct {
	exprBase
	Value Value
}

// HostRefExpr aliases storage owned by a running frame.
type HostRefExpr struct {
	exprBase
	Name string
	Slot *GenericValue
}

// Placeholder marks a name inside a dynamic expression template. Local
// placeholders are bound to the storage of a local variable; the others are
// resolved through Callbacks.LookupObject.
type Placeholder struct {
	ID    int
	Name  string
	Local *VarDecl
}

// DynamicExpr defers a full expression with unresolved names to run time.
type DynamicExpr struct {
	exprBase
	Template     Expr
	Placeholders []Placeholder
	Want         Type
	Context      DeclContext
}
