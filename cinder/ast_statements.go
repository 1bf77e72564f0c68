package cinder

// Stmt is a statement inside a function body.
type Stmt interface {
	Node
	stmtNode()
}

type CompoundStmt struct {
	Stmts    []Stmt
	position Position
}

func (s *CompoundStmt) stmtNode()     {}
func (s *CompoundStmt) Pos() Position { return s.position }

// DeclStmt introduces one or more declarations inside a block.
type DeclStmt struct {
	Decls    []Decl
	position Position
}

func (s *DeclStmt) stmtNode()     {}
func (s *DeclStmt) Pos() Position { return s.position }

// ExprStmt evaluates an expression for its effects. Synthesized statements
// come from declaration extraction and never yield a printed value.
type ExprStmt struct {
	X           Expr
	Synthesized bool
	position    Position
}

func (s *ExprStmt) stmtNode()     {}
func (s *ExprStmt) Pos() Position { return s.position }

// NullStmt is a lone `;`.
type NullStmt struct {
	position Position
}

func (s *NullStmt) stmtNode()     {}
func (s *NullStmt) Pos() Position { return s.position }

type ReturnStmt struct {
	Result   Expr
	position Position
}

func (s *ReturnStmt) stmtNode()     {}
func (s *ReturnStmt) Pos() Position { return s.position }

type IfStmt struct {
	Cond     Expr
	Then     Stmt
	Else     Stmt
	position Position
}

func (s *IfStmt) stmtNode()     {}
func (s *IfStmt) Pos() Position { return s.position }

type WhileStmt struct {
	Cond     Expr
	Body     Stmt
	position Position
}

func (s *WhileStmt) stmtNode()     {}
func (s *WhileStmt) Pos() Position { return s.position }

type ForStmt struct {
	Init     Stmt
	Cond     Expr
	Post     Expr
	Body     Stmt
	position Position
}

func (s *ForStmt) stmtNode()     {}
func (s *ForStmt) Pos() Position { return s.position }

type BreakStmt struct {
	position Position
}

func (s *BreakStmt) stmtNode()     {}
func (s *BreakStmt) Pos() Position { return s.position }

type ContinueStmt struct {
	position Position
}

func (s *ContinueStmt) stmtNode()     {}
func (s *ContinueStmt) Pos() Position { return s.position }
