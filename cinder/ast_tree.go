package cinder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m1gwings/treedrawer/tree"
)

// RenderDecl draws the syntax tree of a declaration.
func RenderDecl(d Decl) string {
	root := tree.NewTree(tree.NodeString(declLabel(d)))
	addDeclChildren(root, d)
	return fmt.Sprint(root) + "\n"
}

// RenderTransaction draws every declaration of a transaction.
func RenderTransaction(tx *Transaction) string {
	var b strings.Builder
	for _, d := range tx.decls {
		b.WriteString(RenderDecl(d))
	}
	return b.String()
}

func declLabel(d Decl) string {
	switch decl := d.(type) {
	case *VarDecl:
		return "var " + decl.Name + ": " + decl.Type.String()
	case *FuncDecl:
		params := make([]string, len(decl.Params))
		for i, p := range decl.Params {
			params[i] = p.Type.String()
		}
		return "func " + QualifiedName(decl) + "(" + strings.Join(params, ", ") + ") " + decl.Result.String()
	case *ClassDecl:
		if decl.Struct {
			return "struct " + QualifiedName(decl)
		}
		return "class " + QualifiedName(decl)
	case *NamespaceDecl:
		return "namespace " + QualifiedName(decl)
	case *DirectiveDecl:
		return "#" + decl.Kind + " " + decl.Arg
	default:
		return fmt.Sprintf("%T", d)
	}
}

func addDeclChildren(node *tree.Tree, d Decl) {
	switch decl := d.(type) {
	case *VarDecl:
		if decl.Init != nil {
			addExpr(node, decl.Init)
		}
	case *FuncDecl:
		if decl.Body != nil {
			for _, stmt := range decl.Body.Stmts {
				addStmt(node, stmt)
			}
		}
	case *ClassDecl:
		for _, field := range decl.Fields {
			addDecl(node, field)
		}
		for _, method := range decl.Methods {
			addDecl(node, method)
		}
		if decl.Destructor != nil {
			addDecl(node, decl.Destructor)
		}
	case *NamespaceDecl:
		for _, member := range decl.Decls {
			addDecl(node, member)
		}
	}
}

func addDecl(parent *tree.Tree, d Decl) {
	addDeclChildren(parent.AddChild(tree.NodeString(declLabel(d))), d)
}

func addStmt(parent *tree.Tree, stmt Stmt) {
	switch s := stmt.(type) {
	case *CompoundStmt:
		node := parent.AddChild(tree.NodeString("{}"))
		for _, inner := range s.Stmts {
			addStmt(node, inner)
		}
	case *DeclStmt:
		for _, d := range s.Decls {
			addDecl(parent, d)
		}
	case *ExprStmt:
		addExpr(parent, s.X)
	case *NullStmt:
		parent.AddChild(tree.NodeString(";"))
	case *ReturnStmt:
		node := parent.AddChild(tree.NodeString("return"))
		if s.Result != nil {
			addExpr(node, s.Result)
		}
	case *IfStmt:
		node := parent.AddChild(tree.NodeString("if"))
		addExpr(node, s.Cond)
		addStmt(node, s.Then)
		if s.Else != nil {
			addStmt(node.AddChild(tree.NodeString("else")), s.Else)
		}
	case *WhileStmt:
		node := parent.AddChild(tree.NodeString("while"))
		addExpr(node, s.Cond)
		addStmt(node, s.Body)
	case *ForStmt:
		node := parent.AddChild(tree.NodeString("for"))
		if s.Init != nil {
			addStmt(node, s.Init)
		}
		if s.Cond != nil {
			addExpr(node, s.Cond)
		}
		if s.Post != nil {
			addExpr(node, s.Post)
		}
		addStmt(node, s.Body)
	case *BreakStmt:
		parent.AddChild(tree.NodeString("break"))
	case *ContinueStmt:
		parent.AddChild(tree.NodeString("continue"))
	}
}

func addExpr(parent *tree.Tree, e Expr) {
	switch n := e.(type) {
	case *IntLit:
		parent.AddChild(tree.NodeString(strconv.FormatInt(n.Value, 10)))
	case *FloatLit:
		parent.AddChild(tree.NodeString(formatFloat(n.Value)))
	case *StringLit:
		parent.AddChild(tree.NodeString(strconv.Quote(n.Value)))
	case *BoolLit:
		parent.AddChild(tree.NodeString(strconv.FormatBool(n.Value)))
	case *Ident:
		parent.AddChild(tree.NodeString(n.String()))
	case *ThisFieldExpr:
		parent.AddChild(tree.NodeString("this." + n.Field.Name))
	case *HostValueExpr:
		parent.AddChild(tree.NodeString("host " + n.Value.String()))
	case *HostRefExpr:
		parent.AddChild(tree.NodeString("&" + n.Name))
	case *UnaryExpr:
		addExpr(parent.AddChild(tree.NodeString(string(n.Op))), n.X)
	case *IncDecExpr:
		label := string(n.Op) + "x"
		if n.Postfix {
			label = "x" + string(n.Op)
		}
		addExpr(parent.AddChild(tree.NodeString(label)), n.X)
	case *BinaryExpr:
		node := parent.AddChild(tree.NodeString(string(n.Op)))
		addExpr(node, n.X)
		addExpr(node, n.Y)
	case *AssignExpr:
		node := parent.AddChild(tree.NodeString(string(n.Op)))
		addExpr(node, n.Target)
		addExpr(node, n.Value)
	case *CondExpr:
		node := parent.AddChild(tree.NodeString("?:"))
		addExpr(node, n.Cond)
		addExpr(node, n.Then)
		addExpr(node, n.Else)
	case *CallExpr:
		label := "call"
		if n.Func != nil {
			label = "call " + QualifiedName(n.Func)
		}
		node := parent.AddChild(tree.NodeString(label))
		if n.Recv != nil {
			addExpr(node, n.Recv)
		}
		for _, arg := range n.Args {
			addExpr(node, arg)
		}
	case *MemberExpr:
		addExpr(parent.AddChild(tree.NodeString("."+n.Name)), n.X)
	case *ConvExpr:
		addExpr(parent.AddChild(tree.NodeString("("+n.Type().String()+")")), n.X)
	case *DynamicExpr:
		names := make([]string, len(n.Placeholders))
		for i, ph := range n.Placeholders {
			names[i] = ph.Name
		}
		addExpr(parent.AddChild(tree.NodeString("dynamic["+strings.Join(names, ",")+"]")), n.Template)
	default:
		parent.AddChild(tree.NodeString(fmt.Sprintf("%T", e)))
	}
}
