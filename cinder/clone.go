package cinder

// identRewriter may substitute an identifier while an expression is copied.
// callee is set for the function name of a call. Returning nil keeps a copy
// of the identifier.
type identRewriter func(id *Ident, callee bool) Expr

// cloneExpr deep-copies the syntax of e. Types are copied as they are.
func cloneExpr(e Expr) Expr {
	return rewriteExpr(e, nil)
}

func rewriteExpr(e Expr, rw identRewriter) Expr {
	return rewriteNode(e, rw, false)
}

func rewriteNode(e Expr, rw identRewriter, callee bool) Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *IntLit:
		c := *n
		return &c
	case *FloatLit:
		c := *n
		return &c
	case *StringLit:
		c := *n
		return &c
	case *BoolLit:
		c := *n
		return &c
	case *HostValueExpr:
		c := *n
		return &c
	case *HostRefExpr:
		c := *n
		return &c
	case *Ident:
		if rw != nil {
			if repl := rw(n, callee); repl != nil {
				return repl
			}
		}
		c := *n
		c.Qualifier = append([]string(nil), n.Qualifier...)
		return &c
	case *UnaryExpr:
		c := *n
		c.X = rewriteNode(n.X, rw, false)
		return &c
	case *IncDecExpr:
		c := *n
		c.X = rewriteNode(n.X, rw, false)
		return &c
	case *BinaryExpr:
		c := *n
		c.X = rewriteNode(n.X, rw, false)
		c.Y = rewriteNode(n.Y, rw, false)
		return &c
	case *AssignExpr:
		c := *n
		c.Target = rewriteNode(n.Target, rw, false)
		c.Value = rewriteNode(n.Value, rw, false)
		return &c
	case *CondExpr:
		c := *n
		c.Cond = rewriteNode(n.Cond, rw, false)
		c.Then = rewriteNode(n.Then, rw, false)
		c.Else = rewriteNode(n.Else, rw, false)
		return &c
	case *CallExpr:
		c := *n
		c.Fun = rewriteNode(n.Fun, rw, true)
		c.Args = make([]Expr, len(n.Args))
		for i, arg := range n.Args {
			c.Args[i] = rewriteNode(arg, rw, false)
		}
		c.Recv = nil
		return &c
	case *MemberExpr:
		c := *n
		c.X = rewriteNode(n.X, rw, false)
		return &c
	case *ConvExpr:
		c := *n
		c.X = rewriteNode(n.X, rw, false)
		return &c
	case *ThisFieldExpr:
		c := *n
		return &c
	case *DynamicExpr:
		c := *n
		c.Template = rewriteNode(n.Template, nil, false)
		c.Placeholders = append([]Placeholder(nil), n.Placeholders...)
		return &c
	default:
		return e
	}
}

// walkExpr visits e and its operands depth first.
func walkExpr(e Expr, visit func(e Expr, callee bool)) {
	walkNode(e, visit, false)
}

func walkNode(e Expr, visit func(Expr, bool), callee bool) {
	if e == nil {
		return
	}
	visit(e, callee)
	switch n := e.(type) {
	case *UnaryExpr:
		walkNode(n.X, visit, false)
	case *IncDecExpr:
		walkNode(n.X, visit, false)
	case *BinaryExpr:
		walkNode(n.X, visit, false)
		walkNode(n.Y, visit, false)
	case *AssignExpr:
		walkNode(n.Target, visit, false)
		walkNode(n.Value, visit, false)
	case *CondExpr:
		walkNode(n.Cond, visit, false)
		walkNode(n.Then, visit, false)
		walkNode(n.Else, visit, false)
	case *CallExpr:
		walkNode(n.Fun, visit, true)
		for _, arg := range n.Args {
			walkNode(arg, visit, false)
		}
	case *MemberExpr:
		walkNode(n.X, visit, false)
	case *ConvExpr:
		walkNode(n.X, visit, false)
	}
}
