package cinder

import "fmt"

// fullExpr checks a full expression and converts it to want when want is
// valid. With dynamic scoping active, an expression naming something that
// does not resolve becomes a DynamicExpr.
func (fc *funcChecker) fullExpr(e Expr, want Type) Expr {
	if fc.fe.dynamic {
		if unresolved := fc.unresolvedNames(e); len(unresolved) > 0 {
			return fc.makeDynamic(e, unresolved, want)
		}
	}
	e = fc.expr(e)
	if want.IsValid() {
		return fc.convert(e, want)
	}
	return e
}

func (fc *funcChecker) errorf(pos Position, format string, args ...any) {
	fc.fe.diags.errorf(pos, format, args...)
}

// convert inserts an implicit conversion of e to the type to.
func (fc *funcChecker) convert(e Expr, to Type) Expr {
	from := e.Type()
	switch {
	case !from.IsValid() || !to.IsValid():
		return e
	case from.Equal(to):
		return e
	case from.IsVoid():
		fc.errorf(e.Pos(), "cannot initialize a value of type '%s' with an expression of type 'void'", to)
		return e
	case implicitlyConvertible(from, to):
		conv := &ConvExpr{exprBase: at(e.Pos()), X: e}
		conv.setType(to)
		return conv
	default:
		fc.errorf(e.Pos(), "cannot convert '%s' to '%s'", from, to)
		return e
	}
}

func (fc *funcChecker) expr(e Expr) Expr {
	switch n := e.(type) {
	case *IntLit:
		n.setType(TypeInt)
	case *FloatLit:
		n.setType(TypeDouble)
	case *StringLit:
		n.setType(TypeString)
	case *BoolLit:
		n.setType(TypeBool)
	case *HostValueExpr:
		n.setType(n.Value.Type())
	case *HostRefExpr, *ConvExpr, *DynamicExpr, *ThisFieldExpr:
	case *Ident:
		return fc.ident(n)
	case *UnaryExpr:
		fc.unary(n)
	case *IncDecExpr:
		fc.incDec(n)
	case *BinaryExpr:
		fc.binary(n)
	case *AssignExpr:
		fc.assign(n)
	case *CondExpr:
		fc.conditional(n)
	case *CallExpr:
		fc.call(n)
	case *MemberExpr:
		fc.member(n)
	default:
		fc.errorf(e.Pos(), "unsupported expression")
	}
	return e
}

func (fc *funcChecker) ident(n *Ident) Expr {
	decls, msg := fc.resolve(n)
	if len(decls) == 0 {
		if msg == "" {
			msg = fmt.Sprintf("use of undeclared identifier '%s'", n)
		}
		fc.errorf(n.Pos(), "%s", msg)
		return n
	}
	switch d := decls[0].(type) {
	case *VarDecl:
		if d.IsField {
			if fc.fn == nil || !fc.fn.IsMethod() || fc.fn.Class != d.Parent() {
				fc.errorf(n.Pos(), "invalid use of non-static data member '%s'", d.Name)
				return n
			}
			field := &ThisFieldExpr{exprBase: at(n.Pos()), Field: d}
			field.setType(d.Type)
			return field
		}
		n.Ref = d
		n.setType(d.Type)
	case *FuncDecl:
		fc.errorf(n.Pos(), "reference to function '%s' must be called", n)
	default:
		fc.errorf(n.Pos(), "'%s' does not refer to a value", n)
	}
	return n
}

func (fc *funcChecker) unary(n *UnaryExpr) {
	n.X = fc.expr(n.X)
	t := n.X.Type()
	if !t.IsValid() {
		return
	}
	switch n.Op {
	case tokenBang:
		if !t.IsArithmetic() {
			fc.errorf(n.Pos(), "invalid argument type '%s' to unary expression", t)
			return
		}
		n.X = fc.convert(n.X, TypeBool)
		n.setType(TypeBool)
	default:
		if !t.IsArithmetic() {
			fc.errorf(n.Pos(), "invalid argument type '%s' to unary expression", t)
			return
		}
		if t.Kind == KindBool {
			n.X = fc.convert(n.X, TypeInt)
			t = TypeInt
		}
		n.setType(t)
	}
}

func (fc *funcChecker) incDec(n *IncDecExpr) {
	n.X = fc.expr(n.X)
	t := n.X.Type()
	if !t.IsValid() {
		return
	}
	if !isAssignable(n.X) {
		fc.errorf(n.Pos(), "expression is not assignable")
		return
	}
	if t.Kind != KindInt && t.Kind != KindDouble {
		fc.errorf(n.Pos(), "cannot increment value of type '%s'", t)
		return
	}
	n.setType(t)
}

func (fc *funcChecker) binary(n *BinaryExpr) {
	n.X = fc.expr(n.X)
	n.Y = fc.expr(n.Y)
	xt, yt := n.X.Type(), n.Y.Type()
	if !xt.IsValid() || !yt.IsValid() {
		return
	}
	invalid := func() {
		fc.errorf(n.Pos(), "invalid operands to binary expression ('%s' and '%s')", xt, yt)
	}

	switch n.Op {
	case tokenPlus, tokenMinus, tokenAsterisk, tokenSlash, tokenPercent:
		if n.Op == tokenPlus && xt.Kind == KindString && yt.Kind == KindString {
			n.setType(TypeString)
			return
		}
		if !xt.IsArithmetic() || !yt.IsArithmetic() {
			invalid()
			return
		}
		common := arithmeticResult(xt, yt)
		if n.Op == tokenPercent && common.Kind == KindDouble {
			invalid()
			return
		}
		n.X = fc.convert(n.X, common)
		n.Y = fc.convert(n.Y, common)
		n.setType(common)
	case tokenLT, tokenLTE, tokenGT, tokenGTE, tokenEQ, tokenNotEQ:
		switch {
		case xt.Kind == KindString && yt.Kind == KindString:
		case xt.IsArithmetic() && yt.IsArithmetic():
			common := arithmeticResult(xt, yt)
			if xt.Kind == KindBool && yt.Kind == KindBool {
				common = TypeBool
			}
			n.X = fc.convert(n.X, common)
			n.Y = fc.convert(n.Y, common)
		default:
			invalid()
			return
		}
		n.setType(TypeBool)
	case tokenAnd, tokenOr:
		if !xt.IsArithmetic() || !yt.IsArithmetic() {
			invalid()
			return
		}
		n.X = fc.convert(n.X, TypeBool)
		n.Y = fc.convert(n.Y, TypeBool)
		n.setType(TypeBool)
	default:
		invalid()
	}
}

func (fc *funcChecker) assign(n *AssignExpr) {
	n.Target = fc.expr(n.Target)
	n.Value = fc.expr(n.Value)
	tt, vt := n.Target.Type(), n.Value.Type()
	if !tt.IsValid() || !vt.IsValid() {
		return
	}
	if !isAssignable(n.Target) {
		fc.errorf(n.Pos(), "expression is not assignable")
		return
	}

	switch n.Op {
	case tokenAssign:
	case tokenPlusAssign:
		if !(tt.Kind == KindString && vt.Kind == KindString) && !(tt.IsArithmetic() && vt.IsArithmetic()) {
			fc.errorf(n.Pos(), "invalid operands to binary expression ('%s' and '%s')", tt, vt)
			return
		}
	case tokenPercentAssign:
		if tt.Kind != KindInt || !vt.IsArithmetic() || vt.Kind == KindDouble {
			fc.errorf(n.Pos(), "invalid operands to binary expression ('%s' and '%s')", tt, vt)
			return
		}
	default:
		if !tt.IsArithmetic() || !vt.IsArithmetic() {
			fc.errorf(n.Pos(), "invalid operands to binary expression ('%s' and '%s')", tt, vt)
			return
		}
	}
	n.Value = fc.convert(n.Value, tt)
	n.setType(tt)
}

func (fc *funcChecker) conditional(n *CondExpr) {
	n.Cond = fc.convert(fc.expr(n.Cond), TypeBool)
	n.Then = fc.expr(n.Then)
	n.Else = fc.expr(n.Else)
	tt, et := n.Then.Type(), n.Else.Type()
	if !tt.IsValid() || !et.IsValid() {
		return
	}
	switch {
	case tt.Equal(et):
		n.setType(tt)
	case tt.IsArithmetic() && et.IsArithmetic():
		common := arithmeticResult(tt, et)
		n.Then = fc.convert(n.Then, common)
		n.Else = fc.convert(n.Else, common)
		n.setType(common)
	default:
		fc.errorf(n.Pos(), "incompatible operand types ('%s' and '%s')", tt, et)
	}
}

func (fc *funcChecker) member(n *MemberExpr) {
	n.X = fc.expr(n.X)
	t := n.X.Type()
	if !t.IsValid() {
		return
	}
	if t.Kind != KindClass {
		fc.errorf(n.Pos(), "member reference base type '%s' is not a structure or class", t)
		return
	}
	decls := t.Class.scope().lookup(n.Name)
	if len(decls) == 0 {
		fc.errorf(n.Pos(), "no member named '%s' in '%s'", n.Name, t)
		return
	}
	field, ok := decls[0].(*VarDecl)
	if !ok {
		fc.errorf(n.Pos(), "reference to non-static member function '%s' must be called", n.Name)
		return
	}
	n.Field = field
	n.setType(field.Type)
}

// call resolves the callee of n among the visible overloads.
func (fc *funcChecker) call(n *CallExpr) {
	for i := range n.Args {
		n.Args[i] = fc.expr(n.Args[i])
		if !n.Args[i].Type().IsValid() {
			return
		}
	}

	var candidates []*FuncDecl
	var label string
	switch fun := n.Fun.(type) {
	case *Ident:
		label = fun.String()
		decls, msg := fc.resolve(fun)
		if len(decls) == 0 {
			if msg == "" {
				msg = fmt.Sprintf("use of undeclared identifier '%s'", fun)
			}
			fc.errorf(fun.Pos(), "%s", msg)
			return
		}
		for _, d := range decls {
			if f, ok := d.(*FuncDecl); ok {
				candidates = append(candidates, f)
			}
		}
		if len(candidates) == 0 {
			fc.errorf(fun.Pos(), "called object '%s' is not a function", fun)
			return
		}
	case *MemberExpr:
		fun.X = fc.expr(fun.X)
		t := fun.X.Type()
		if !t.IsValid() {
			return
		}
		if t.Kind != KindClass {
			fc.errorf(fun.Pos(), "member reference base type '%s' is not a structure or class", t)
			return
		}
		label = fun.Name
		for _, d := range t.Class.scope().lookup(fun.Name) {
			if f, ok := d.(*FuncDecl); ok && !f.IsDestructor {
				candidates = append(candidates, f)
			}
		}
		if len(candidates) == 0 {
			fc.errorf(fun.Pos(), "no member function named '%s' in '%s'", fun.Name, t)
			return
		}
		n.Recv = fun.X
	default:
		fc.errorf(n.Pos(), "called object is not a function")
		return
	}

	best := fc.resolveOverload(label, candidates, n.Args, n.Pos())
	if best == nil {
		return
	}
	if best.IsMethod() && n.Recv == nil {
		if fc.fn == nil || !fc.fn.IsMethod() || fc.fn.Class != best.Class {
			fc.errorf(n.Pos(), "call to non-static member function '%s' without an object argument", best.Name)
			return
		}
	}
	if best.Static {
		n.Recv = nil
	}
	n.Func = best
	for i, param := range best.Params {
		n.Args[i] = fc.convert(n.Args[i], param.Type)
	}
	n.setType(best.Result)
}

// conversion ranks used by overload resolution
const (
	rankExact = iota
	rankPromotion
	rankConversion
	rankNone
)

func conversionRank(from, to Type) int {
	switch {
	case from.Equal(to):
		return rankExact
	case from.IsDynamic() || to.IsDynamic():
		return rankPromotion
	case from.Kind == KindBool && to.Kind == KindInt, from.Kind == KindInt && to.Kind == KindDouble:
		return rankPromotion
	case implicitlyConvertible(from, to):
		return rankConversion
	default:
		return rankNone
	}
}

// resolveOverload picks the candidate whose parameters match args with the
// lowest total conversion rank. Equal best ranks are ambiguous.
func (fc *funcChecker) resolveOverload(name string, candidates []*FuncDecl, args []Expr, pos Position) *FuncDecl {
	var best *FuncDecl
	bestScore, ties := -1, 0
	for _, cand := range candidates {
		if len(cand.Params) != len(args) {
			continue
		}
		score := 0
		for i, param := range cand.Params {
			rank := conversionRank(args[i].Type(), param.Type)
			if rank == rankNone {
				score = -1
				break
			}
			score += rank
		}
		switch {
		case score < 0:
		case best == nil || score < bestScore:
			best, bestScore, ties = cand, score, 0
		case score == bestScore:
			ties++
		}
	}

	switch {
	case best == nil:
		fc.errorf(pos, "no matching function for call to '%s' with arguments (%s)", name, argTypeList(args))
		return nil
	case ties > 0:
		fc.errorf(pos, "call to '%s' is ambiguous", name)
		return nil
	}
	return best
}

func argTypeList(args []Expr) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		out += a.Type().String()
	}
	return out
}
