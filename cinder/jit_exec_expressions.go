package cinder

import "strings"

func (exec *execution) eval(e Expr) (GenericValue, error) {
	switch n := e.(type) {
	case *IntLit:
		return GenericValue{IntVal: n.Value}, nil
	case *FloatLit:
		return GenericValue{FloatVal: n.Value}, nil
	case *StringLit:
		return GenericValue{StrVal: n.Value}, nil
	case *BoolLit:
		return boolGeneric(n.Value), nil
	case *HostValueExpr:
		return copyGeneric(n.Value.gv, n.Value.typ), nil
	case *HostRefExpr:
		return *n.Slot, nil
	case *Ident:
		v, ok := n.Ref.(*VarDecl)
		if !ok {
			return GenericValue{}, exec.errorAt(n.Pos(), "'%s' is not a variable", n)
		}
		slot, err := exec.varSlot(v, n.Pos())
		if err != nil {
			return GenericValue{}, err
		}
		return *slot, nil
	case *ThisFieldExpr:
		slot, err := exec.thisField(n)
		if err != nil {
			return GenericValue{}, err
		}
		return *slot, nil
	case *MemberExpr:
		slot, err := exec.memberSlot(n)
		if err != nil {
			return GenericValue{}, err
		}
		return *slot, nil
	case *UnaryExpr:
		return exec.evalUnary(n)
	case *IncDecExpr:
		return exec.evalIncDec(n)
	case *BinaryExpr:
		return exec.evalBinary(n)
	case *AssignExpr:
		return exec.evalAssign(n)
	case *CondExpr:
		cond, err := exec.evalCondition(n.Cond)
		if err != nil {
			return GenericValue{}, err
		}
		if cond {
			return exec.eval(n.Then)
		}
		return exec.eval(n.Else)
	case *CallExpr:
		return exec.evalCall(n)
	case *ConvExpr:
		gv, err := exec.eval(n.X)
		if err != nil {
			return GenericValue{}, err
		}
		out, err := convertGeneric(gv, n.X.Type(), n.Type())
		if err != nil {
			return GenericValue{}, exec.wrapError(err, n.Pos())
		}
		return out, nil
	case *DynamicExpr:
		if exec.jit.dynamic == nil {
			return GenericValue{}, exec.errorAt(n.Pos(), "dynamic lookup is not available")
		}
		gv, err := exec.jit.dynamic(n, exec)
		if err != nil {
			return GenericValue{}, exec.wrapError(err, n.Pos())
		}
		return gv, nil
	default:
		return GenericValue{}, exec.errorAt(e.Pos(), "unsupported expression %T", e)
	}
}

// lvalue returns the storage an assignable expression designates.
func (exec *execution) lvalue(e Expr) (*GenericValue, error) {
	switch n := e.(type) {
	case *Ident:
		v, ok := n.Ref.(*VarDecl)
		if !ok {
			return nil, exec.errorAt(n.Pos(), "expression is not assignable")
		}
		return exec.varSlot(v, n.Pos())
	case *ThisFieldExpr:
		return exec.thisField(n)
	case *MemberExpr:
		return exec.memberSlot(n)
	case *HostRefExpr:
		return n.Slot, nil
	default:
		return nil, exec.errorAt(e.Pos(), "expression is not assignable")
	}
}

func (exec *execution) thisField(n *ThisFieldExpr) (*GenericValue, error) {
	f := exec.current()
	if f == nil || f.this == nil {
		return nil, exec.errorAt(n.Pos(), "invalid use of member '%s' outside a method", n.Field.Name)
	}
	return &f.this.Fields[n.Field.FieldIdx], nil
}

func (exec *execution) memberSlot(n *MemberExpr) (*GenericValue, error) {
	obj, err := exec.object(n.X)
	if err != nil {
		return nil, err
	}
	return &obj.Fields[n.Field.FieldIdx], nil
}

// object evaluates an expression of class type to the instance itself.
// Reading a variable yields the shared *Object, so member writes reach the
// original storage.
func (exec *execution) object(e Expr) (*Object, error) {
	gv, err := exec.eval(e)
	if err != nil {
		return nil, err
	}
	obj, ok := gv.PtrVal.(*Object)
	if !ok || obj == nil {
		return nil, exec.errorAt(e.Pos(), "expression does not designate an object")
	}
	return obj, nil
}

func (exec *execution) evalUnary(n *UnaryExpr) (GenericValue, error) {
	x, err := exec.eval(n.X)
	if err != nil {
		return GenericValue{}, err
	}
	switch n.Op {
	case tokenBang:
		return boolGeneric(x.IntVal == 0), nil
	case tokenMinus:
		if n.Type().Kind == KindDouble {
			return GenericValue{FloatVal: -x.FloatVal}, nil
		}
		return GenericValue{IntVal: -x.IntVal}, nil
	default:
		return x, nil
	}
}

func (exec *execution) evalIncDec(n *IncDecExpr) (GenericValue, error) {
	slot, err := exec.lvalue(n.X)
	if err != nil {
		return GenericValue{}, err
	}
	old := *slot
	updated := old
	delta := int64(1)
	if n.Op == tokenDecrement {
		delta = -1
	}
	if n.Type().Kind == KindDouble {
		updated.FloatVal += float64(delta)
	} else {
		updated.IntVal += delta
	}
	*slot = updated
	if n.Postfix {
		return old, nil
	}
	return updated, nil
}

func (exec *execution) evalBinary(n *BinaryExpr) (GenericValue, error) {
	if n.Op == tokenAnd || n.Op == tokenOr {
		x, err := exec.evalCondition(n.X)
		if err != nil {
			return GenericValue{}, err
		}
		if (n.Op == tokenAnd && !x) || (n.Op == tokenOr && x) {
			return boolGeneric(x), nil
		}
		y, err := exec.evalCondition(n.Y)
		if err != nil {
			return GenericValue{}, err
		}
		return boolGeneric(y), nil
	}

	x, err := exec.eval(n.X)
	if err != nil {
		return GenericValue{}, err
	}
	y, err := exec.eval(n.Y)
	if err != nil {
		return GenericValue{}, err
	}
	return exec.applyBinary(n.Op, x, y, n.X.Type(), n.Pos())
}

// applyBinary computes x op y for operands of type t.
func (exec *execution) applyBinary(op TokenType, x, y GenericValue, t Type, pos Position) (GenericValue, error) {
	switch t.Kind {
	case KindString:
		cmp := strings.Compare(x.StrVal, y.StrVal)
		switch op {
		case tokenPlus:
			return GenericValue{StrVal: x.StrVal + y.StrVal}, nil
		default:
			return compareResult(op, cmp), nil
		}
	case KindDouble:
		a, b := x.FloatVal, y.FloatVal
		switch op {
		case tokenPlus:
			return GenericValue{FloatVal: a + b}, nil
		case tokenMinus:
			return GenericValue{FloatVal: a - b}, nil
		case tokenAsterisk:
			return GenericValue{FloatVal: a * b}, nil
		case tokenSlash:
			return GenericValue{FloatVal: a / b}, nil
		case tokenEQ:
			return boolGeneric(a == b), nil
		case tokenNotEQ:
			return boolGeneric(a != b), nil
		case tokenLT:
			return boolGeneric(a < b), nil
		case tokenLTE:
			return boolGeneric(a <= b), nil
		case tokenGT:
			return boolGeneric(a > b), nil
		case tokenGTE:
			return boolGeneric(a >= b), nil
		}
	case KindInt, KindBool:
		a, b := x.IntVal, y.IntVal
		var out int64
		switch op {
		case tokenPlus:
			out = a + b
		case tokenMinus:
			out = a - b
		case tokenAsterisk:
			out = a * b
		case tokenSlash, tokenPercent:
			if b == 0 {
				return GenericValue{}, exec.errorAt(pos, "division by zero")
			}
			if op == tokenSlash {
				out = a / b
			} else {
				out = a % b
			}
		default:
			cmp := 0
			if a < b {
				cmp = -1
			} else if a > b {
				cmp = 1
			}
			return compareResult(op, cmp), nil
		}
		if t.Kind == KindBool {
			return boolGeneric(out != 0), nil
		}
		return GenericValue{IntVal: out}, nil
	}
	return GenericValue{}, exec.errorAt(pos, "invalid operands of type '%s' to '%s'", t, op)
}

func compareResult(op TokenType, cmp int) GenericValue {
	switch op {
	case tokenEQ:
		return boolGeneric(cmp == 0)
	case tokenNotEQ:
		return boolGeneric(cmp != 0)
	case tokenLT:
		return boolGeneric(cmp < 0)
	case tokenLTE:
		return boolGeneric(cmp <= 0)
	case tokenGT:
		return boolGeneric(cmp > 0)
	case tokenGTE:
		return boolGeneric(cmp >= 0)
	default:
		return GenericValue{}
	}
}

var compoundOps = map[TokenType]TokenType{
	tokenPlusAssign:     tokenPlus,
	tokenMinusAssign:    tokenMinus,
	tokenAsteriskAssign: tokenAsterisk,
	tokenSlashAssign:    tokenSlash,
	tokenPercentAssign:  tokenPercent,
}

func (exec *execution) evalAssign(n *AssignExpr) (GenericValue, error) {
	slot, err := exec.lvalue(n.Target)
	if err != nil {
		return GenericValue{}, err
	}
	value, err := exec.eval(n.Value)
	if err != nil {
		return GenericValue{}, err
	}
	t := n.Target.Type()
	if n.Op == tokenAssign {
		*slot = copyGeneric(value, t)
		return *slot, nil
	}
	out, err := exec.applyBinary(compoundOps[n.Op], *slot, value, t, n.Pos())
	if err != nil {
		return GenericValue{}, err
	}
	*slot = out
	return out, nil
}

func (exec *execution) evalCall(n *CallExpr) (GenericValue, error) {
	fn := n.Func
	if fn == nil {
		return GenericValue{}, exec.errorAt(n.Pos(), "call to unresolved function")
	}

	var this *Object
	if fn.IsMethod() {
		if n.Recv != nil {
			obj, err := exec.object(n.Recv)
			if err != nil {
				return GenericValue{}, err
			}
			this = obj
		} else if f := exec.current(); f != nil {
			this = f.this
		}
		if this == nil {
			return GenericValue{}, exec.errorAt(n.Pos(), "call to method '%s' without an object", fn.Name)
		}
	}

	args := make([]GenericValue, len(n.Args))
	for i, arg := range n.Args {
		gv, err := exec.eval(arg)
		if err != nil {
			return GenericValue{}, err
		}
		args[i] = gv
	}

	code, native, err := exec.jit.resolveFunction(Mangle(fn))
	if err != nil {
		return GenericValue{}, exec.wrapError(err, n.Pos())
	}
	if native != nil {
		if err := exec.step(n.Pos()); err != nil {
			return GenericValue{}, err
		}
		out, err := native(args)
		if err != nil {
			return GenericValue{}, exec.wrapError(err, n.Pos())
		}
		return out, nil
	}
	return exec.callFunction(code, this, args, n.Pos())
}
