package cinder

type control int

const (
	flowNormal control = iota
	flowBreak
	flowContinue
	flowReturn
)

func (exec *execution) callFunction(fn *FuncDecl, this *Object, args []GenericValue, pos Position) (GenericValue, error) {
	if fn.Body == nil {
		return GenericValue{}, exec.wrapError(&LinkError{Symbol: Mangle(fn)}, pos)
	}
	if err := exec.enter(fn, QualifiedName(fn), pos, this); err != nil {
		return GenericValue{}, err
	}
	defer exec.leave()

	f := exec.current()
	for i, param := range fn.Params {
		var arg GenericValue
		if i < len(args) {
			arg = args[i]
		}
		slot := copyGeneric(arg, param.Type)
		f.locals[param] = &slot
	}

	ctrl, result, err := exec.execBlock(fn.Body)
	if err != nil {
		return GenericValue{}, err
	}
	if ctrl != flowReturn && !fn.Result.IsVoid() {
		return exec.zeroValue(fn.Result)
	}
	return result, nil
}

func (exec *execution) execBlock(block *CompoundStmt) (control, GenericValue, error) {
	var (
		scoped []*VarDecl
		ctrl   control
		result GenericValue
		err    error
	)
	for _, stmt := range block.Stmts {
		if decl, ok := stmt.(*DeclStmt); ok {
			var declared []*VarDecl
			declared, err = exec.execDecl(decl)
			scoped = append(scoped, declared...)
			if err != nil {
				break
			}
			continue
		}
		ctrl, result, err = exec.execStmt(stmt)
		if err != nil || ctrl != flowNormal {
			break
		}
	}
	if derr := exec.destroyLocals(scoped, block.Pos()); err == nil {
		err = derr
	}
	return ctrl, result, err
}

func (exec *execution) execStmt(stmt Stmt) (control, GenericValue, error) {
	if err := exec.step(stmt.Pos()); err != nil {
		return flowNormal, GenericValue{}, err
	}

	switch s := stmt.(type) {
	case *CompoundStmt:
		return exec.execBlock(s)
	case *DeclStmt:
		// A declaration used as a whole statement goes out of scope at once.
		declared, err := exec.execDecl(s)
		if derr := exec.destroyLocals(declared, s.Pos()); err == nil {
			err = derr
		}
		return flowNormal, GenericValue{}, err
	case *ExprStmt:
		_, err := exec.eval(s.X)
		return flowNormal, GenericValue{}, err
	case *NullStmt:
		return flowNormal, GenericValue{}, nil
	case *ReturnStmt:
		if s.Result == nil {
			return flowReturn, GenericValue{}, nil
		}
		gv, err := exec.eval(s.Result)
		if err != nil {
			return flowNormal, GenericValue{}, err
		}
		return flowReturn, copyGeneric(gv, s.Result.Type()), nil
	case *IfStmt:
		cond, err := exec.evalCondition(s.Cond)
		if err != nil {
			return flowNormal, GenericValue{}, err
		}
		if cond {
			return exec.execStmt(s.Then)
		}
		if s.Else != nil {
			return exec.execStmt(s.Else)
		}
		return flowNormal, GenericValue{}, nil
	case *WhileStmt:
		return exec.execLoop(s.Cond, nil, s.Body)
	case *ForStmt:
		return exec.execFor(s)
	case *BreakStmt:
		return flowBreak, GenericValue{}, nil
	case *ContinueStmt:
		return flowContinue, GenericValue{}, nil
	default:
		return flowNormal, GenericValue{}, exec.errorAt(stmt.Pos(), "unsupported statement %T", stmt)
	}
}

func (exec *execution) execFor(s *ForStmt) (control, GenericValue, error) {
	var scoped []*VarDecl
	if s.Init != nil {
		var err error
		if decl, ok := s.Init.(*DeclStmt); ok {
			scoped, err = exec.execDecl(decl)
		} else {
			_, _, err = exec.execStmt(s.Init)
		}
		if err != nil {
			return flowNormal, GenericValue{}, err
		}
	}
	ctrl, result, err := exec.execLoop(s.Cond, s.Post, s.Body)
	if derr := exec.destroyLocals(scoped, s.Pos()); err == nil {
		err = derr
	}
	return ctrl, result, err
}

// execLoop runs body while cond holds; a nil cond loops until break or
// return.
func (exec *execution) execLoop(cond, post Expr, body Stmt) (control, GenericValue, error) {
	for {
		if cond != nil {
			ok, err := exec.evalCondition(cond)
			if err != nil {
				return flowNormal, GenericValue{}, err
			}
			if !ok {
				return flowNormal, GenericValue{}, nil
			}
		}
		ctrl, result, err := exec.execStmt(body)
		if err != nil {
			return flowNormal, GenericValue{}, err
		}
		switch ctrl {
		case flowBreak:
			return flowNormal, GenericValue{}, nil
		case flowReturn:
			return ctrl, result, nil
		}
		if post != nil {
			if _, err := exec.eval(post); err != nil {
				return flowNormal, GenericValue{}, err
			}
		}
	}
}

func (exec *execution) evalCondition(cond Expr) (bool, error) {
	gv, err := exec.eval(cond)
	if err != nil {
		return false, err
	}
	return truthy(gv, cond.Type()), nil
}

// execDecl allocates the locals of decl and returns those whose class has
// a destructor.
func (exec *execution) execDecl(decl *DeclStmt) ([]*VarDecl, error) {
	f := exec.current()
	var withDestructor []*VarDecl
	for _, d := range decl.Decls {
		v, ok := d.(*VarDecl)
		if !ok {
			continue
		}
		var (
			gv  GenericValue
			err error
		)
		if v.Init != nil {
			gv, err = exec.eval(v.Init)
			gv = copyGeneric(gv, v.Type)
		} else {
			gv, err = exec.zeroValue(v.Type)
		}
		if err != nil {
			return withDestructor, err
		}
		slot := gv
		f.locals[v] = &slot
		if v.Type.Kind == KindClass && v.Type.Class.Destructor != nil {
			withDestructor = append(withDestructor, v)
		}
	}
	return withDestructor, nil
}

// destroyLocals runs destructors in reverse declaration order.
func (exec *execution) destroyLocals(vars []*VarDecl, pos Position) error {
	var first error
	for i := len(vars) - 1; i >= 0; i-- {
		v := vars[i]
		slot, ok := exec.localSlot(v)
		if !ok {
			continue
		}
		obj, _ := slot.PtrVal.(*Object)
		if obj == nil {
			continue
		}
		if _, err := exec.callFunction(v.Type.Class.Destructor, obj, nil, pos); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// zeroValue is the value of a variable declared without initializer.
// Objects get their default member initializers.
func (exec *execution) zeroValue(t Type) (GenericValue, error) {
	switch t.Kind {
	case KindClass:
		obj, err := exec.newObject(t.Class)
		if err != nil {
			return GenericValue{}, err
		}
		return GenericValue{PtrVal: obj}, nil
	case KindDynamic:
		return GenericValue{PtrVal: Value{}}, nil
	default:
		return GenericValue{}, nil
	}
}

func (exec *execution) newObject(c *ClassDecl) (*Object, error) {
	obj := &Object{Class: c, Fields: make([]GenericValue, len(c.Fields))}
	for i, field := range c.Fields {
		var (
			gv  GenericValue
			err error
		)
		if field.Init != nil {
			gv, err = exec.eval(field.Init)
			gv = copyGeneric(gv, field.Type)
		} else {
			gv, err = exec.zeroValue(field.Type)
		}
		if err != nil {
			return nil, err
		}
		obj.Fields[i] = gv
	}
	return obj, nil
}
