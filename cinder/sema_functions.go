package cinder

// funcChecker checks one function body, or a standalone initializer when
// fn is nil.
type funcChecker struct {
	fe     *frontend
	fn     *FuncDecl
	ctx    DeclContext
	blocks []map[string]*VarDecl
	loops  int

	// trailing is the last expression statement of a wrapper; its value may
	// be captured so it is exempt from unused-value warnings.
	trailing *ExprStmt
}

func (fe *frontend) initChecker(dc DeclContext) *funcChecker {
	return &funcChecker{fe: fe, ctx: dc}
}

func (fe *frontend) checkFunctionBody(fn *FuncDecl) {
	fc := &funcChecker{fe: fe, fn: fn, ctx: fn}
	if fn.Wrapper {
		fc.trailing = trailingExprStmt(fn.Body)
	}
	fc.checkBlock(fn.Body)
}

// trailingExprStmt returns the last non-null statement of body when it is
// an expression statement.
func trailingExprStmt(body *CompoundStmt) *ExprStmt {
	if body == nil {
		return nil
	}
	for i := len(body.Stmts) - 1; i >= 0; i-- {
		switch s := body.Stmts[i].(type) {
		case *NullStmt:
			continue
		case *ExprStmt:
			if s.Synthesized {
				return nil
			}
			return s
		default:
			return nil
		}
	}
	return nil
}

func (fc *funcChecker) pushBlock() {
	fc.blocks = append(fc.blocks, make(map[string]*VarDecl))
}

func (fc *funcChecker) popBlock() {
	fc.blocks = fc.blocks[:len(fc.blocks)-1]
}

// resolveLocal finds a block-scoped variable or a parameter.
func (fc *funcChecker) resolveLocal(name string) *VarDecl {
	for i := len(fc.blocks) - 1; i >= 0; i-- {
		if v, ok := fc.blocks[i][name]; ok {
			return v
		}
	}
	if fc.fn != nil {
		for _, d := range fc.fn.scope().lookup(name) {
			if v, ok := d.(*VarDecl); ok {
				return v
			}
		}
	}
	return nil
}

// resolve performs lookup for an identifier as written at the current point.
func (fc *funcChecker) resolve(id *Ident) ([]Decl, string) {
	if len(id.Qualifier) == 0 && !id.Global {
		if v := fc.resolveLocal(id.Name); v != nil {
			return []Decl{v}, ""
		}
	}
	return lookupQualified(fc.fe.tu, fc.ctx, id.Qualifier, id.Name, id.Global)
}

func (fc *funcChecker) checkBlock(block *CompoundStmt) {
	fc.pushBlock()
	defer fc.popBlock()
	for _, stmt := range block.Stmts {
		fc.checkStmt(stmt)
	}
}

func (fc *funcChecker) checkStmt(stmt Stmt) {
	diags := &fc.fe.diags
	switch s := stmt.(type) {
	case *CompoundStmt:
		fc.checkBlock(s)
	case *NullStmt:
	case *DeclStmt:
		for _, d := range s.Decls {
			fc.checkLocalDecl(d)
		}
	case *ExprStmt:
		s.X = fc.fullExpr(s.X, TypeInvalid)
		if s != fc.trailing && !s.Synthesized {
			fc.warnUnused(s.X)
		}
	case *ReturnStmt:
		fc.checkReturn(s)
	case *IfStmt:
		s.Cond = fc.fullExpr(s.Cond, TypeBool)
		fc.checkScoped(s.Then)
		if s.Else != nil {
			fc.checkScoped(s.Else)
		}
	case *WhileStmt:
		s.Cond = fc.fullExpr(s.Cond, TypeBool)
		fc.loops++
		fc.checkScoped(s.Body)
		fc.loops--
	case *ForStmt:
		fc.pushBlock()
		if s.Init != nil {
			fc.checkStmt(s.Init)
		}
		if s.Cond != nil {
			s.Cond = fc.fullExpr(s.Cond, TypeBool)
		}
		if s.Post != nil {
			s.Post = fc.fullExpr(s.Post, TypeInvalid)
		}
		fc.loops++
		fc.checkScoped(s.Body)
		fc.loops--
		fc.popBlock()
	case *BreakStmt:
		if fc.loops == 0 {
			diags.errorf(s.Pos(), "'break' statement not in loop statement")
		}
	case *ContinueStmt:
		if fc.loops == 0 {
			diags.errorf(s.Pos(), "'continue' statement not in loop statement")
		}
	default:
		diags.errorf(stmt.Pos(), "unsupported statement")
	}
}

// checkScoped gives a sub-statement its own block scope.
func (fc *funcChecker) checkScoped(stmt Stmt) {
	fc.pushBlock()
	defer fc.popBlock()
	fc.checkStmt(stmt)
}

func (fc *funcChecker) checkLocalDecl(d Decl) {
	diags := &fc.fe.diags
	switch decl := d.(type) {
	case *VarDecl:
		fc.checkLocalVar(decl)
	case *FuncDecl:
		diags.errorf(decl.Pos(), "function definition is not allowed here")
	case *ClassDecl:
		diags.errorf(decl.Pos(), "class '%s' must be declared at namespace scope", decl.Name)
	case *NamespaceDecl:
		diags.errorf(decl.Pos(), "namespaces can only be defined in global or namespace scope")
	default:
		diags.errorf(d.Pos(), "declaration is not allowed here")
	}
}

func (fc *funcChecker) checkLocalVar(v *VarDecl) {
	diags := &fc.fe.diags
	switch {
	case v.Storage == StorageStatic:
		diags.errorf(v.Pos(), "static local variables are not supported")
		return
	case v.Storage == StorageExtern || v.ExternC:
		diags.errorf(v.Pos(), "'extern' variable cannot be declared in a function body")
		return
	}
	v.setParent(fc.fn)

	typ, isAuto := fc.fe.resolveTypeRef(v.TypeRef, fc.ctx, true)
	switch {
	case isAuto:
		if v.Init == nil {
			diags.errorf(v.Pos(), "declaration of variable '%s' with deduced type 'auto' requires an initializer", v.Name)
			return
		}
		v.Init = fc.fullExpr(v.Init, TypeInvalid)
		v.Type = v.Init.Type()
		if !fc.deducible(v.Name, v.Init) {
			return
		}
	case !typ.IsValid():
		return
	case typ.IsVoid():
		diags.errorf(v.Pos(), "variable has incomplete type 'void'")
		return
	default:
		v.Type = typ
		if v.Init != nil {
			v.Init = fc.fullExpr(v.Init, v.Type)
		}
	}

	block := fc.blocks[len(fc.blocks)-1]
	if _, exists := block[v.Name]; exists {
		diags.errorf(v.Pos(), "redefinition of '%s'", v.Name)
		return
	}
	block[v.Name] = v
}

func (fc *funcChecker) deducible(name string, init Expr) bool {
	t := init.Type()
	switch {
	case !t.IsValid():
		return false
	case t.IsVoid():
		fc.fe.diags.errorf(init.Pos(), "variable '%s' has incomplete type 'void'", name)
		return false
	case t.IsDynamic():
		fc.fe.diags.errorf(init.Pos(), "cannot deduce the type of '%s' from a dynamically resolved expression", name)
		return false
	}
	return true
}

func (fc *funcChecker) checkReturn(s *ReturnStmt) {
	diags := &fc.fe.diags
	if fc.fn == nil {
		diags.errorf(s.Pos(), "return statement outside a function")
		return
	}
	result := fc.fn.Result
	if result.IsVoid() {
		if s.Result == nil {
			return
		}
		s.Result = fc.fullExpr(s.Result, TypeInvalid)
		if t := s.Result.Type(); t.IsValid() && !t.IsVoid() {
			diags.errorf(s.Pos(), "void function '%s' should not return a value", fc.fn.Name)
		}
		return
	}
	if s.Result == nil {
		diags.errorf(s.Pos(), "non-void function '%s' should return a value", fc.fn.Name)
		return
	}
	s.Result = fc.fullExpr(s.Result, result)
}

func (fc *funcChecker) warnUnused(e Expr) {
	switch x := e.(type) {
	case *AssignExpr, *IncDecExpr, *DynamicExpr:
		return
	case *CallExpr:
		if x.Func != nil && x.Func.Pure {
			fc.fe.diags.warnf(WarnUnusedCall, x.Pos(), "ignoring return value of function '%s'", x.Func.Name)
		}
		return
	case *ConvExpr:
		fc.warnUnused(x.X)
		return
	}
	if e.Type().IsValid() {
		fc.fe.diags.warnf(WarnUnusedExpr, e.Pos(), "expression result unused")
	}
}
