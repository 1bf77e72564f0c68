package cinder

import "fmt"

// Callbacks supplies values for names the compiler could not resolve while
// dynamic lookup is enabled.
type Callbacks interface {
	// LookupObject returns the current value of name as seen from scope.
	// An invalid Value means the name is unknown.
	LookupObject(name string, scope DeclContext) (Value, error)
}

// CallbacksFunc adapts a function to Callbacks.
type CallbacksFunc func(name string, scope DeclContext) (Value, error)

func (f CallbacksFunc) LookupObject(name string, scope DeclContext) (Value, error) {
	return f(name, scope)
}

// EnableDynamicLookup makes fragments compiled afterwards treat unresolved
// names as dynamic lookups instead of errors.
func (in *Interpreter) EnableDynamicLookup(enabled bool) {
	in.dynamic = enabled
}

func (in *Interpreter) IsDynamicLookupEnabled() bool {
	return in.dynamic
}

func (in *Interpreter) SetCallbacks(cb Callbacks) {
	in.callbacks = cb
}

// binding associates a placeholder with the value found for it.
type binding struct {
	id    int
	name  string
	value Value
}

// evaluateDynamic runs a deferred expression: every placeholder is bound,
// substituted into a copy of the template and the result is evaluated as a
// fragment of its own.
func (in *Interpreter) evaluateDynamic(expr *DynamicExpr, exec *execution) (GenericValue, error) {
	subst := make(map[string]func(pos Position) Expr, len(expr.Placeholders))
	bindings := make([]binding, 0, len(expr.Placeholders))
	for _, ph := range expr.Placeholders {
		if ph.Local != nil {
			local := ph.Local
			slot, ok := exec.localSlot(local)
			if !ok {
				return GenericValue{}, fmt.Errorf("local variable '%s' is not available", ph.Name)
			}
			subst[ph.Name] = func(pos Position) Expr {
				ref := &HostRefExpr{exprBase: at(pos), Name: local.Name, Slot: slot}
				ref.setType(local.Type)
				return ref
			}
			bindings = append(bindings, binding{id: ph.ID, name: ph.Name, value: newValue(*slot, local.Type)})
			continue
		}

		value, err := in.lookupObject(ph.Name, expr.Context)
		if err != nil {
			return GenericValue{}, err
		}
		subst[ph.Name] = func(pos Position) Expr {
			hv := &HostValueExpr{exprBase: at(pos), Value: value}
			hv.setType(value.Type())
			return hv
		}
		bindings = append(bindings, binding{id: ph.ID, name: ph.Name, value: value})
	}
	for _, b := range bindings {
		in.logger.Debug("dynamic binding", "placeholder", b.id, "name", b.name, "value", b.value.Describe())
	}

	body := rewriteExpr(expr.Template, func(id *Ident, callee bool) Expr {
		if callee || id.Global || len(id.Qualifier) > 0 {
			return nil
		}
		if build, ok := subst[id.Name]; ok {
			return build(id.Pos())
		}
		return nil
	})

	value, err := in.evaluateExpr(body, expr.Context)
	if err != nil {
		return GenericValue{}, err
	}
	return convertGeneric(GenericValue{PtrVal: value}, TypeDynamic, expr.Type())
}

func (in *Interpreter) lookupObject(name string, scope DeclContext) (Value, error) {
	if in.callbacks == nil {
		return Value{}, fmt.Errorf("use of undeclared identifier '%s'", name)
	}
	value, err := in.callbacks.LookupObject(name, scope)
	if err != nil {
		return Value{}, err
	}
	if !value.IsValid() || value.IsVoid() {
		return Value{}, fmt.Errorf("use of undeclared identifier '%s'", name)
	}
	return value, nil
}

// evaluateExpr compiles a wrapper around an already built expression and
// runs it, resolving names from scope.
func (in *Interpreter) evaluateExpr(body Expr, scope DeclContext) (Value, error) {
	w := newWrapper(in.names.next())
	fn := &FuncDecl{
		declBase:  declBase{position: body.Pos()},
		Name:      w.name,
		ResultRef: &TypeRef{Name: "void"},
		Body:      &CompoundStmt{Stmts: []Stmt{&ExprStmt{X: body, position: body.Pos()}}},
		Wrapper:   true,
	}
	w.fn = fn

	if scope != nil {
		restore := in.fe.PushContext(scope)
		defer restore()
	}
	in.fe.Diagnostics().reset("<dynamic>", "", nil)
	opts := CompilationOptions{ResultEvaluation: true}
	tx, err := in.session.CompileUnit(&Unit{Decls: []Decl{fn}}, "", opts, unitHooks{
		finalize: func([]Decl) error { return w.capture(in.fe) },
	})
	if err != nil {
		return Value{}, err
	}

	restore := in.session.pushActive(tx)
	gv, err := in.runFunction(w.name)
	restore()
	if err != nil {
		return Value{}, err
	}
	if !w.result.IsValid() || w.result.IsVoid() {
		return voidValue(), nil
	}
	return newValue(gv, w.result), nil
}
