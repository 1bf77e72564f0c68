package cinder

// unresolvedNames lists, in order of appearance, the plain identifiers of e
// that do not resolve at this point. Function names of calls are skipped:
// only objects are looked up dynamically.
func (fc *funcChecker) unresolvedNames(e Expr) []string {
	var names []string
	seen := make(map[string]bool)
	walkExpr(e, func(node Expr, callee bool) {
		id, ok := node.(*Ident)
		if !ok || callee || id.Global || len(id.Qualifier) > 0 || seen[id.Name] {
			return
		}
		seen[id.Name] = true
		if decls, _ := fc.resolve(id); len(decls) == 0 {
			names = append(names, id.Name)
		}
	})
	return names
}

// localNames lists the plain identifiers of e bound to locals or parameters
// of the function being checked.
func (fc *funcChecker) localNames(e Expr) []*VarDecl {
	var locals []*VarDecl
	seen := make(map[string]bool)
	walkExpr(e, func(node Expr, callee bool) {
		id, ok := node.(*Ident)
		if !ok || callee || id.Global || len(id.Qualifier) > 0 || seen[id.Name] {
			return
		}
		seen[id.Name] = true
		if v := fc.resolveLocal(id.Name); v != nil {
			locals = append(locals, v)
		}
	})
	return locals
}

// makeDynamic wraps e, left unchecked, into a DynamicExpr. The template is a
// pristine copy; placeholders record which names are filled from callbacks
// and which alias locals of the running frame.
func (fc *funcChecker) makeDynamic(e Expr, unresolved []string, want Type) Expr {
	dyn := &DynamicExpr{
		exprBase: at(e.Pos()),
		Template: cloneExpr(e),
		Want:     want,
		Context:  fc.ctx,
	}
	if fc.fn != nil {
		dyn.Context = lookupParent(fc.fn)
	}
	for _, name := range unresolved {
		dyn.Placeholders = append(dyn.Placeholders, Placeholder{ID: fc.fe.nextPlaceholderID(), Name: name})
	}
	for _, v := range fc.localNames(e) {
		dyn.Placeholders = append(dyn.Placeholders, Placeholder{ID: fc.fe.nextPlaceholderID(), Name: v.Name, Local: v})
	}

	if want.IsValid() && !want.IsVoid() {
		dyn.setType(want)
	} else {
		dyn.setType(TypeDynamic)
	}
	fc.fe.logger.Debug("deferring expression to dynamic lookup", "names", unresolved)
	return dyn
}
