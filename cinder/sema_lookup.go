package cinder

import "fmt"

// lookupParent is the next context searched by unqualified lookup.
func lookupParent(dc DeclContext) DeclContext {
	if fn, ok := dc.(*FuncDecl); ok && fn.lookupContext != nil {
		return fn.lookupContext
	}
	return dc.ParentContext()
}

// lookupUnqualified returns the declarations of the innermost context that
// declares name. Outer declarations with the same name are hidden.
func lookupUnqualified(dc DeclContext, name string) []Decl {
	for ctx := dc; ctx != nil; ctx = lookupParent(ctx) {
		if decls := ctx.scope().lookup(name); len(decls) > 0 {
			return decls
		}
	}
	return nil
}

// lookupQualified resolves `q1::q2::name` starting from dc, or from the
// translation unit when global is set. On failure the message describes the
// first component that did not resolve.
func lookupQualified(tu *TranslationUnit, dc DeclContext, qualifier []string, name string, global bool) ([]Decl, string) {
	if len(qualifier) == 0 {
		if global {
			return tu.scope().lookup(name), ""
		}
		return lookupUnqualified(dc, name), ""
	}

	var first []Decl
	if global {
		first = tu.scope().lookup(qualifier[0])
	} else {
		first = lookupUnqualified(dc, qualifier[0])
	}
	ctx, msg := singleContext(first, qualifier[0], nil)
	if ctx == nil {
		return nil, msg
	}
	for _, q := range qualifier[1:] {
		if ctx, msg = singleContext(ctx.scope().lookup(q), q, ctx); ctx == nil {
			return nil, msg
		}
	}

	decls := ctx.scope().lookup(name)
	if len(decls) == 0 {
		return nil, fmt.Sprintf("no member named '%s' in '%s'", name, contextLabel(ctx))
	}
	return decls, ""
}

func singleContext(decls []Decl, name string, within DeclContext) (DeclContext, string) {
	if len(decls) == 0 {
		if within != nil {
			return nil, fmt.Sprintf("no member named '%s' in '%s'", name, contextLabel(within))
		}
		return nil, fmt.Sprintf("use of undeclared identifier '%s'", name)
	}
	if len(decls) == 1 {
		switch d := decls[0].(type) {
		case *NamespaceDecl:
			return d, ""
		case *ClassDecl:
			return d, ""
		}
	}
	return nil, fmt.Sprintf("'%s' is not a class or namespace", name)
}

func contextLabel(dc DeclContext) string {
	if d, ok := dc.(Decl); ok {
		return QualifiedName(d)
	}
	return dc.ContextName()
}
