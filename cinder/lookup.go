package cinder

import "strings"

// NamedDeclResult is the outcome of a single-name lookup: exactly one
// declaration or a miss. Results chain, so `A::B::c` is found with
// LookupDecl("A").LookupDecl("B").LookupDecl("c").
type NamedDeclResult struct {
	decl Decl
	err  error
}

// SingleDecl returns the declaration found, or nil on a miss.
func (r NamedDeclResult) SingleDecl() Decl { return r.decl }

func (r NamedDeclResult) Found() bool { return r.decl != nil }

// Err is ErrAmbiguousLookup when the name matched several declarations.
func (r NamedDeclResult) Err() error { return r.err }

// LookupDecl continues inside the found declaration when it is a namespace
// or class, and inside its parent otherwise.
func (r NamedDeclResult) LookupDecl(name string) NamedDeclResult {
	if r.decl == nil {
		return r
	}
	return lookupIn(innerContext(r.decl), name)
}

func innerContext(d Decl) DeclContext {
	switch decl := d.(type) {
	case *NamespaceDecl:
		return decl
	case *ClassDecl:
		return decl
	default:
		return d.Parent()
	}
}

// lookupIn performs exactly one lookup of name in dc. Anything but a single
// match is a miss.
func lookupIn(dc DeclContext, name string) NamedDeclResult {
	if dc == nil {
		return NamedDeclResult{}
	}
	decls := dc.scope().lookup(name)
	switch len(decls) {
	case 1:
		return NamedDeclResult{decl: decls[0]}
	case 0:
		return NamedDeclResult{}
	default:
		return NamedDeclResult{err: ErrAmbiguousLookup}
	}
}

// lookupQualifiedName resolves `A::B::c` by chaining single lookups from
// the translation unit. A leading `::` is accepted.
func lookupQualifiedName(tu *TranslationUnit, qualified string) NamedDeclResult {
	parts := strings.Split(strings.TrimPrefix(strings.TrimSpace(qualified), "::"), "::")
	for _, part := range parts {
		if part == "" {
			return NamedDeclResult{}
		}
	}
	result := lookupIn(tu, parts[0])
	for _, part := range parts[1:] {
		result = result.LookupDecl(part)
	}
	return result
}

// lookupClassName finds a namespace or a complete class by qualified name.
func lookupClassName(tu *TranslationUnit, qualified string) NamedDeclResult {
	result := lookupQualifiedName(tu, qualified)
	switch decl := result.decl.(type) {
	case *NamespaceDecl:
		return result
	case *ClassDecl:
		if decl.complete {
			return result
		}
	}
	return NamedDeclResult{err: result.err}
}
