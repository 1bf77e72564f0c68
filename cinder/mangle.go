package cinder

import (
	"strconv"
	"strings"
)

// Mangle returns the linkage name of a function or global variable using
// the Itanium C++ scheme. `extern "C"` declarations keep their plain name.
// Destructors use the complete-object form (D1).
func Mangle(d Decl) string {
	switch decl := d.(type) {
	case *FuncDecl:
		return mangleFunction(decl)
	case *VarDecl:
		return mangleVariable(decl)
	default:
		return d.DeclName()
	}
}

func mangleFunction(fn *FuncDecl) string {
	if fn.ExternC {
		return fn.Name
	}
	var b strings.Builder
	b.WriteString("_Z")
	nested := enclosingNames(fn.Parent())
	internal := fn.Static && fn.Class == nil
	switch {
	case len(nested) == 0:
		if internal {
			b.WriteString("L")
		}
		writeSourceName(&b, fn, fn.Name)
	default:
		b.WriteString("N")
		for _, name := range nested {
			writeIdentifier(&b, name)
		}
		writeSourceName(&b, fn, fn.Name)
		b.WriteString("E")
	}
	if len(fn.Params) == 0 {
		b.WriteString("v")
		return b.String()
	}
	for _, param := range fn.Params {
		b.WriteString(mangleType(param.Type))
	}
	return b.String()
}

func writeSourceName(b *strings.Builder, fn *FuncDecl, name string) {
	if fn.IsDestructor {
		b.WriteString("D1")
		return
	}
	writeIdentifier(b, name)
}

func mangleVariable(v *VarDecl) string {
	if v.ExternC {
		return v.Name
	}
	nested := enclosingNames(v.Parent())
	switch {
	case len(nested) > 0:
		var b strings.Builder
		b.WriteString("_ZN")
		for _, name := range nested {
			writeIdentifier(&b, name)
		}
		writeIdentifier(&b, v.Name)
		b.WriteString("E")
		return b.String()
	case v.Storage == StorageStatic:
		var b strings.Builder
		b.WriteString("_ZL")
		writeIdentifier(&b, v.Name)
		return b.String()
	default:
		return v.Name
	}
}

// enclosingNames lists the namespaces and classes around dc, outermost first.
func enclosingNames(dc DeclContext) []string {
	var names []string
	for ; dc != nil; dc = dc.ParentContext() {
		switch dc.(type) {
		case *NamespaceDecl, *ClassDecl:
			names = append([]string{dc.ContextName()}, names...)
		case *TranslationUnit:
			return names
		}
	}
	return names
}

func writeIdentifier(b *strings.Builder, name string) {
	b.WriteString(strconv.Itoa(len(name)))
	b.WriteString(name)
}

func mangleType(t Type) string {
	switch t.Kind {
	case KindVoid:
		return "v"
	case KindBool:
		return "b"
	case KindInt:
		return "l"
	case KindDouble:
		return "d"
	case KindString:
		return "Ss"
	case KindClass:
		nested := enclosingNames(t.Class.Parent())
		if len(nested) == 0 {
			var b strings.Builder
			writeIdentifier(&b, t.Class.Name)
			return b.String()
		}
		var b strings.Builder
		b.WriteString("N")
		for _, name := range nested {
			writeIdentifier(&b, name)
		}
		writeIdentifier(&b, t.Class.Name)
		b.WriteString("E")
		return b.String()
	default:
		return "u7dynamic"
	}
}
