package cinder

import (
	"errors"
	"testing"
)

func TestLookupChaining(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if _, err := in.Declare(`namespace outer { namespace inner { int depth = 2; } struct Box { int v; }; }`); err != nil {
		t.Fatalf("declare failed: %v", err)
	}

	res := in.LookupDecl("outer", nil).LookupDecl("inner").LookupDecl("depth")
	v, ok := res.SingleDecl().(*VarDecl)
	if !ok || v.Name != "depth" {
		t.Fatalf("expected depth, got %#v", res.SingleDecl())
	}
	if q := in.LookupQualified("::outer::inner::depth"); q.SingleDecl() != res.SingleDecl() {
		t.Fatalf("qualified lookup should find the same declaration")
	}
	if in.LookupDecl("outer", nil).LookupDecl("missing").LookupDecl("depth").Found() {
		t.Fatalf("a miss must propagate through the chain")
	}
	if in.LookupQualified("outer::::depth").Found() {
		t.Fatalf("empty name components must miss")
	}
}

func TestLookupClass(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if _, err := in.Declare(`namespace outer { struct Box { int v; }; int value = 1; }`); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	if c, ok := in.LookupClass("outer::Box").SingleDecl().(*ClassDecl); !ok || c.Name != "Box" {
		t.Fatalf("expected class Box")
	}
	if _, ok := in.LookupClass("outer").SingleDecl().(*NamespaceDecl); !ok {
		t.Fatalf("namespaces are valid class lookup results")
	}
	if in.LookupClass("outer::value").Found() {
		t.Fatalf("a variable is not a class")
	}
}

func TestLookupAmbiguousOverloads(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	res := in.LookupDecl("print", nil)
	if res.Found() {
		t.Fatalf("overloaded name must not resolve to a single declaration")
	}
	if !errors.Is(res.Err(), ErrAmbiguousLookup) {
		t.Fatalf("expected ErrAmbiguousLookup, got %v", res.Err())
	}
	if fn, ok := in.LookupDecl("sqrt", nil).SingleDecl().(*FuncDecl); !ok || !fn.Pure {
		t.Fatalf("expected pure builtin sqrt")
	}
}

func TestLookupDeclWithinScope(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if _, err := in.Declare(`namespace app { int limit = 3; }`); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	ns := in.LookupDecl("app", nil).SingleDecl().(*NamespaceDecl)
	if !in.LookupDecl("limit", ns).Found() {
		t.Fatalf("expected limit inside app")
	}
	if in.LookupDecl("limit", nil).Found() {
		t.Fatalf("limit is not visible in the translation unit")
	}
}
