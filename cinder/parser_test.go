package cinder

import (
	"fmt"
	"strings"
	"testing"
)

func mustParse(t *testing.T, input string) *Unit {
	t.Helper()
	unit, errs := newParser(input, 0, input, "test.c").ParseUnit()
	if len(errs) > 0 {
		t.Fatalf("parse failed: %v", errs[0])
	}
	return unit
}

func TestParseFunctionPrecedence(t *testing.T) {
	unit := mustParse(t, `int f(int a, double) { return a + 2 * 3; }`)
	if len(unit.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(unit.Decls))
	}
	fn, ok := unit.Decls[0].(*FuncDecl)
	if !ok {
		t.Fatalf("expected function, got %T", unit.Decls[0])
	}
	if fn.Name != "f" || len(fn.Params) != 2 || fn.Params[0].Name != "a" || fn.Params[1].Name != "" {
		t.Fatalf("unexpected signature %#v", fn.Params)
	}
	ret, ok := fn.Body.Stmts[0].(*ReturnStmt)
	if !ok {
		t.Fatalf("expected return, got %T", fn.Body.Stmts[0])
	}
	sum, ok := ret.Result.(*BinaryExpr)
	if !ok || sum.Op != tokenPlus {
		t.Fatalf("expected addition at the root, got %#v", ret.Result)
	}
	product, ok := sum.Y.(*BinaryExpr)
	if !ok || product.Op != tokenAsterisk {
		t.Fatalf("expected multiplication on the right, got %#v", sum.Y)
	}
}

func TestParseDeclarations(t *testing.T) {
	unit := mustParse(t, `
#include "util.h"
int x = 1, y;
extern "C" int add(int a, int b);
namespace geo {
  struct Point {
    int x = 0;
    int y = 0;
    int sum() { return x + y; }
    ~Point() {}
  };
}
static double scale = 2.5;
`)
	if len(unit.Decls) != 6 {
		t.Fatalf("expected 6 decls, got %d", len(unit.Decls))
	}
	dir, ok := unit.Decls[0].(*DirectiveDecl)
	if !ok || dir.Kind != "include" || dir.Arg != "util.h" {
		t.Fatalf("unexpected directive %#v", unit.Decls[0])
	}
	if v := unit.Decls[2].(*VarDecl); v.Name != "y" || v.Init != nil {
		t.Fatalf("unexpected second variable %#v", v)
	}
	if fn := unit.Decls[3].(*FuncDecl); !fn.ExternC || fn.Body != nil {
		t.Fatalf("expected extern C prototype, got %#v", fn)
	}
	ns := unit.Decls[4].(*NamespaceDecl)
	class := ns.Decls[0].(*ClassDecl)
	if !class.Struct || len(class.Fields) != 2 || len(class.Methods) != 1 || class.Destructor == nil {
		t.Fatalf("unexpected class %#v", class)
	}
	if class.Fields[1].FieldIdx != 1 {
		t.Fatalf("expected field index 1, got %d", class.Fields[1].FieldIdx)
	}
	if v := unit.Decls[5].(*VarDecl); v.Storage != StorageStatic {
		t.Fatalf("expected static storage, got %v", v.Storage)
	}
}

func TestParseStatements(t *testing.T) {
	unit := mustParse(t, `void f() {
  int i = 0;
  for (int j = 0; j < 3; j++) { if (j == 1) continue; else break; }
  while (i < 10) i += 2;
  i > 2 ? i-- : ++i;
  ;
}`)
	body := unit.Decls[0].(*FuncDecl).Body.Stmts
	want := []string{"*cinder.DeclStmt", "*cinder.ForStmt", "*cinder.WhileStmt", "*cinder.ExprStmt", "*cinder.NullStmt"}
	if len(body) != len(want) {
		t.Fatalf("expected %d statements, got %d", len(want), len(body))
	}
	for i, stmt := range body {
		if got := fmt.Sprintf("%T", stmt); got != want[i] {
			t.Fatalf("statement %d: expected %s, got %s", i, want[i], got)
		}
	}
	cond := body[3].(*ExprStmt).X.(*CondExpr)
	if dec, ok := cond.Then.(*IncDecExpr); !ok || !dec.Postfix || dec.Op != tokenDecrement {
		t.Fatalf("expected postfix decrement, got %#v", cond.Then)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"int x = ;", "expected expression"},
		{"void f() {", "expected '}'"},
		{"class C { C() {} };", "constructors are not supported"},
		{"void f() { #include \"x\" }", "directives are only allowed at the top level"},
	}
	for _, tc := range tests {
		_, errs := newParser(tc.input, 0, tc.input, "").ParseUnit()
		if len(errs) == 0 {
			t.Fatalf("%q: expected a parse error", tc.input)
		}
		if !strings.Contains(errs[0].Error(), tc.want) {
			t.Fatalf("%q: expected error containing %q, got %v", tc.input, tc.want, errs[0])
		}
	}
}
