package cinder

import (
	"strings"
	"testing"
)

func TestEmitIR(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if _, err := in.Declare(`
int counter = 3;
int square(int x) { return x * x; }
double root(double v) { return sqrt(v) / 2; }
int sum(int n) {
  int total = 0;
  for (int i = 0; i < n; i++) {
    if (i == 2 || i > 8) continue;
    total += square(i);
  }
  return total + counter;
}
bool positive(int v) { return v > 0 ? true : false; }
string name() { return "cinder"; }
`); err != nil {
		t.Fatalf("declare failed: %v", err)
	}

	ir, err := in.EmitIR()
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	for _, want := range []string{
		"; skipped: name",
		"@counter = global i64 0",
		"define i64 @_Z6squarel(i64 %x)",
		"mul i64",
		"define double @_Z4rootd(double %v)",
		"declare double @_Z4sqrtd(double",
		"fdiv double",
		"define i64 @_Z3suml(i64 %n)",
		"icmp slt i64",
		"call i64 @_Z6squarel(",
		"define i1 @_Z8positivel(i64 %v)",
		"phi i1",
	} {
		if !strings.Contains(ir, want) {
			t.Fatalf("expected IR to contain %q:\n%s", want, ir)
		}
	}
	if strings.Contains(ir, "define void @_Z4namev") || strings.Contains(ir, "@_Z4namev") {
		t.Fatalf("string function must not be lowered:\n%s", ir)
	}
}

func TestEmitIRAfterClose(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if err := in.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if _, err := in.EmitIR(); err == nil {
		t.Fatalf("expected ErrClosed")
	}
}
