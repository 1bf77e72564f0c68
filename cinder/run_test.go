package cinder

import (
	"errors"
	"strings"
	"testing"
)

func TestValuePrintingModes(t *testing.T) {
	tests := []struct {
		mode  ValuePrinting
		input string
		want  string
	}{
		{ValuePrintingEnabled, "41 + 1;", "42\n"},
		{ValuePrintingEnabled, "41 + 1", "42\n"},
		{ValuePrintingAuto, "41 + 1;", ""},
		{ValuePrintingAuto, "41 + 1", "42\n"},
		{ValuePrintingDisabled, "41 + 1", ""},
	}
	for _, tc := range tests {
		for _, name := range []string{"echo", "process"} {
			in, out := newTestInterpreter(t, Config{})
			in.SetValuePrinting(tc.mode)
			if in.ValuePrinting() != tc.mode {
				t.Fatalf("mode not applied")
			}
			var (
				v   Value
				err error
			)
			if name == "echo" {
				v, err = in.Echo(tc.input)
			} else {
				var res LineResult
				res, err = in.ProcessLine(tc.input)
				v = res.Value
			}
			if err != nil {
				t.Fatalf("%s %q (%s) failed: %v", name, tc.input, tc.mode, err)
			}
			if v.Int() != 42 {
				t.Fatalf("%s %q (%s): value must be captured, got %s", name, tc.input, tc.mode, v.Describe())
			}
			if out.String() != tc.want {
				t.Fatalf("%s %q (%s): expected %q, got %q", name, tc.input, tc.mode, tc.want, out.String())
			}
		}
	}
}

func TestEvaluateNeverPrints(t *testing.T) {
	in, out := newTestInterpreter(t, Config{})
	in.SetValuePrinting(ValuePrintingEnabled)
	if _, err := in.Evaluate("41 + 1"); err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("evaluate must not print, got %q", out.String())
	}
}

func TestRunFunctionMatchesEvaluate(t *testing.T) {
	tests := []struct {
		name string
		decl string
	}{
		{"answer", "int answer() { return 6 * 7; }"},
		{"half", "double half() { return 7 / 2.0; }"},
		{"ready", "bool ready() { return 3 > 2; }"},
		{"greeting", `string greeting() { return "hi"; }`},
	}
	in, _ := newTestInterpreter(t, Config{})
	for _, tc := range tests {
		if _, err := in.Declare(tc.decl); err != nil {
			t.Fatalf("declare %s failed: %v", tc.name, err)
		}
		fn, ok := in.LookupDecl(tc.name, nil).SingleDecl().(*FuncDecl)
		if !ok {
			t.Fatalf("lookup of %s failed", tc.name)
		}

		want, err := in.Evaluate(tc.name + "()")
		if err != nil {
			t.Fatalf("evaluate %s failed: %v", tc.name, err)
		}
		gv, err := in.runFunction(tc.name)
		if err != nil {
			t.Fatalf("run %s failed: %v", tc.name, err)
		}
		if got := newValue(gv, fn.Result); !got.Equal(want) {
			t.Fatalf("%s: run gave %s, evaluate gave %s", tc.name, got.Describe(), want.Describe())
		}
		bySymbol, err := in.be.Run(Mangle(fn))
		if err != nil {
			t.Fatalf("run %s by symbol failed: %v", Mangle(fn), err)
		}
		if got := newValue(bySymbol, fn.Result); !got.Equal(want) {
			t.Fatalf("%s: symbol run gave %s, evaluate gave %s", tc.name, got.Describe(), want.Describe())
		}
	}
}

func TestRunFunctionNotFound(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if _, err := in.Declare("int value = 1;"); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	for _, name := range []string{"nonexistent", "value"} {
		if _, err := in.runFunction(name); !errors.Is(err, ErrExecutionNotFound) {
			t.Fatalf("runFunction(%q): expected ErrExecutionNotFound, got %v", name, err)
		}
	}
}

func TestStaticInitializersRunOnce(t *testing.T) {
	in, out := newTestInterpreter(t, Config{})
	if _, err := in.Declare(`int counter() { println("init"); return 1; } int g = counter();`); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	steps := []func() error{
		func() error { _, err := in.Declare("int h = 2;"); return err },
		func() error { _, err := in.Evaluate("g + h"); return err },
		func() error { _, err := in.ProcessLine("g = g + 1;"); return err },
		in.RunStaticInitializersOnce,
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
	}
	if out.String() != "init\n" {
		t.Fatalf("initializer must run exactly once, output %q", out.String())
	}
	v, err := in.Evaluate("g")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if v.Int() != 2 {
		t.Fatalf("expected g to keep its assigned value 2, got %s", v.Describe())
	}
}

func TestNestedCompilesRecordParent(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if _, err := in.Declare(`void inner() { cinder::declare("int deep = 1;"); }`); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	v, err := in.Evaluate(`cinder::process("inner();")`)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if !v.Bool() {
		t.Fatalf("nested process reported failure")
	}

	txs := in.Transactions()
	if len(txs) != 4 {
		t.Fatalf("expected 4 transactions, got %d", len(txs))
	}
	wantParent := []int{-1, -1, 1, 2}
	for i, tx := range txs {
		parent := -1
		if tx.Parent() != nil {
			parent = tx.Parent().Index()
		}
		if parent != wantParent[i] {
			t.Fatalf("transaction %d: parent %d, want %d", i, parent, wantParent[i])
		}
	}
	if txs[3].FirstDecl().DeclName() != "deep" {
		t.Fatalf("expected the innermost transaction to declare deep, got %s", txs[3].FirstDecl().DeclName())
	}
	if in.LastTransaction().Parent() == nil {
		t.Fatalf("last transaction was compiled by guest code")
	}
}

func TestRuntimeErrorFrames(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if _, err := in.Declare(`int divide(int a, int b) { return a / b; }
int broken() { int z = 0; return 1 / z; }`); err != nil {
		t.Fatalf("declare failed: %v", err)
	}

	tests := []struct {
		name   string
		run    func() error
		frames int
	}{
		{"wrapper", func() error { _, err := in.Evaluate("int z = 0; 10 / z"); return err }, 1},
		{"nested call", func() error { _, err := in.Evaluate("divide(1, 0)"); return err }, 2},
		{"entry function", func() error { _, err := in.runFunction("broken"); return err }, 1},
	}
	for _, tc := range tests {
		var rerr *RuntimeError
		if err := tc.run(); !errors.As(err, &rerr) {
			t.Fatalf("%s: expected runtime error, got %v", tc.name, err)
		}
		if len(rerr.Frames) != tc.frames {
			t.Fatalf("%s: expected %d frames, got %+v", tc.name, tc.frames, rerr.Frames)
		}
		for _, frame := range rerr.Frames {
			if frame.Pos.Line == 0 {
				t.Fatalf("%s: frame without position in %+v", tc.name, rerr.Frames)
			}
		}
		if got := strings.Count(rerr.Error(), "\n  at "); got != tc.frames {
			t.Fatalf("%s: expected %d rendered frames, got %d:\n%s", tc.name, tc.frames, got, rerr.Error())
		}
	}
}

func TestUnbalancedFragmentRejected(t *testing.T) {
	in, out := newTestInterpreter(t, Config{})
	before := len(in.Transactions())

	_, err := in.Echo(`} void escaped() { println("x"); } void g() {`)
	var cerr *CompileError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected compile error, got %v", err)
	}
	if !strings.Contains(err.Error(), "unmatched closing bracket") {
		t.Fatalf("unexpected error %v", err)
	}
	if in.LookupDecl("escaped", nil).Found() || in.LookupDecl("g", nil).Found() {
		t.Fatalf("declarations outside the wrapper must not be compiled")
	}
	if len(in.Transactions()) != before || out.Len() != 0 {
		t.Fatalf("rejected fragment must leave no trace")
	}

	if _, err := in.Evaluate(`print("}")`); err != nil {
		t.Fatalf("braces inside strings are not brackets: %v", err)
	}
}
