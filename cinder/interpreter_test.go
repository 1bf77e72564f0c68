package cinder

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func newTestInterpreter(t *testing.T, cfg Config) (*Interpreter, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	cfg.Stdout = &out
	cfg.Stderr = &errOut
	in, err := NewInterpreter(cfg)
	if err != nil {
		t.Fatalf("new interpreter: %v", err)
	}
	return in, &out
}

func TestDeclareEvaluateEcho(t *testing.T) {
	in, out := newTestInterpreter(t, Config{})

	tx, err := in.Declare("int x = 5;")
	if err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	if len(in.Transactions()) != 1 || tx.Index() != 0 {
		t.Fatalf("expected one transaction, got %d", len(in.Transactions()))
	}

	v, err := in.Evaluate("x + 1")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if v.Type().Kind != KindInt || v.Int() != 6 {
		t.Fatalf("expected (int) 6, got %s", v.Describe())
	}
	if out.Len() != 0 {
		t.Fatalf("evaluate must not print, got %q", out.String())
	}

	v, err = in.Echo("x")
	if err != nil {
		t.Fatalf("echo failed: %v", err)
	}
	if v.Int() != 5 || out.String() != "5\n" {
		t.Fatalf("expected 5 printed, got %s and %q", v.Describe(), out.String())
	}
}

func TestEchoSemicolonSuppressesPrinting(t *testing.T) {
	in, out := newTestInterpreter(t, Config{})
	v, err := in.Echo("40 + 2;")
	if err != nil {
		t.Fatalf("echo failed: %v", err)
	}
	if !v.Equal(IntValue(42)) {
		t.Fatalf("value must still be captured, got %s", v.Describe())
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestEchoVoidExpression(t *testing.T) {
	in, out := newTestInterpreter(t, Config{})
	if _, err := in.Declare(`void hello() { println("hi"); }`); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	v, err := in.Echo("hello()")
	if err != nil {
		t.Fatalf("echo failed: %v", err)
	}
	if !v.IsValid() || !v.IsVoid() {
		t.Fatalf("expected a void value, got %s", v.Describe())
	}
	if out.String() != "hi\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestEchoFormatsValues(t *testing.T) {
	in, out := newTestInterpreter(t, Config{})
	if _, err := in.Declare(`struct Point { int x = 1; double y = 2; };`); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	for _, input := range []string{`"text"`, "7 / 2.0", "3 > 2", "Point p; p"} {
		if _, err := in.Echo(input); err != nil {
			t.Fatalf("echo %q failed: %v", input, err)
		}
	}
	want := "\"text\"\n3.5\ntrue\nPoint{x: 1, y: 2.0}\n"
	if out.String() != want {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
}

func TestProcessLineHoistsDeclarations(t *testing.T) {
	in, out := newTestInterpreter(t, Config{})

	res, err := in.ProcessLine("int a = 2; a * 3")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if out.String() != "6\n" {
		t.Fatalf("expected 6 printed, got %q", out.String())
	}
	v, ok := res.Decl.(*VarDecl)
	if !ok || v.Name != "a" || !v.Global {
		t.Fatalf("expected global a as first declaration, got %#v", res.Decl)
	}

	got, err := in.Evaluate("a")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if got.Int() != 2 {
		t.Fatalf("expected hoisted a to keep 2, got %s", got.Describe())
	}

	out.Reset()
	if _, err := in.ProcessLine("a + 1;"); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected suppressed output, got %q", out.String())
	}
}

func TestProcessLineDeducesAuto(t *testing.T) {
	in, out := newTestInterpreter(t, Config{})
	if _, err := in.ProcessLine("auto s = 1.5;"); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("declaration must not print, got %q", out.String())
	}
	v, err := in.Evaluate("s * 2")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if v.Type().Kind != KindDouble || v.Float() != 3 {
		t.Fatalf("expected (double) 3.0, got %s", v.Describe())
	}
}

func TestProcessLineKeepsTopLevelText(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	res, err := in.ProcessLine("namespace N { int v = 7; }")
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if ns, ok := res.Decl.(*NamespaceDecl); !ok || ns.Name != "N" {
		t.Fatalf("expected namespace N, got %#v", res.Decl)
	}
	v, err := in.Evaluate("N::v")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if v.Int() != 7 {
		t.Fatalf("expected 7, got %s", v.Describe())
	}
}

func TestCompileFailureRollsBack(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if _, err := in.Declare("int good = 1;"); err != nil {
		t.Fatalf("declare failed: %v", err)
	}

	_, err := in.Declare("int bad = 2; int worse = missing;")
	if ResultOf(err) != Failure {
		t.Fatalf("expected failure")
	}
	if !isCompileError(err) {
		t.Fatalf("expected compile error, got %T", err)
	}
	if !strings.Contains(err.Error(), "missing") {
		t.Fatalf("error should name the identifier: %v", err)
	}
	if len(in.Transactions()) != 1 {
		t.Fatalf("failed compile must not add a transaction")
	}
	if in.LookupDecl("bad", nil).Found() {
		t.Fatalf("declaration of a failed compile must be removed")
	}

	if _, err := in.Declare("int bad = 2;"); err != nil {
		t.Fatalf("redeclaring after rollback failed: %v", err)
	}
	if _, err := in.Declare("int good = 3;"); err == nil {
		t.Fatalf("expected redefinition error")
	}
}

func TestParseFailureReportsFragmentPosition(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	_, err := in.Evaluate("1 +")
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if len(in.Diagnostics()) == 0 {
		t.Fatalf("expected diagnostics")
	}
	if strings.Contains(err.Error(), "__cinder_") {
		t.Fatalf("wrapper name leaked into error: %v", err)
	}
}

func TestWrapperNamesNeverReused(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if _, err := in.Evaluate("1 + missing"); err == nil {
		t.Fatalf("expected compile error")
	}
	for i := 0; i < 3; i++ {
		if _, err := in.Evaluate("1"); err != nil {
			t.Fatalf("evaluate failed: %v", err)
		}
	}
	seen := make(map[string]bool)
	for _, tx := range in.Transactions() {
		fn, ok := tx.FirstDecl().(*FuncDecl)
		if !ok || !fn.Wrapper {
			t.Fatalf("expected wrapper declaration, got %#v", tx.FirstDecl())
		}
		if seen[fn.Name] {
			t.Fatalf("wrapper name %s reused", fn.Name)
		}
		seen[fn.Name] = true
	}
	if seen["__cinder_Un1Qu30"] {
		t.Fatalf("name of the failed wrapper must not be handed out again")
	}
}

func TestFunctionsRecursion(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if _, err := in.Declare(`int fib(int n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); }`); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	v, err := in.Evaluate("fib(10)")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if v.Int() != 55 {
		t.Fatalf("expected 55, got %s", v.Describe())
	}
}

func TestLoopsAndControlFlow(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	v, err := in.Evaluate(`int total = 0;
for (int i = 0; i < 10; i++) {
  if (i % 2 == 0) continue;
  if (i > 7) break;
  total += i;
}
int n = 3;
while (n > 0) { total = total * 2; n--; }
total`)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	// (1 + 3 + 5 + 7) * 8
	if v.Int() != 128 {
		t.Fatalf("expected 128, got %s", v.Describe())
	}
}

func TestRecursionLimit(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{RecursionLimit: 32})
	if _, err := in.Declare(`int down(int n) { return down(n + 1); }`); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	_, err := in.Evaluate("down(0)")
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected runtime error, got %v", err)
	}
	if !strings.Contains(rerr.Message, "recursion depth exceeded") {
		t.Fatalf("unexpected message %q", rerr.Message)
	}
	if !strings.Contains(err.Error(), "frames omitted") {
		t.Fatalf("expected a truncated stack trace, got %v", err)
	}
}

func TestStepQuota(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{StepQuota: 500})
	_, err := in.Evaluate("int i = 0; while (true) { i++; } i")
	if err == nil || !strings.Contains(err.Error(), "step quota exceeded") {
		t.Fatalf("expected step quota error, got %v", err)
	}
}

func TestDivisionByZero(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	_, err := in.Evaluate("int z = 0; 10 / z")
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected runtime error, got %v", err)
	}
	if rerr.Message != "division by zero" {
		t.Fatalf("unexpected message %q", rerr.Message)
	}
	if rerr.CodeFrame == "" {
		t.Fatalf("expected a code frame")
	}
}

func TestUnresolvedSymbolThenAddSymbol(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if _, err := in.Declare(`extern "C" int host_answer();`); err != nil {
		t.Fatalf("declare failed: %v", err)
	}

	_, err := in.Evaluate("host_answer()")
	var lerr *LinkError
	if !errors.As(err, &lerr) || lerr.Symbol != "host_answer" {
		t.Fatalf("expected link error for host_answer, got %v", err)
	}

	in.AddSymbol("host_answer", func([]GenericValue) (GenericValue, error) {
		return GenericValue{IntVal: 42}, nil
	})
	v, err := in.Evaluate("host_answer() + 0")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if v.Int() != 42 {
		t.Fatalf("expected 42, got %s", v.Describe())
	}
}

func TestLazyFunctionCreator(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if _, err := in.Declare(`int twice(int v);`); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	var asked []string
	in.InstallLazyFunctionCreator(func(name string) (NativeFunc, bool) {
		asked = append(asked, name)
		if name != "_Z5twicel" {
			return nil, false
		}
		return func(args []GenericValue) (GenericValue, error) {
			return GenericValue{IntVal: args[0].IntVal * 2}, nil
		}, true
	})
	for i := 0; i < 2; i++ {
		v, err := in.Evaluate("twice(21)")
		if err != nil {
			t.Fatalf("evaluate failed: %v", err)
		}
		if v.Int() != 42 {
			t.Fatalf("expected 42, got %s", v.Describe())
		}
	}
	if len(asked) != 1 {
		t.Fatalf("creator should be asked once, got %v", asked)
	}
}

func TestClassesAndMethods(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if _, err := in.Declare(`struct Point {
  int x = 1;
  int y = 2;
  int sum() { return x + y; }
  void shift(int d) { x += d; y += d; }
};`); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	v, err := in.Evaluate("Point p; p.x = 10; p.shift(1); p.sum()")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if v.Int() != 14 {
		t.Fatalf("expected 14, got %s", v.Describe())
	}

	obj, err := in.Evaluate("Point q; q")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	field, ok := obj.Field("y")
	if !ok || field.Int() != 2 {
		t.Fatalf("expected field y = 2, got %v", field.Describe())
	}
}

func TestDestructors(t *testing.T) {
	in, out := newTestInterpreter(t, Config{})
	if _, err := in.Declare(`struct Guard { string name = "g"; ~Guard() { println("bye " + name); } };`); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	if _, err := in.Evaluate(`{ Guard local; local.name = "local"; } println("after");`); err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if out.String() != "bye local\nafter\n" {
		t.Fatalf("unexpected output %q", out.String())
	}

	out.Reset()
	if _, err := in.Declare(`Guard global;`); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("global destructor ran early: %q", out.String())
	}
	if err := in.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if out.String() != "bye g\n" {
		t.Fatalf("expected global destructor on close, got %q", out.String())
	}
}

func TestCloseIsFinal(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if err := in.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := in.Close(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if _, err := in.Evaluate("1"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if _, err := in.Declare("int x;"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestGuestCodeDeclares(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	v, err := in.Evaluate(`cinder::declare("int later = 9;")`)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if !v.Bool() {
		t.Fatalf("expected nested declare to succeed")
	}
	later, err := in.Evaluate("later")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if later.Int() != 9 {
		t.Fatalf("expected 9, got %s", later.Describe())
	}

	v, err = in.Evaluate(`cinder::declare("int broken = ;")`)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if v.Bool() {
		t.Fatalf("expected nested declare to report failure")
	}
}

func TestSyntaxOnly(t *testing.T) {
	in, out := newTestInterpreter(t, Config{SyntaxOnly: true})
	v, err := in.Echo(`println("never")`)
	if err != nil {
		t.Fatalf("echo failed: %v", err)
	}
	if v.IsValid() || out.Len() != 0 {
		t.Fatalf("syntax-only mode must not run code")
	}
	if _, err := in.Declare("int x = ;"); err == nil {
		t.Fatalf("syntax errors must still be reported")
	}
}

func TestLoadFileUsesIncludePaths(t *testing.T) {
	files := map[string]string{
		"lib/triple.c": "#include \"helpers.c\"\nint triple(int v) { return helper(v) * 3; }",
		"lib/helpers.c": "int helper(int v) { return v; }",
	}
	in, _ := newTestInterpreter(t, Config{
		IncludePaths: []string{"lib"},
		ReadFile: func(path string) ([]byte, error) {
			if text, ok := files[path]; ok {
				return []byte(text), nil
			}
			return nil, errors.New("not found")
		},
	})
	if _, err := in.LoadFile("triple.c"); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	v, err := in.Evaluate("triple(3)")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if v.Int() != 9 {
		t.Fatalf("expected 9, got %s", v.Describe())
	}
	if _, err := in.LoadFile("absent.c"); err == nil || !strings.Contains(err.Error(), "file not found") {
		t.Fatalf("expected file not found, got %v", err)
	}
}

func TestTransactionHistory(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if in.LastTransaction() != nil || in.LastTopLevelDecl() != nil {
		t.Fatalf("expected empty history")
	}
	if _, err := in.Declare("int a = 1; int b = 2;"); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	tx := in.LastTransaction()
	if tx.Parent() != nil {
		t.Fatalf("top-level transaction must not have a parent")
	}
	if len(tx.Decls()) != 2 || tx.LastDecl().DeclName() != "b" {
		t.Fatalf("unexpected declarations %v", tx.Decls())
	}
	if in.LastTopLevelDecl().DeclName() != "b" {
		t.Fatalf("expected b as last declaration")
	}
	if tx.Source() != "int a = 1; int b = 2;" {
		t.Fatalf("unexpected source %q", tx.Source())
	}
}

func TestWarningsGoToStderr(t *testing.T) {
	var out, errOut bytes.Buffer
	in := MustNewInterpreter(Config{Stdout: &out, Stderr: &errOut})
	if _, err := in.Evaluate("int x = 1; x + 1; x"); err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if !strings.Contains(errOut.String(), "warning") {
		t.Fatalf("expected an unused expression warning, got %q", errOut.String())
	}

	errOut.Reset()
	if _, err := in.ProcessLine("int y = 1; y + 1; y"); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if errOut.Len() != 0 {
		t.Fatalf("interactive input must not warn about unused values, got %q", errOut.String())
	}
}
