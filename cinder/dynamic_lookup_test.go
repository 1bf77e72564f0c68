package cinder

import (
	"errors"
	"strings"
	"testing"
)

func TestDynamicLookupUsesCallbacks(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{DynamicLookup: true})
	var asked []string
	in.SetCallbacks(CallbacksFunc(func(name string, scope DeclContext) (Value, error) {
		asked = append(asked, name)
		switch name {
		case "answer":
			return IntValue(41), nil
		case "greeting":
			return StringValue("hello"), nil
		}
		return Value{}, nil
	}))

	v, err := in.Evaluate("answer + 1")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if v.Int() != 42 {
		t.Fatalf("expected 42, got %s", v.Describe())
	}

	v, err = in.Evaluate("len(greeting)")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if v.Int() != 5 {
		t.Fatalf("expected 5, got %s", v.Describe())
	}
	if len(asked) != 2 {
		t.Fatalf("expected two callback lookups, got %v", asked)
	}

	_, err = in.Evaluate("nobody + 1")
	if err == nil || !strings.Contains(err.Error(), "nobody") {
		t.Fatalf("expected undeclared identifier error, got %v", err)
	}
}

func TestDynamicLookupSeesLocals(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{DynamicLookup: true})
	in.SetCallbacks(CallbacksFunc(func(name string, scope DeclContext) (Value, error) {
		return IntValue(10), nil
	}))
	v, err := in.Evaluate("int local = 5; int sum = local + outside; sum")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if v.Int() != 15 {
		t.Fatalf("expected 15, got %s", v.Describe())
	}
}

func TestDynamicLookupCallbackError(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{DynamicLookup: true})
	denied := errors.New("denied")
	in.SetCallbacks(CallbacksFunc(func(string, DeclContext) (Value, error) {
		return Value{}, denied
	}))
	_, err := in.Evaluate("secret * 2")
	if !errors.Is(err, denied) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestDynamicLookupDisabled(t *testing.T) {
	in, _ := newTestInterpreter(t, Config{})
	if in.IsDynamicLookupEnabled() {
		t.Fatalf("dynamic lookup must be off by default")
	}
	if _, err := in.Evaluate("unknown + 1"); !isCompileError(err) {
		t.Fatalf("expected compile error, got %v", err)
	}
	in.EnableDynamicLookup(true)
	in.SetCallbacks(CallbacksFunc(func(string, DeclContext) (Value, error) {
		return FloatValue(0.5), nil
	}))
	v, err := in.Evaluate("unknown + 1")
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if v.Float() != 1.5 {
		t.Fatalf("expected 1.5, got %s", v.Describe())
	}
}

func TestEvaluateInScope(t *testing.T) {
	in, out := newTestInterpreter(t, Config{})
	if _, err := in.Declare(`namespace cfg { int retries = 3; }`); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	scope := in.LookupDecl("cfg", nil).SingleDecl().(*NamespaceDecl)
	v, err := in.EvaluateIn("retries * 2", scope, true)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if v.Int() != 6 || out.String() != "6\n" {
		t.Fatalf("expected 6 echoed, got %s and %q", v.Describe(), out.String())
	}
}
