package cinder

import (
	"bytes"
	"math"
	"testing"
)

func TestValueFormatting(t *testing.T) {
	tests := []struct {
		value    Value
		str      string
		describe string
	}{
		{IntValue(5), "5", "(int) 5"},
		{IntValue(-12), "-12", "(int) -12"},
		{FloatValue(2), "2.0", "(double) 2.0"},
		{FloatValue(0.25), "0.25", "(double) 0.25"},
		{FloatValue(1e21), "1e+21", "(double) 1e+21"},
		{FloatValue(math.Inf(-1)), "-inf", "(double) -inf"},
		{BoolValue(true), "true", "(bool) true"},
		{StringValue(`say "hi"`), `"say \"hi\""`, `(string) "say \"hi\""`},
		{Value{}, "<no value>", "<no value>"},
		{voidValue(), "", "(void)"},
	}
	for _, tc := range tests {
		if got := tc.value.String(); got != tc.str {
			t.Fatalf("String() = %q, want %q", got, tc.str)
		}
		if got := tc.value.Describe(); got != tc.describe {
			t.Fatalf("Describe() = %q, want %q", got, tc.describe)
		}
	}
}

func TestValueAccessors(t *testing.T) {
	if IntValue(3).Float() != 3 || FloatValue(2.9).Int() != 2 {
		t.Fatalf("numeric accessors must convert")
	}
	if !IntValue(3).Bool() || IntValue(0).Bool() || StringValue("x").Bool() {
		t.Fatalf("unexpected truthiness")
	}
	if StringValue("abc").Str() != "abc" || IntValue(1).Str() != "" {
		t.Fatalf("Str only reads strings")
	}
	if IntValue(1).Equal(FloatValue(1)) {
		t.Fatalf("values of different types are not equal")
	}
	if !StringValue("a").Equal(StringValue("a")) {
		t.Fatalf("equal strings must compare equal")
	}
	if IntValue(1).Object() != nil {
		t.Fatalf("only class values carry objects")
	}
}

func TestValuePrint(t *testing.T) {
	var buf bytes.Buffer
	for _, v := range []Value{IntValue(1), voidValue(), Value{}, StringValue("s")} {
		if err := v.Print(&buf); err != nil {
			t.Fatalf("print failed: %v", err)
		}
	}
	if buf.String() != "1\n\"s\"\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestConvertGeneric(t *testing.T) {
	gv, err := convertGeneric(GenericValue{FloatVal: 2.7}, TypeDouble, TypeInt)
	if err != nil || gv.IntVal != 2 {
		t.Fatalf("double to int: got %v, %v", gv, err)
	}
	boxed, err := convertGeneric(GenericValue{IntVal: 4}, TypeInt, TypeDynamic)
	if err != nil {
		t.Fatalf("boxing failed: %v", err)
	}
	gv, err = convertGeneric(boxed, TypeDynamic, TypeDouble)
	if err != nil || gv.FloatVal != 4 {
		t.Fatalf("unboxing to double: got %v, %v", gv, err)
	}
	if _, err := convertGeneric(GenericValue{PtrVal: StringValue("s")}, TypeDynamic, TypeInt); err == nil {
		t.Fatalf("expected an error converting a string to int")
	}
}
