package cinder

import (
	"fmt"
	"io"
)

// Value is a result produced by running a fragment: the raw backend result
// paired with the static type captured when the fragment was wrapped. The
// zero Value is invalid and means "no value".
type Value struct {
	gv  GenericValue
	typ Type
}

func newValue(gv GenericValue, t Type) Value {
	if t.Kind == KindDynamic {
		if boxed, ok := gv.PtrVal.(Value); ok {
			return boxed
		}
	}
	return Value{gv: gv, typ: t}
}

func IntValue(i int64) Value     { return Value{gv: GenericValue{IntVal: i}, typ: TypeInt} }
func FloatValue(f float64) Value { return Value{gv: GenericValue{FloatVal: f}, typ: TypeDouble} }
func BoolValue(b bool) Value     { return Value{gv: boolGeneric(b), typ: TypeBool} }
func StringValue(s string) Value { return Value{gv: GenericValue{StrVal: s}, typ: TypeString} }

// voidValue is what Echo returns for a void trailing expression.
func voidValue() Value { return Value{typ: TypeVoid} }

func (v Value) IsValid() bool { return v.typ.IsValid() }
func (v Value) IsVoid() bool  { return v.typ.IsVoid() }
func (v Value) Type() Type    { return v.typ }

// Generic returns the raw backend slot.
func (v Value) Generic() GenericValue { return v.gv }

func (v Value) Int() int64 {
	switch v.typ.Kind {
	case KindInt, KindBool:
		return v.gv.IntVal
	case KindDouble:
		return int64(v.gv.FloatVal)
	default:
		return 0
	}
}

func (v Value) Float() float64 {
	switch v.typ.Kind {
	case KindDouble:
		return v.gv.FloatVal
	case KindInt, KindBool:
		return float64(v.gv.IntVal)
	default:
		return 0
	}
}

func (v Value) Bool() bool {
	if !v.typ.IsArithmetic() {
		return false
	}
	return truthy(v.gv, v.typ)
}

// Str returns the contents of a string value.
func (v Value) Str() string {
	if v.typ.Kind != KindString {
		return ""
	}
	return v.gv.StrVal
}

// Object returns the instance behind a class value.
func (v Value) Object() *Object {
	if v.typ.Kind != KindClass {
		return nil
	}
	obj, _ := v.gv.PtrVal.(*Object)
	return obj
}

// Field returns the named field of a class value.
func (v Value) Field(name string) (Value, bool) {
	obj := v.Object()
	if obj == nil {
		return Value{}, false
	}
	for i, field := range obj.Class.Fields {
		if field.Name == name {
			return Value{gv: obj.Fields[i], typ: field.Type}, true
		}
	}
	return Value{}, false
}

func (v Value) Equal(other Value) bool {
	if !v.typ.Equal(other.typ) {
		return false
	}
	switch v.typ.Kind {
	case KindInt, KindBool:
		return v.gv.IntVal == other.gv.IntVal
	case KindDouble:
		return v.gv.FloatVal == other.gv.FloatVal
	case KindString:
		return v.gv.StrVal == other.gv.StrVal
	case KindClass:
		a, b := v.Object(), other.Object()
		if a == nil || b == nil {
			return a == b
		}
		for i := range a.Fields {
			fa := Value{gv: a.Fields[i], typ: a.Class.Fields[i].Type}
			fb := Value{gv: b.Fields[i], typ: b.Class.Fields[i].Type}
			if !fa.Equal(fb) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Print writes the printed representation followed by a newline. Void
// values print nothing.
func (v Value) Print(w io.Writer) error {
	if !v.IsValid() || v.IsVoid() {
		return nil
	}
	_, err := fmt.Fprintln(w, v.String())
	return err
}
