package cinder

import "fmt"

// GenericValue is the untyped result slot exchanged with the backend. The
// static Type decides which field is meaningful: IntVal for int and bool,
// FloatVal for double, StrVal for string, PtrVal for class objects and for
// boxed values of dynamic type.
type GenericValue struct {
	IntVal   int64
	FloatVal float64
	StrVal   string
	PtrVal   any
}

// Object is the storage of a class instance.
type Object struct {
	Class  *ClassDecl
	Fields []GenericValue
}

func (o *Object) clone() *Object {
	c := &Object{Class: o.Class, Fields: make([]GenericValue, len(o.Fields))}
	for i, f := range o.Fields {
		c.Fields[i] = copyGeneric(f, o.Class.Fields[i].Type)
	}
	return c
}

// copyGeneric gives class values their own storage; other kinds are
// already values.
func copyGeneric(gv GenericValue, t Type) GenericValue {
	if t.Kind == KindClass {
		if obj, ok := gv.PtrVal.(*Object); ok && obj != nil {
			return GenericValue{PtrVal: obj.clone()}
		}
	}
	return gv
}

func boolGeneric(b bool) GenericValue {
	if b {
		return GenericValue{IntVal: 1}
	}
	return GenericValue{}
}

func truthy(gv GenericValue, t Type) bool {
	switch t.Kind {
	case KindDouble:
		return gv.FloatVal != 0
	case KindDynamic:
		if v, ok := gv.PtrVal.(Value); ok {
			return truthy(v.gv, v.typ)
		}
		return false
	default:
		return gv.IntVal != 0
	}
}

// convertGeneric applies an implicit conversion at run time.
func convertGeneric(gv GenericValue, from, to Type) (GenericValue, error) {
	switch {
	case from.Equal(to):
		return gv, nil
	case to.Kind == KindDynamic:
		return GenericValue{PtrVal: newValue(gv, from)}, nil
	case from.Kind == KindDynamic:
		boxed, ok := gv.PtrVal.(Value)
		if !ok || !boxed.IsValid() {
			return GenericValue{}, fmt.Errorf("dynamically resolved expression produced no value")
		}
		if !implicitlyConvertible(boxed.typ, to) || boxed.typ.IsVoid() {
			return GenericValue{}, fmt.Errorf("cannot convert dynamically resolved '%s' to '%s'", boxed.typ, to)
		}
		return convertGeneric(boxed.gv, boxed.typ, to)
	}

	switch to.Kind {
	case KindBool:
		return boolGeneric(truthy(gv, from)), nil
	case KindInt:
		if from.Kind == KindDouble {
			return GenericValue{IntVal: int64(gv.FloatVal)}, nil
		}
		return GenericValue{IntVal: gv.IntVal}, nil
	case KindDouble:
		return GenericValue{FloatVal: float64(gv.IntVal)}, nil
	default:
		return GenericValue{}, fmt.Errorf("cannot convert '%s' to '%s'", from, to)
	}
}
