package cinder

import (
	"math"
	"strconv"
	"strings"
)

// String returns the printed representation of the value: `5`, `2.5`,
// `true`, `"text"` or `Point{x: 1, y: 2}`.
func (v Value) String() string {
	return formatGeneric(v.gv, v.typ, 0)
}

// Describe prefixes the printed representation with its type, as in
// `(int) 5`.
func (v Value) Describe() string {
	if !v.IsValid() {
		return "<no value>"
	}
	if v.IsVoid() {
		return "(void)"
	}
	return "(" + v.typ.String() + ") " + v.String()
}

const maxFormatDepth = 16

func formatGeneric(gv GenericValue, t Type, depth int) string {
	switch t.Kind {
	case KindInvalid:
		return "<no value>"
	case KindVoid:
		return ""
	case KindBool:
		return strconv.FormatBool(gv.IntVal != 0)
	case KindInt:
		return strconv.FormatInt(gv.IntVal, 10)
	case KindDouble:
		return formatFloat(gv.FloatVal)
	case KindString:
		return strconv.Quote(gv.StrVal)
	case KindDynamic:
		if boxed, ok := gv.PtrVal.(Value); ok {
			return formatGeneric(boxed.gv, boxed.typ, depth)
		}
		return "<no value>"
	case KindClass:
		return formatObject(gv, t, depth)
	default:
		return "<unknown>"
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func formatObject(gv GenericValue, t Type, depth int) string {
	obj, ok := gv.PtrVal.(*Object)
	if !ok || obj == nil {
		return t.String() + "{}"
	}
	if depth >= maxFormatDepth {
		return t.String() + "{...}"
	}
	var b strings.Builder
	b.WriteString(t.String())
	b.WriteString("{")
	for i, field := range obj.Class.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(field.Name)
		b.WriteString(": ")
		b.WriteString(formatGeneric(obj.Fields[i], field.Type, depth+1))
	}
	b.WriteString("}")
	return b.String()
}
