package cinder

// TypeKind enumerates the static types of the guest language.
type TypeKind int

const (
	KindInvalid TypeKind = iota
	KindVoid
	KindBool
	KindInt
	KindDouble
	KindString
	KindClass
	// KindDynamic marks an expression whose type is only known after
	// dynamic lookup ran.
	KindDynamic
)

func (k TypeKind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindClass:
		return "class"
	case KindDynamic:
		return "<dynamic>"
	default:
		return "<invalid>"
	}
}

// Type is a resolved static type.
type Type struct {
	Kind  TypeKind
	Class *ClassDecl
}

var (
	TypeInvalid = Type{}
	TypeVoid    = Type{Kind: KindVoid}
	TypeBool    = Type{Kind: KindBool}
	TypeInt     = Type{Kind: KindInt}
	TypeDouble  = Type{Kind: KindDouble}
	TypeString  = Type{Kind: KindString}
	TypeDynamic = Type{Kind: KindDynamic}
)

// ClassType returns the type of values of class c.
func ClassType(c *ClassDecl) Type { return Type{Kind: KindClass, Class: c} }

func (t Type) String() string {
	if t.Kind == KindClass && t.Class != nil {
		return QualifiedName(t.Class)
	}
	return t.Kind.String()
}

func (t Type) Equal(other Type) bool {
	return t.Kind == other.Kind && t.Class == other.Class
}

func (t Type) IsVoid() bool    { return t.Kind == KindVoid }
func (t Type) IsValid() bool   { return t.Kind != KindInvalid }
func (t Type) IsDynamic() bool { return t.Kind == KindDynamic }

// IsArithmetic reports whether the type participates in numeric promotion.
func (t Type) IsArithmetic() bool {
	return t.Kind == KindBool || t.Kind == KindInt || t.Kind == KindDouble
}

// implicitlyConvertible reports whether a value of from may initialize a
// variable of to.
func implicitlyConvertible(from, to Type) bool {
	switch {
	case from.Equal(to):
		return true
	case from.IsDynamic() || to.IsDynamic():
		return true
	case from.IsArithmetic() && to.IsArithmetic():
		return true
	default:
		return false
	}
}

// arithmeticResult returns the common type of a binary numeric operation.
func arithmeticResult(x, y Type) Type {
	if x.Kind == KindDouble || y.Kind == KindDouble {
		return TypeDouble
	}
	return TypeInt
}
