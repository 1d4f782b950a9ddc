package schema

import "strconv"

// ArgKind tags the dynamic type of an interned argument value. Event
// arguments are stored schema-aligned (one Value per ArgSpec slot) rather
// than as a dynamic string-keyed map, so an Event's Args line up
// positionally with its Type's Args without any name lookups on the hot
// path.
type ArgKind uint8

const (
	KindInvalid ArgKind = iota
	KindInt
	KindFloat
	KindString
	KindBool
)

func (k ArgKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// Value is a tagged-union argument value. Only the field matching Kind is
// meaningful.
type Value struct {
	Kind ArgKind
	I    int64
	F    float64
	S    string
	B    bool
}

func IntValue(v int64) Value     { return Value{Kind: KindInt, I: v} }
func FloatValue(v float64) Value { return Value{Kind: KindFloat, F: v} }
func StringValue(v string) Value { return Value{Kind: KindString, S: v} }
func BoolValue(v bool) Value     { return Value{Kind: KindBool, B: v} }

// Text renders the value for substring filtering and display, independent
// of its kind.
func (v Value) Text() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.I, 10)
	case KindFloat:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case KindString:
		return v.S
	case KindBool:
		if v.B {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
