package ast

import "strconv"

// ValueKind identifies the type carried by a Value.
// The rule language has a strong type system with no automatic coercion.
type ValueKind string

const (
	ValueBool   ValueKind = "bool"
	ValueNumber ValueKind = "number"
	ValueString ValueKind = "string"
)

// Value is the tagged union flowing through evaluation: a rule resolves to
// a boolean, a number, or a string. Exactly one of the payload fields is
// meaningful, selected by Kind.
type Value struct {
	Kind ValueKind
	Bool bool
	Num  float64
	Str  string
}

// BoolValue creates a boolean Value.
func BoolValue(b bool) Value {
	return Value{Kind: ValueBool, Bool: b}
}

// NumberValue creates a numeric Value.
func NumberValue(n float64) Value {
	return Value{Kind: ValueNumber, Num: n}
}

// StringValue creates a string Value.
func StringValue(s string) Value {
	return Value{Kind: ValueString, Str: s}
}

// Equal reports whether two values have the same kind and payload.
// It is a plain structural comparison; type mismatch handling belongs to
// the evaluator, which refuses to compare unlike kinds.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueBool:
		return v.Bool == o.Bool
	case ValueNumber:
		return v.Num == o.Num
	case ValueString:
		return v.Str == o.Str
	default:
		// Matching unrecognized kinds (the zero Value included) compare
		// structurally, keeping Equal reflexive.
		return v == o
	}
}

// Interface returns the payload as a plain Go value (bool, float64, or
// string), for JSON serialization in the CLI.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case ValueBool:
		return v.Bool
	case ValueNumber:
		return v.Num
	case ValueString:
		return v.Str
	default:
		return nil
	}
}

// String returns a human-readable representation of the value.
func (v Value) String() string {
	switch v.Kind {
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case ValueString:
		return v.Str
	default:
		return "<invalid>"
	}
}
