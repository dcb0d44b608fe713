// Package value implements the tagged Value/Kind model that pins carry.
//
// No third-party variant type fits here, so the tag+struct shape follows a
// plain hand-rolled enum (the same shape as an ad hoc lifecycle-phase type
// would take) rather than a generic sum-type library. The numeric payload
// uses shopspring/decimal instead of float64 so repeated block arithmetic
// (Add feeding Add feeding Max, ...) doesn't accumulate binary-floating-point
// drift.
package value

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind tags the runtime type of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	default:
		return "unknown"
	}
}

// ParseKind resolves a Kind from its string name, the inverse of
// Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "null":
		return KindNull, nil
	case "bool":
		return KindBool, nil
	case "number":
		return KindNumber, nil
	case "string":
		return KindString, nil
	case "list":
		return KindList, nil
	case "dict":
		return KindDict, nil
	default:
		return 0, fmt.Errorf("value: unknown kind %q", s)
	}
}

// Value is a tagged union: exactly the field matching Kind is meaningful.
type Value struct {
	kind Kind
	b    bool
	n    decimal.Decimal
	unit string
	s    string
	list []Value
	dict map[string]Value
}

// Null returns the absence-of-value sentinel (distinct from "no value ever
// received", which pins represent with optional<Value> at the Go level via
// a value/bool pair, see pin.Input.CurrentValue).
func Null() Value { return Value{kind: KindNull} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number constructs a unitless numeric value.
func Number(n decimal.Decimal) Value { return Value{kind: KindNumber, n: n} }

// NumberFromFloat is a convenience constructor for literal test values.
func NumberFromFloat(f float64) Value { return Value{kind: KindNumber, n: decimal.NewFromFloat(f)} }

// NumberWithUnit constructs a numeric value tagged with a unit (e.g. "meter").
func NumberWithUnit(n decimal.Decimal, unit string) Value {
	return Value{kind: KindNumber, n: n, unit: unit}
}

func String(s string) Value { return Value{kind: KindString, s: s} }

func List(items []Value) Value { return Value{kind: KindList, list: items} }

func Dict(fields map[string]Value) Value { return Value{kind: KindDict, dict: fields} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) Number() (decimal.Decimal, bool) {
	if v.kind != KindNumber {
		return decimal.Decimal{}, false
	}
	return v.n, true
}

// Unit returns the numeric value's unit tag, "" if none or not a number.
func (v Value) Unit() string {
	if v.kind != KindNumber {
		return ""
	}
	return v.unit
}

func (v Value) String() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v Value) List() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

func (v Value) Dict() (map[string]Value, bool) {
	if v.kind != KindDict {
		return nil, false
	}
	return v.dict, true
}

// Equal reports whether two values have the same kind and payload. Used by
// the engine's change-of-value comparison.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.unit == b.unit && a.n.Equal(b.n)
	case KindString:
		return a.s == b.s
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if len(a.dict) != len(b.dict) {
			return false
		}
		for k, av := range a.dict {
			bv, ok := b.dict[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// GoString renders a compact, human-readable form for logs and inspect
// snapshots; it is never used for equality or wire encoding.
func (v Value) GoString() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindNumber:
		if v.unit != "" {
			return fmt.Sprintf("%s %s", v.n.String(), v.unit)
		}
		return v.n.String()
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindList:
		return fmt.Sprintf("list[%d]", len(v.list))
	case KindDict:
		return fmt.Sprintf("dict[%d]", len(v.dict))
	default:
		return "<invalid>"
	}
}
