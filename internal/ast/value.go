// Package ast holds the parse tree, column definitions, and the typed
// Value variant shared by the parser, planner, and virtual machine.
package ast

import "fmt"

// ValueKind tags the dynamic type carried by a Value.
type ValueKind int

const (
	Null ValueKind = iota
	IntKind
	RealKind
	TextKind
	BoolKind
)

// Value is the tagged variant used for every row cell, literal, and
// comparison operand. Comparisons are only defined within a kind;
// cross-kind comparisons yield false rather than erroring.
type Value struct {
	Kind ValueKind
	I    int64
	R    float64
	S    string
	B    bool
}

func NullValue() Value          { return Value{Kind: Null} }
func IntValue(i int64) Value    { return Value{Kind: IntKind, I: i} }
func RealValue(r float64) Value { return Value{Kind: RealKind, R: r} }
func TextValue(s string) Value  { return Value{Kind: TextKind, S: s} }
func BoolValue(b bool) Value    { return Value{Kind: BoolKind, B: b} }

// Any unwraps the Value to the nearest native Go type, for callers
// that need to hand rows to something generic (JSON encoders, etc).
func (v Value) Any() any {
	switch v.Kind {
	case IntKind:
		return v.I
	case RealKind:
		return v.R
	case TextKind:
		return v.S
	case BoolKind:
		return v.B
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.Kind {
	case IntKind:
		return fmt.Sprintf("%d", v.I)
	case RealKind:
		return fmt.Sprintf("%g", v.R)
	case TextKind:
		return v.S
	case BoolKind:
		return fmt.Sprintf("%t", v.B)
	default:
		return "NULL"
	}
}

// Equal reports strict equality within a kind; differing kinds are
// never equal, matching spec's "numeric vs string lexeme" boundary case.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case IntKind:
		return v.I == o.I
	case RealKind:
		return v.R == o.R
	case TextKind:
		return v.S == o.S
	case BoolKind:
		return v.B == o.B
	default:
		return true // Null == Null
	}
}

// Compare returns -1/0/1 for ordered kinds (Int, Real, Text); ok is
// false for Bool/Null or mismatched kinds, which have no ordering.
func (v Value) Compare(o Value) (result int, ok bool) {
	if v.Kind != o.Kind {
		return 0, false
	}
	switch v.Kind {
	case IntKind:
		switch {
		case v.I < o.I:
			return -1, true
		case v.I > o.I:
			return 1, true
		default:
			return 0, true
		}
	case RealKind:
		switch {
		case v.R < o.R:
			return -1, true
		case v.R > o.R:
			return 1, true
		default:
			return 0, true
		}
	case TextKind:
		switch {
		case v.S < o.S:
			return -1, true
		case v.S > o.S:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}
