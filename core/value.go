package core

import (
	"fmt"
	"strconv"
	"strings"
)

type ValueKind int

const (
	NullValue ValueKind = iota
	IntValue
	FloatValue
	StringValue
	BoolValue
)

// Value is a single typed cell. The zero Value is NULL.
type Value struct {
	Kind  ValueKind
	Int   int64
	Float float64
	Str   string
	Bool  bool
}

func Null() Value {
	return Value{}
}

func NewInt(v int64) Value {
	return Value{Kind: IntValue, Int: v}
}

func NewFloat(v float64) Value {
	return Value{Kind: FloatValue, Float: v}
}

func NewString(v string) Value {
	return Value{Kind: StringValue, Str: v}
}

func NewBool(v bool) Value {
	return Value{Kind: BoolValue, Bool: v}
}

func (v Value) IsNull() bool {
	return v.Kind == NullValue
}

// Numeric returns the value as a float64 for INT/FLOAT values.
func (v Value) Numeric() (float64, bool) {
	switch v.Kind {
	case IntValue:
		return float64(v.Int), true
	case FloatValue:
		return v.Float, true
	default:
		return 0, false
	}
}

// Equal compares two values by identity, with INT/FLOAT cross-coercion.
// NULL never equals anything, including NULL.
func (v Value) Equal(other Value) bool {
	if v.IsNull() || other.IsNull() {
		return false
	}
	if a, ok := v.Numeric(); ok {
		b, ok := other.Numeric()
		return ok && a == b
	}
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case StringValue:
		return v.Str == other.Str
	case BoolValue:
		return v.Bool == other.Bool
	}
	return false
}

// Compare orders two values. INT and FLOAT compare numerically, STRING
// lexically. The second result is false when the pair has no defined
// ordering (NULL operands, BOOL operands, mixed kinds).
func (v Value) Compare(other Value) (int, bool) {
	if v.IsNull() || other.IsNull() {
		return 0, false
	}
	if a, ok := v.Numeric(); ok {
		b, ok := other.Numeric()
		if !ok {
			return 0, false
		}
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	}
	if v.Kind == StringValue && other.Kind == StringValue {
		return strings.Compare(v.Str, other.Str), true
	}
	return 0, false
}

// Key returns a canonical encoding used for index, group, and DISTINCT
// keys. Distinct values always produce distinct keys within one column.
func (v Value) Key() string {
	switch v.Kind {
	case IntValue:
		return "i:" + strconv.FormatInt(v.Int, 10)
	case FloatValue:
		return "f:" + strconv.FormatFloat(v.Float, 'g', -1, 64)
	case StringValue:
		return "s:" + v.Str
	case BoolValue:
		return "b:" + strconv.FormatBool(v.Bool)
	default:
		return "n:"
	}
}

func (v Value) String() string {
	switch v.Kind {
	case IntValue:
		return strconv.FormatInt(v.Int, 10)
	case FloatValue:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case StringValue:
		return v.Str
	case BoolValue:
		return strconv.FormatBool(v.Bool)
	default:
		return "NULL"
	}
}

// Native returns the value as a plain Go value suitable for JSON
// serialization: nil, int64, float64, string, or bool.
func (v Value) Native() any {
	switch v.Kind {
	case IntValue:
		return v.Int
	case FloatValue:
		return v.Float
	case StringValue:
		return v.Str
	case BoolValue:
		return v.Bool
	default:
		return nil
	}
}

// Conform checks a value against a declared column type, returning the
// stored form. NULL conforms to every type and INT widens to FLOAT;
// every other cross-type combination is rejected.
func Conform(v Value, t ColumnType) (Value, bool) {
	if v.IsNull() {
		return v, true
	}
	switch t {
	case IntType:
		if v.Kind == IntValue {
			return v, true
		}
	case FloatType:
		if v.Kind == FloatValue {
			return v, true
		}
		if v.Kind == IntValue {
			return NewFloat(float64(v.Int)), true
		}
	case StringType:
		if v.Kind == StringValue {
			return v, true
		}
	case BoolType:
		if v.Kind == BoolValue {
			return v, true
		}
	}
	return Value{}, false
}

// KindName names the dynamic type of the value for error messages.
func (v Value) KindName() string {
	switch v.Kind {
	case IntValue:
		return "INT"
	case FloatValue:
		return "FLOAT"
	case StringValue:
		return "STRING"
	case BoolValue:
		return "BOOL"
	default:
		return "NULL"
	}
}

// FromNative rebuilds a Value from a decoded JSON scalar, guided by the
// declared column type. JSON numbers arrive as float64.
func FromNative(raw any, t ColumnType) (Value, error) {
	if raw == nil {
		return Null(), nil
	}
	switch t {
	case IntType:
		switch n := raw.(type) {
		case float64:
			return NewInt(int64(n)), nil
		case int64:
			return NewInt(n), nil
		}
	case FloatType:
		switch n := raw.(type) {
		case float64:
			return NewFloat(n), nil
		case int64:
			return NewFloat(float64(n)), nil
		}
	case StringType:
		if s, ok := raw.(string); ok {
			return NewString(s), nil
		}
	case BoolType:
		if b, ok := raw.(bool); ok {
			return NewBool(b), nil
		}
	}
	return Value{}, fmt.Errorf("value %v does not fit column type %s", raw, t)
}
