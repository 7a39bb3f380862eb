// Package yarn is the dialogue compile-and-run engine: lexer, parser,
// compiler, bytecode program, and virtual machine.
package yarn

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueType is the type tag of a Value.
type ValueType int

const (
	// Null is the absence of a value. It participates in the legacy
	// equality quirk: Null == 0, Null == false, Null == "".
	Null ValueType = iota
	Number
	String
	Bool
	// Variable is a deferred reference to a named variable, built with
	// NewVariableRef. The parser represents variables as VariableExpr
	// instead, and the VM never holds a Variable-typed Value on its stack.
	Variable
)

func (t ValueType) String() string {
	switch t {
	case Null:
		return "null"
	case Number:
		return "number"
	case String:
		return "string"
	case Bool:
		return "bool"
	case Variable:
		return "variable"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// Value is a tagged union of the five kinds of value yarn-script expressions
// may hold. It is deliberately small and copyable; there is no boxing beyond
// the string field.
type Value struct {
	t    ValueType
	num  float32
	str  string
	b    bool
	name string // only meaningful when t == Variable
}

// NewNull returns the Null value.
func NewNull() Value { return Value{t: Null} }

// NewNumber returns a Number value.
func NewNumber(n float32) Value { return Value{t: Number, num: n} }

// NewString returns a String value.
func NewString(s string) Value { return Value{t: String, str: s} }

// NewBool returns a Bool value.
func NewBool(b bool) Value { return Value{t: Bool, b: b} }

// NewVariableRef returns a Variable-reference value for the given name
// (including its leading '$').
func NewVariableRef(name string) Value { return Value{t: Variable, name: name} }

// Type returns the value's tag.
func (v Value) Type() ValueType { return v.t }

// VariableName returns the referenced name, valid only when Type() ==
// Variable.
func (v Value) VariableName() string { return v.name }

// AsNumber coerces v to a number per the engine's coercion rules: Number is
// itself, String is parsed as an invariant-locale float (0 on parse
// failure), Bool is 1 or 0, Null is 0.
func (v Value) AsNumber() float32 {
	switch v.t {
	case Number:
		return v.num
	case String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 32)
		if err != nil {
			return 0
		}
		return float32(f)
	case Bool:
		if v.b {
			return 1
		}
		return 0
	case Null:
		return 0
	default:
		return 0
	}
}

// AsBool coerces v to a bool: Number is true unless NaN or zero, String is
// true unless empty, Bool is itself, Null is false.
func (v Value) AsBool() bool {
	switch v.t {
	case Number:
		return !math.IsNaN(float64(v.num)) && v.num != 0
	case String:
		return v.str != ""
	case Bool:
		return v.b
	case Null:
		return false
	default:
		return false
	}
}

// AsString coerces v to a string representation.
func (v Value) AsString() string {
	switch v.t {
	case Number:
		return strconv.FormatFloat(float64(v.num), 'g', -1, 32)
	case String:
		return v.str
	case Bool:
		return strconv.FormatBool(v.b)
	case Null:
		return ""
	case Variable:
		return v.name
	default:
		return ""
	}
}

// isNumeric reports whether v is a type that participates in the numeric
// coercion ladder (Number, Bool, Null) as opposed to needing a string path.
func (v Value) isNumeric() bool {
	return v.t == Number || v.t == Bool || v.t == Null
}

// Add implements the '+' operator: string concatenation if either side is a
// String, else numeric addition with Bool/Null coercion.
func Add(a, b Value) (Value, error) {
	if a.t == String || b.t == String {
		return NewString(a.AsString() + b.AsString()), nil
	}
	if a.isNumeric() && b.isNumeric() {
		return NewNumber(a.AsNumber() + b.AsNumber()), nil
	}
	return Value{}, fmt.Errorf("cannot add %s and %s", a.t, b.t)
}

func requireArithmetic(a, b Value, op string) error {
	if !a.isNumeric() || !b.isNumeric() {
		return fmt.Errorf("operator %q requires numbers (or null), got %s and %s", op, a.t, b.t)
	}
	return nil
}

// Sub implements the '-' operator.
func Sub(a, b Value) (Value, error) {
	if err := requireArithmetic(a, b, "-"); err != nil {
		return Value{}, err
	}
	return NewNumber(a.AsNumber() - b.AsNumber()), nil
}

// Mul implements the '*' operator.
func Mul(a, b Value) (Value, error) {
	if err := requireArithmetic(a, b, "*"); err != nil {
		return Value{}, err
	}
	return NewNumber(a.AsNumber() * b.AsNumber()), nil
}

// Div implements the '/' operator. Division by zero produces IEEE
// infinities/NaN rather than an error, per the float underneath.
func Div(a, b Value) (Value, error) {
	if err := requireArithmetic(a, b, "/"); err != nil {
		return Value{}, err
	}
	return NewNumber(a.AsNumber() / b.AsNumber()), nil
}

// Mod implements the '%' operator.
func Mod(a, b Value) (Value, error) {
	if err := requireArithmetic(a, b, "%"); err != nil {
		return Value{}, err
	}
	return NewNumber(float32(math.Mod(float64(a.AsNumber()), float64(b.AsNumber())))), nil
}

// Neg implements unary '-'.
func Neg(a Value) (Value, error) {
	if !a.isNumeric() {
		return Value{}, fmt.Errorf("unary '-' requires a number (or null), got %s", a.t)
	}
	return NewNumber(-a.AsNumber()), nil
}

// Not implements unary '!'.
func Not(a Value) (Value, error) {
	return NewBool(!a.AsBool()), nil
}

// Equal implements value equality, including the legacy quirk that Null
// compares equal to anything whose AsNumber is 0 or AsBool is false.
func Equal(a, b Value) bool {
	if a.t == Null || b.t == Null {
		other := a
		if a.t == Null {
			other = b
		}
		return other.AsNumber() == 0 || !other.AsBool()
	}
	if a.t == b.t {
		switch a.t {
		case Number:
			return a.num == b.num
		case String:
			return a.str == b.str
		case Bool:
			return a.b == b.b
		}
	}
	return a.AsString() == b.AsString()
}

// Compare returns -1, 0, or 1 comparing a to b: same-type values compare
// directly (numerically for Number and Bool, lexically for String), otherwise
// both sides are compared as strings.
func Compare(a, b Value) int {
	if a.t == b.t {
		switch a.t {
		case Number:
			return cmpFloat(a.num, b.num)
		case String:
			return strings.Compare(a.str, b.str)
		case Bool:
			return cmpFloat(a.AsNumber(), b.AsNumber())
		}
	}
	return strings.Compare(a.AsString(), b.AsString())
}

func cmpFloat(a, b float32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
