package object

import "math"

// FloatTolerance is the absolute tolerance used for float equality and for
// detecting a zero float divisor.
const FloatTolerance = 1e-9

// IsTruthy reports the truth value of obj as used by if, while, the ternary
// operator and the logical operators.
func IsTruthy(obj Object) bool {
	switch o := obj.(type) {
	case nil, *Nil:
		return false
	case *Boolean:
		return o.Value
	case *Integer:
		return o.Value != 0
	case *Float:
		return o.Value != 0
	case *String:
		return o.Value != ""
	default:
		return true
	}
}

// ToFloat returns the numeric value of an Integer or Float.
func ToFloat(obj Object) (float64, bool) {
	switch o := obj.(type) {
	case *Integer:
		return float64(o.Value), true
	case *Float:
		return o.Value, true
	}
	return 0, false
}

// IsNumber reports whether obj is an Integer or a Float.
func IsNumber(obj Object) bool {
	_, ok := ToFloat(obj)
	return ok
}

// FloatEqual compares with FloatTolerance.
func FloatEqual(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) < FloatTolerance
}

// Equals implements ==. Values of different variants are unequal, except
// integers and floats which are compared as floats. Arrays, maps and
// functions compare by identity.
func Equals(a, b Object) bool {
	if a == nil {
		a = NIL
	}
	if b == nil {
		b = NIL
	}
	switch x := a.(type) {
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *Boolean:
		y, ok := b.(*Boolean)
		return ok && x.Value == y.Value
	case *Integer:
		switch y := b.(type) {
		case *Integer:
			return x.Value == y.Value
		case *Float:
			return FloatEqual(float64(x.Value), y.Value)
		}
		return false
	case *Float:
		if y, ok := ToFloat(b); ok {
			return FloatEqual(x.Value, y)
		}
		return false
	case *String:
		y, ok := b.(*String)
		return ok && x.Value == y.Value
	case *Native:
		y, ok := b.(*Native)
		return ok && (x == y || x.Name == y.Name)
	}
	return a == b
}

// Len returns the length of a string, an array or a map.
func Len(obj Object) (int, bool) {
	switch o := obj.(type) {
	case *String:
		return len(o.Value), true
	case *Array:
		return len(o.Elements), true
	case *Map:
		return o.Len(), true
	}
	return 0, false
}
