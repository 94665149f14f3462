// Package object defines the runtime values of SwiftFlow together with the
// environment, the native registry and the evaluation outcome.
package object

import (
	"math"
	"strconv"
	"strings"

	"github.com/podhmo/swiftflow/ast"
)

// ObjectType is the name of a value's variant, as reported by typeof.
type ObjectType string

const (
	NIL_OBJ      ObjectType = "nil"
	BOOLEAN_OBJ  ObjectType = "bool"
	INTEGER_OBJ  ObjectType = "int"
	FLOAT_OBJ    ObjectType = "float"
	STRING_OBJ   ObjectType = "string"
	ARRAY_OBJ    ObjectType = "array"
	MAP_OBJ      ObjectType = "object"
	FUNCTION_OBJ ObjectType = "function"
	NATIVE_OBJ   ObjectType = "native"
)

// Object is the interface that all value types in the interpreter implement.
type Object interface {
	// Type returns the type of the object.
	Type() ObjectType
	// Inspect returns the text print writes for the object.
	Inspect() string
}

var (
	NIL   = &Nil{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

// NativeBool returns the shared TRUE or FALSE object.
func NativeBool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

// --- Nil Object ---

type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }

// --- Boolean Object ---

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

// --- Integer Object ---

// Integer is a 64-bit signed integer.
type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

// --- Float Object ---

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return FormatFloat(f.Value) }

// FormatFloat formats f in the shortest %g form, spelling the special
// values nan, inf and -inf.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// --- String Object ---

// String is an immutable string.
type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }

// Inspect returns the string itself, unquoted.
func (s *String) Inspect() string { return s.Value }

// --- Array Object ---

// Array is a growable sequence. Arrays are shared by reference.
type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	var sb strings.Builder
	inspect(&sb, a, map[Object]bool{})
	return sb.String()
}

// --- Function Object ---

// Function is a closure: a function body together with the environment it
// was declared in.
type Function struct {
	Name     string // empty for function literals
	Params   []*ast.Param
	Body     *ast.BlockStmt
	Env      *Environment
	Filename string // file the function was declared in
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	if f.Name == "" {
		return "<func>"
	}
	return "<func " + f.Name + ">"
}

// --- Native Object ---

// Native is a host function registered under Name.
type Native struct {
	Name string
	Fn   NativeFunction
}

func (n *Native) Type() ObjectType { return NATIVE_OBJ }
func (n *Native) Inspect() string  { return "<native " + n.Name + ">" }

// Repr is like Inspect but quotes strings. It is used for elements of
// arrays and objects.
func Repr(obj Object) string {
	var sb strings.Builder
	inspect(&sb, obj, map[Object]bool{})
	return sb.String()
}

// inspect writes obj; seen guards against arrays and maps that contain themselves.
func inspect(sb *strings.Builder, obj Object, seen map[Object]bool) {
	switch o := obj.(type) {
	case *String:
		sb.WriteString(strconv.Quote(o.Value))
	case *Array:
		if seen[o] {
			sb.WriteString("[...]")
			return
		}
		seen[o] = true
		defer delete(seen, o)
		sb.WriteByte('[')
		for i, e := range o.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}
			inspect(sb, e, seen)
		}
		sb.WriteByte(']')
	case *Map:
		if seen[o] {
			sb.WriteString("{...}")
			return
		}
		seen[o] = true
		defer delete(seen, o)
		sb.WriteByte('{')
		for i, k := range o.Keys() {
			if i > 0 {
				sb.WriteString(", ")
			}
			v, _ := o.Get(k)
			sb.WriteString(k)
			sb.WriteString(": ")
			inspect(sb, v, seen)
		}
		sb.WriteByte('}')
	case nil:
		sb.WriteString("nil")
	default:
		sb.WriteString(obj.Inspect())
	}
}
