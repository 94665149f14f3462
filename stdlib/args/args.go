// Package args has the argument checks shared by native functions.
package args

import (
	"fmt"

	"github.com/podhmo/swiftflow/object"
)

// Count checks that len(args) is within [min, max]. A negative max means no
// upper bound.
func Count(args []object.Object, min, max int) error {
	n := len(args)
	switch {
	case min == max && n != min:
		return fmt.Errorf("wrong number of arguments, got=%d, want=%d", n, min)
	case n < min:
		return fmt.Errorf("wrong number of arguments, got=%d, want at least %d", n, min)
	case max >= 0 && n > max:
		return fmt.Errorf("wrong number of arguments, got=%d, want at most %d", n, max)
	}
	return nil
}

// String returns args[i] as a Go string.
func String(args []object.Object, i int) (string, error) {
	s, ok := args[i].(*object.String)
	if !ok {
		return "", typeError(args, i, object.STRING_OBJ)
	}
	return s.Value, nil
}

// Int returns args[i] as an int64.
func Int(args []object.Object, i int) (int64, error) {
	v, ok := args[i].(*object.Integer)
	if !ok {
		return 0, typeError(args, i, object.INTEGER_OBJ)
	}
	return v.Value, nil
}

// Number returns args[i], an int or a float, as a float64.
func Number(args []object.Object, i int) (float64, error) {
	f, ok := object.ToFloat(args[i])
	if !ok {
		return 0, fmt.Errorf("argument %d must be a number, got %s", i+1, args[i].Type())
	}
	return f, nil
}

// Array returns args[i] as an array.
func Array(args []object.Object, i int) (*object.Array, error) {
	v, ok := args[i].(*object.Array)
	if !ok {
		return nil, typeError(args, i, object.ARRAY_OBJ)
	}
	return v, nil
}

// Map returns args[i] as an object.
func Map(args []object.Object, i int) (*object.Map, error) {
	v, ok := args[i].(*object.Map)
	if !ok {
		return nil, typeError(args, i, object.MAP_OBJ)
	}
	return v, nil
}

// Callable checks that args[i] is a function or a native.
func Callable(args []object.Object, i int) (object.Object, error) {
	switch args[i].(type) {
	case *object.Function, *object.Native:
		return args[i], nil
	}
	return nil, typeError(args, i, object.FUNCTION_OBJ)
}

func typeError(args []object.Object, i int, want object.ObjectType) error {
	return fmt.Errorf("argument %d must be %s, got %s", i+1, want, args[i].Type())
}
