// Package core provides the general purpose natives: conversions,
// collection helpers, string helpers, math and higher order functions.
package core

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/podhmo/swiftflow/object"
	"github.com/podhmo/swiftflow/stdlib/args"
)

// Install registers the core natives.
func Install(r *object.Registry) {
	r.Register("len", builtinLen)
	r.Register("length", builtinLen)
	r.Register("typeof", builtinTypeof)
	r.Register("str", builtinStr)
	r.Register("int", builtinInt)
	r.Register("float", builtinFloat)
	r.Register("bool", builtinBool)

	r.Register("append", builtinAppend)
	r.Register("push", builtinPush)
	r.Register("pop", builtinPop)
	r.Register("keys", builtinKeys)
	r.Register("values", builtinValues)
	r.Register("has", builtinHas)
	r.Register("range", builtinRange)

	r.Register("upper", stringFunc(strings.ToUpper))
	r.Register("lower", stringFunc(strings.ToLower))
	r.Register("trim", stringFunc(strings.TrimSpace))
	r.Register("split", builtinSplit)
	r.Register("join", builtinJoin)
	r.Register("contains", builtinContains)

	r.Register("abs", builtinAbs)
	r.Register("sqrt", floatFunc(math.Sqrt))
	r.Register("floor", roundFunc(math.Floor))
	r.Register("ceil", roundFunc(math.Ceil))
	r.Register("round", roundFunc(math.Round))
	r.Register("pow", builtinPow)
	r.Register("min", minMax(-1))
	r.Register("max", minMax(1))

	r.Register("time", builtinTime)
	r.Register("assert", builtinAssert)
	r.Register("input", builtinInput)

	r.Register("map", builtinMap)
	r.Register("filter", builtinFilter)
	r.Register("reduce", builtinReduce)
}

func builtinLen(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 1); err != nil {
		return nil, err
	}
	n, ok := object.Len(a[0])
	if !ok {
		return nil, fmt.Errorf("argument of type %s has no length", a[0].Type())
	}
	return &object.Integer{Value: int64(n)}, nil
}

func builtinTypeof(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 1); err != nil {
		return nil, err
	}
	return &object.String{Value: string(a[0].Type())}, nil
}

func builtinStr(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 1); err != nil {
		return nil, err
	}
	if s, ok := a[0].(*object.String); ok {
		return s, nil
	}
	return &object.String{Value: a[0].Inspect()}, nil
}

func builtinInt(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 1); err != nil {
		return nil, err
	}
	switch v := a[0].(type) {
	case *object.Integer:
		return v, nil
	case *object.Float:
		if math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
			return nil, fmt.Errorf("cannot convert %s to int", object.FormatFloat(v.Value))
		}
		return &object.Integer{Value: int64(v.Value)}, nil
	case *object.Boolean:
		if v.Value {
			return &object.Integer{Value: 1}, nil
		}
		return &object.Integer{Value: 0}, nil
	case *object.String:
		s := strings.TrimSpace(v.Value)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &object.Integer{Value: n}, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to int", v.Value)
		}
		return &object.Integer{Value: int64(f)}, nil
	}
	return nil, fmt.Errorf("cannot convert %s to int", a[0].Type())
}

func builtinFloat(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 1); err != nil {
		return nil, err
	}
	switch v := a[0].(type) {
	case *object.Integer:
		return &object.Float{Value: float64(v.Value)}, nil
	case *object.Float:
		return v, nil
	case *object.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to float", v.Value)
		}
		return &object.Float{Value: f}, nil
	}
	return nil, fmt.Errorf("cannot convert %s to float", a[0].Type())
}

func builtinBool(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 1); err != nil {
		return nil, err
	}
	return object.NativeBool(object.IsTruthy(a[0])), nil
}

// append returns a new array; push appends in place.
func builtinAppend(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, -1); err != nil {
		return nil, err
	}
	arr, err := args.Array(a, 0)
	if err != nil {
		return nil, err
	}
	elements := make([]object.Object, 0, len(arr.Elements)+len(a)-1)
	elements = append(elements, arr.Elements...)
	elements = append(elements, a[1:]...)
	return &object.Array{Elements: elements}, nil
}

func builtinPush(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 2, -1); err != nil {
		return nil, err
	}
	arr, err := args.Array(a, 0)
	if err != nil {
		return nil, err
	}
	arr.Elements = append(arr.Elements, a[1:]...)
	return arr, nil
}

func builtinPop(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 1); err != nil {
		return nil, err
	}
	arr, err := args.Array(a, 0)
	if err != nil {
		return nil, err
	}
	if len(arr.Elements) == 0 {
		return nil, fmt.Errorf("pop from empty array")
	}
	last := arr.Elements[len(arr.Elements)-1]
	arr.Elements = arr.Elements[:len(arr.Elements)-1]
	return last, nil
}

func builtinKeys(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 1); err != nil {
		return nil, err
	}
	m, err := args.Map(a, 0)
	if err != nil {
		return nil, err
	}
	keys := m.Keys()
	out := make([]object.Object, len(keys))
	for i, k := range keys {
		out[i] = &object.String{Value: k}
	}
	return &object.Array{Elements: out}, nil
}

func builtinValues(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 1); err != nil {
		return nil, err
	}
	m, err := args.Map(a, 0)
	if err != nil {
		return nil, err
	}
	return &object.Array{Elements: m.Values()}, nil
}

func builtinHas(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 2, 2); err != nil {
		return nil, err
	}
	m, err := args.Map(a, 0)
	if err != nil {
		return nil, err
	}
	key, err := args.String(a, 1)
	if err != nil {
		return nil, err
	}
	_, ok := m.Get(key)
	return object.NativeBool(ok), nil
}

// range(stop), range(start, stop) or range(start, stop, step).
func builtinRange(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 3); err != nil {
		return nil, err
	}
	bounds := make([]int64, len(a))
	for i := range a {
		v, err := args.Int(a, i)
		if err != nil {
			return nil, err
		}
		bounds[i] = v
	}
	start, stop, step := int64(0), bounds[0], int64(1)
	if len(bounds) >= 2 {
		start, stop = bounds[0], bounds[1]
	}
	if len(bounds) == 3 {
		step = bounds[2]
	}
	if step == 0 {
		return nil, fmt.Errorf("step must not be zero")
	}

	var out []object.Object
	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		out = append(out, &object.Integer{Value: i})
	}
	return &object.Array{Elements: out}, nil
}

func stringFunc(fn func(string) string) object.NativeFunction {
	return func(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
		if err := args.Count(a, 1, 1); err != nil {
			return nil, err
		}
		s, err := args.String(a, 0)
		if err != nil {
			return nil, err
		}
		return &object.String{Value: fn(s)}, nil
	}
}

func builtinSplit(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 2); err != nil {
		return nil, err
	}
	s, err := args.String(a, 0)
	if err != nil {
		return nil, err
	}
	var parts []string
	if len(a) == 1 {
		parts = strings.Fields(s)
	} else {
		sep, err := args.String(a, 1)
		if err != nil {
			return nil, err
		}
		parts = strings.Split(s, sep)
	}
	return object.FromGo(parts)
}

func builtinJoin(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 2); err != nil {
		return nil, err
	}
	arr, err := args.Array(a, 0)
	if err != nil {
		return nil, err
	}
	sep := ""
	if len(a) == 2 {
		if sep, err = args.String(a, 1); err != nil {
			return nil, err
		}
	}
	parts := make([]string, len(arr.Elements))
	for i, e := range arr.Elements {
		parts[i] = e.Inspect()
	}
	return &object.String{Value: strings.Join(parts, sep)}, nil
}

func builtinContains(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 2, 2); err != nil {
		return nil, err
	}
	switch c := a[0].(type) {
	case *object.String:
		sub, err := args.String(a, 1)
		if err != nil {
			return nil, err
		}
		return object.NativeBool(strings.Contains(c.Value, sub)), nil
	case *object.Array:
		for _, e := range c.Elements {
			if object.Equals(e, a[1]) {
				return object.TRUE, nil
			}
		}
		return object.FALSE, nil
	case *object.Map:
		key, err := args.String(a, 1)
		if err != nil {
			return nil, err
		}
		_, ok := c.Get(key)
		return object.NativeBool(ok), nil
	}
	return nil, fmt.Errorf("argument 1 must be a string, an array or an object, got %s", a[0].Type())
}

func builtinAbs(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 1); err != nil {
		return nil, err
	}
	switch v := a[0].(type) {
	case *object.Integer:
		if v.Value < 0 {
			return &object.Integer{Value: -v.Value}, nil
		}
		return v, nil
	case *object.Float:
		return &object.Float{Value: math.Abs(v.Value)}, nil
	}
	return nil, fmt.Errorf("argument 1 must be a number, got %s", a[0].Type())
}

func floatFunc(fn func(float64) float64) object.NativeFunction {
	return func(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
		if err := args.Count(a, 1, 1); err != nil {
			return nil, err
		}
		f, err := args.Number(a, 0)
		if err != nil {
			return nil, err
		}
		return &object.Float{Value: fn(f)}, nil
	}
}

// roundFunc applies fn and returns an int.
func roundFunc(fn func(float64) float64) object.NativeFunction {
	return func(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
		if err := args.Count(a, 1, 1); err != nil {
			return nil, err
		}
		if i, ok := a[0].(*object.Integer); ok {
			return i, nil
		}
		f, err := args.Number(a, 0)
		if err != nil {
			return nil, err
		}
		return &object.Integer{Value: int64(fn(f))}, nil
	}
}

func builtinPow(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 2, 2); err != nil {
		return nil, err
	}
	base, err := args.Number(a, 0)
	if err != nil {
		return nil, err
	}
	exp, err := args.Number(a, 1)
	if err != nil {
		return nil, err
	}
	bi, bok := a[0].(*object.Integer)
	ei, eok := a[1].(*object.Integer)
	if bok && eok && ei.Value >= 0 {
		result := int64(1)
		for i := int64(0); i < ei.Value; i++ {
			result *= bi.Value
		}
		return &object.Integer{Value: result}, nil
	}
	return &object.Float{Value: math.Pow(base, exp)}, nil
}

// minMax returns min (sign -1) or max (sign 1) over its arguments, or over
// the elements of a single array argument.
func minMax(sign int) object.NativeFunction {
	return func(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
		if err := args.Count(a, 1, -1); err != nil {
			return nil, err
		}
		items := a
		if arr, ok := a[0].(*object.Array); ok && len(a) == 1 {
			items = arr.Elements
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("empty sequence")
		}
		best := items[0]
		bestF, ok := object.ToFloat(best)
		if !ok {
			return nil, fmt.Errorf("arguments must be numbers, got %s", best.Type())
		}
		for _, item := range items[1:] {
			f, ok := object.ToFloat(item)
			if !ok {
				return nil, fmt.Errorf("arguments must be numbers, got %s", item.Type())
			}
			if (sign < 0 && f < bestF) || (sign > 0 && f > bestF) {
				best, bestF = item, f
			}
		}
		return best, nil
	}
}

func builtinTime(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 0, 0); err != nil {
		return nil, err
	}
	return &object.Float{Value: float64(time.Now().UnixNano()) / 1e9}, nil
}

func builtinAssert(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 2); err != nil {
		return nil, err
	}
	if object.IsTruthy(a[0]) {
		return object.NIL, nil
	}
	if len(a) == 2 {
		return nil, fmt.Errorf("assertion failed: %s", a[1].Inspect())
	}
	return nil, fmt.Errorf("assertion failed")
}

// input writes the optional prompt and reads one line from stdin. At end of
// input it returns nil.
func builtinInput(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 0, 1); err != nil {
		return nil, err
	}
	if len(a) == 1 {
		fmt.Fprint(ctx.Stdout, a[0].Inspect())
	}

	var line bytes.Buffer
	buf := make([]byte, 1)
	for {
		n, err := ctx.Stdin.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				break
			}
			line.WriteByte(buf[0])
		}
		if err == io.EOF {
			if line.Len() == 0 {
				return object.NIL, nil
			}
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return &object.String{Value: strings.TrimSuffix(line.String(), "\r")}, nil
}

func builtinMap(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 2, 2); err != nil {
		return nil, err
	}
	arr, err := args.Array(a, 0)
	if err != nil {
		return nil, err
	}
	fn, err := args.Callable(a, 1)
	if err != nil {
		return nil, err
	}
	out := make([]object.Object, 0, len(arr.Elements))
	for _, e := range arr.Elements {
		v, err := ctx.Call(fn, e)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return &object.Array{Elements: out}, nil
}

func builtinFilter(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 2, 2); err != nil {
		return nil, err
	}
	arr, err := args.Array(a, 0)
	if err != nil {
		return nil, err
	}
	fn, err := args.Callable(a, 1)
	if err != nil {
		return nil, err
	}
	var out []object.Object
	for _, e := range arr.Elements {
		keep, err := ctx.Call(fn, e)
		if err != nil {
			return nil, err
		}
		if object.IsTruthy(keep) {
			out = append(out, e)
		}
	}
	return &object.Array{Elements: out}, nil
}

// reduce(arr, fn[, initial]) folds from the left. Without an initial value
// the first element is used.
func builtinReduce(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 2, 3); err != nil {
		return nil, err
	}
	arr, err := args.Array(a, 0)
	if err != nil {
		return nil, err
	}
	fn, err := args.Callable(a, 1)
	if err != nil {
		return nil, err
	}

	elements := arr.Elements
	var acc object.Object
	if len(a) == 3 {
		acc = a[2]
	} else {
		if len(elements) == 0 {
			return nil, fmt.Errorf("reduce of empty array with no initial value")
		}
		acc, elements = elements[0], elements[1:]
	}
	for _, e := range elements {
		acc, err = ctx.Call(fn, acc, e)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}
