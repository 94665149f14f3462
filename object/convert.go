package object

import (
	"fmt"
	"math"
	"sort"

	"github.com/iancoleman/orderedmap"
)

// FromGo converts a host value into an Object. It accepts the shapes
// produced by encoding/json and orderedmap decoding, plus the common Go
// scalar types. Integral float64 values become Integers.
func FromGo(v any) (Object, error) {
	switch x := v.(type) {
	case nil:
		return NIL, nil
	case Object:
		return x, nil
	case bool:
		return NativeBool(x), nil
	case int:
		return &Integer{Value: int64(x)}, nil
	case int32:
		return &Integer{Value: int64(x)}, nil
	case int64:
		return &Integer{Value: x}, nil
	case float32:
		return fromFloat(float64(x)), nil
	case float64:
		return fromFloat(x), nil
	case string:
		return &String{Value: x}, nil
	case []string:
		arr := &Array{Elements: make([]Object, len(x))}
		for i, s := range x {
			arr.Elements[i] = &String{Value: s}
		}
		return arr, nil
	case []any:
		arr := &Array{Elements: make([]Object, len(x))}
		for i, e := range x {
			obj, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			arr.Elements[i] = obj
		}
		return arr, nil
	case orderedmap.OrderedMap:
		return fromOrderedMap(&x)
	case *orderedmap.OrderedMap:
		return fromOrderedMap(x)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			obj, err := FromGo(x[k])
			if err != nil {
				return nil, err
			}
			m.Set(k, obj)
		}
		return m, nil
	}
	return nil, fmt.Errorf("cannot convert %T to a value", v)
}

func fromFloat(f float64) Object {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<63 {
		return &Integer{Value: int64(f)}
	}
	return &Float{Value: f}
}

func fromOrderedMap(om *orderedmap.OrderedMap) (Object, error) {
	m := NewMap()
	for _, k := range om.Keys() {
		v, _ := om.Get(k)
		obj, err := FromGo(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		m.Set(k, obj)
	}
	return m, nil
}

// ToGo converts obj into plain Go values: maps become
// *orderedmap.OrderedMap so that marshaling keeps key order. Functions,
// natives and cyclic structures cannot be converted.
func ToGo(obj Object) (any, error) {
	return toGo(obj, map[Object]bool{})
}

func toGo(obj Object, seen map[Object]bool) (any, error) {
	switch o := obj.(type) {
	case nil, *Nil:
		return nil, nil
	case *Boolean:
		return o.Value, nil
	case *Integer:
		return o.Value, nil
	case *Float:
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			return nil, fmt.Errorf("unsupported float value %s", FormatFloat(o.Value))
		}
		return o.Value, nil
	case *String:
		return o.Value, nil
	case *Array:
		if seen[o] {
			return nil, fmt.Errorf("cyclic array")
		}
		seen[o] = true
		defer delete(seen, o)
		out := make([]any, len(o.Elements))
		for i, e := range o.Elements {
			v, err := toGo(e, seen)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case *Map:
		if seen[o] {
			return nil, fmt.Errorf("cyclic object")
		}
		seen[o] = true
		defer delete(seen, o)
		om := orderedmap.New()
		om.SetEscapeHTML(false)
		for _, k := range o.Keys() {
			v, _ := o.Get(k)
			gv, err := toGo(v, seen)
			if err != nil {
				return nil, err
			}
			om.Set(k, gv)
		}
		return om, nil
	}
	return nil, fmt.Errorf("cannot convert %s to a host value", obj.Type())
}
