// Package stdjson provides json_parse and json_stringify. Objects keep their
// key order in both directions.
package stdjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iancoleman/orderedmap"

	"github.com/podhmo/swiftflow/object"
	"github.com/podhmo/swiftflow/stdlib/args"
)

// Install registers the JSON natives.
func Install(r *object.Registry) {
	r.Register("json_parse", builtinParse)
	r.Register("json_stringify", builtinStringify)
}

func builtinParse(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 1); err != nil {
		return nil, err
	}
	text, err := args.String(a, 0)
	if err != nil {
		return nil, err
	}
	return Parse([]byte(text))
}

func builtinStringify(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 2); err != nil {
		return nil, err
	}
	indent := ""
	if len(a) == 2 {
		switch v := a[1].(type) {
		case *object.Integer:
			indent = strings.Repeat(" ", int(v.Value))
		case *object.String:
			indent = v.Value
		default:
			return nil, fmt.Errorf("indent must be an int or a string, got %s", a[1].Type())
		}
	}
	s, err := Stringify(a[0], indent)
	if err != nil {
		return nil, err
	}
	return &object.String{Value: s}, nil
}

// Parse decodes JSON text into an Object. Integral numbers become ints.
func Parse(data []byte) (object.Object, error) {
	if !json.Valid(data) {
		// let the decoder produce the message
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return nil, fmt.Errorf("invalid JSON")
	}

	// orderedmap only decodes objects, so the value is wrapped in one
	wrapped := make([]byte, 0, len(data)+6)
	wrapped = append(wrapped, `{"v":`...)
	wrapped = append(wrapped, data...)
	wrapped = append(wrapped, '}')

	om := orderedmap.New()
	if err := json.Unmarshal(wrapped, om); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	v, _ := om.Get("v")
	return object.FromGo(v)
}

// Stringify encodes obj as JSON. A non-empty indent pretty-prints.
func Stringify(obj object.Object, indent string) (string, error) {
	v, err := object.ToGo(obj)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
