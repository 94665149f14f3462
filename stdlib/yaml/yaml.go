// Package stdyaml provides yaml_parse and yaml_stringify. Mapping order is
// kept in both directions.
package stdyaml

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/podhmo/swiftflow/object"
	"github.com/podhmo/swiftflow/stdlib/args"
)

// Install registers the YAML natives.
func Install(r *object.Registry) {
	r.Register("yaml_parse", builtinParse)
	r.Register("yaml_stringify", builtinStringify)
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
	if err := args.Count(a, 1, 1); err != nil {
		return nil, err
	}
	s, err := Stringify(a[0])
	if err != nil {
		return nil, err
	}
	return &object.String{Value: s}, nil
}

// Parse decodes the first YAML document in data. An empty document is nil.
func Parse(data []byte) (object.Object, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if doc.Kind == 0 {
		return object.NIL, nil
	}
	return fromNode(&doc)
}

func fromNode(n *yaml.Node) (object.Object, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return object.NIL, nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.SequenceNode:
		arr := &object.Array{Elements: make([]object.Object, len(n.Content))}
		for i, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			arr.Elements[i] = v
		}
		return arr, nil
	case yaml.MappingNode:
		m := object.NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			val, err := fromNode(v)
			if err != nil {
				return nil, err
			}
			m.Set(k.Value, val)
		}
		return m, nil
	case yaml.ScalarNode:
		return fromScalar(n)
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func fromScalar(n *yaml.Node) (object.Object, error) {
	switch n.ShortTag() {
	case "!!null":
		return object.NIL, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return object.NativeBool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, err
		}
		return &object.Integer{Value: i}, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return &object.Float{Value: f}, nil
	}
	return &object.String{Value: n.Value}, nil
}

// Stringify encodes obj as a YAML document.
func Stringify(obj object.Object) (string, error) {
	n, err := toNode(obj, map[object.Object]bool{})
	if err != nil {
		return "", err
	}
	out, err := yaml.Marshal(n)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func toNode(obj object.Object, seen map[object.Object]bool) (*yaml.Node, error) {
	scalar := func(tag, value string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	}
	switch o := obj.(type) {
	case *object.Nil:
		return scalar("!!null", "null"), nil
	case *object.Boolean:
		return scalar("!!bool", strconv.FormatBool(o.Value)), nil
	case *object.Integer:
		return scalar("!!int", strconv.FormatInt(o.Value, 10)), nil
	case *object.Float:
		switch {
		case math.IsNaN(o.Value):
			return scalar("!!float", ".nan"), nil
		case math.IsInf(o.Value, 1):
			return scalar("!!float", ".inf"), nil
		case math.IsInf(o.Value, -1):
			return scalar("!!float", "-.inf"), nil
		}
		return scalar("!!float", strconv.FormatFloat(o.Value, 'g', -1, 64)), nil
	case *object.String:
		return scalar("!!str", o.Value), nil
	case *object.Array:
		if seen[o] {
			return nil, fmt.Errorf("cyclic array")
		}
		seen[o] = true
		defer delete(seen, o)
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range o.Elements {
			c, err := toNode(e, seen)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	case *object.Map:
		if seen[o] {
			return nil, fmt.Errorf("cyclic object")
		}
		seen[o] = true
		defer delete(seen, o)
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range o.Keys() {
			v, _ := o.Get(k)
			c, err := toNode(v, seen)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, scalar("!!str", k), c)
		}
		return n, nil
	}
	return nil, fmt.Errorf("cannot convert %s to YAML", obj.Type())
}
