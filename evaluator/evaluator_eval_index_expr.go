package evaluator

import (
	"context"

	"github.com/podhmo/swiftflow/ast"
	"github.com/podhmo/swiftflow/object"
	"github.com/podhmo/swiftflow/token"
)

func (e *Evaluator) evalIndexExpr(ctx context.Context, n *ast.IndexExpr, env *object.Environment) (object.Object, *object.Error) {
	container, err := e.evalExpr(ctx, n.X, env)
	if err != nil {
		return nil, err
	}
	index, err := e.evalExpr(ctx, n.Index, env)
	if err != nil {
		return nil, err
	}

	switch c := container.(type) {
	case *object.Array:
		i, ok := index.(*object.Integer)
		if !ok {
			return nil, e.newError(ctx, n.Lbrack, "array index must be an int, got %s", typeName(index))
		}
		return e.indexArray(ctx, n.Lbrack, c, i.Value)
	case *object.String:
		i, ok := index.(*object.Integer)
		if !ok {
			return nil, e.newError(ctx, n.Lbrack, "string index must be an int, got %s", typeName(index))
		}
		if i.Value < 0 || i.Value >= int64(len(c.Value)) {
			return nil, e.newError(ctx, n.Lbrack, "index out of range [%d] with length %d", i.Value, len(c.Value))
		}
		return &object.String{Value: c.Value[i.Value : i.Value+1]}, nil
	case *object.Map:
		key, ok := index.(*object.String)
		if !ok {
			return nil, e.newError(ctx, n.Lbrack, "object keys are strings, got %s", typeName(index))
		}
		return e.lookupField(ctx, n.Lbrack, c, key.Value)
	}
	return nil, e.newError(ctx, n.Lbrack, "cannot index %s", describe(container))
}

func (e *Evaluator) indexArray(ctx context.Context, pos token.Pos, arr *object.Array, i int64) (object.Object, *object.Error) {
	if i < 0 || i >= int64(len(arr.Elements)) {
		return nil, e.newError(ctx, pos, "index out of range [%d] with length %d", i, len(arr.Elements))
	}
	return arr.Elements[i], nil
}

func (e *Evaluator) lookupField(ctx context.Context, pos token.Pos, m *object.Map, key string) (object.Object, *object.Error) {
	val, ok := m.Get(key)
	if !ok {
		return nil, e.newError(ctx, pos, "key not found: %q", key)
	}
	return val, nil
}

func (e *Evaluator) evalMemberExpr(ctx context.Context, n *ast.MemberExpr, env *object.Environment) (object.Object, *object.Error) {
	container, err := e.evalExpr(ctx, n.X, env)
	if err != nil {
		return nil, err
	}
	name := n.Name.Name

	switch c := container.(type) {
	case *object.Map:
		return e.lookupField(ctx, n.Name.Pos(), c, name)
	case *object.Array:
		if name == "length" {
			return &object.Integer{Value: int64(len(c.Elements))}, nil
		}
	case *object.String:
		if name == "length" {
			return &object.Integer{Value: int64(len(c.Value))}, nil
		}
	}
	return nil, e.newError(ctx, n.Name.Pos(), "%s has no field %s", describe(container), name)
}

func (e *Evaluator) evalArrayLit(ctx context.Context, n *ast.ArrayLit, env *object.Environment) (object.Object, *object.Error) {
	elements, err := e.evalExprs(ctx, n.Elements, env)
	if err != nil {
		return nil, err
	}
	return &object.Array{Elements: elements}, nil
}

func (e *Evaluator) evalObjectLit(ctx context.Context, n *ast.ObjectLit, env *object.Environment) (object.Object, *object.Error) {
	m := object.NewMap()
	for _, kv := range n.Entries {
		val, err := e.evalExpr(ctx, kv.Value, env)
		if err != nil {
			return nil, err
		}
		m.Set(kv.Key, val)
	}
	return m, nil
}

// evalExprs evaluates exprs left to right.
func (e *Evaluator) evalExprs(ctx context.Context, exprs []ast.Expr, env *object.Environment) ([]object.Object, *object.Error) {
	result := make([]object.Object, 0, len(exprs))
	for _, expr := range exprs {
		val, err := e.evalExpr(ctx, expr, env)
		if err != nil {
			return nil, err
		}
		result = append(result, val)
	}
	return result, nil
}
