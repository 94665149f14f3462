package evaluator

import (
	"context"

	"github.com/podhmo/swiftflow/ast"
	"github.com/podhmo/swiftflow/object"
	"github.com/podhmo/swiftflow/token"
)

// reference is an assignable location: a variable, an array element or an
// object field.
type reference struct {
	get func() (object.Object, *object.Error)
	set func(object.Object) *object.Error
}

func (e *Evaluator) evalAssignExpr(ctx context.Context, n *ast.AssignExpr, env *object.Environment) (object.Object, *object.Error) {
	ref, err := e.resolveReference(ctx, n.Target, env)
	if err != nil {
		return nil, err
	}
	val, err := e.evalExpr(ctx, n.Value, env)
	if err != nil {
		return nil, err
	}

	if op := n.Op.BinaryOp(); op != token.ILLEGAL {
		old, err := ref.get()
		if err != nil {
			return nil, err
		}
		val, err = e.binaryOp(ctx, n.OpPos, op, old, val)
		if err != nil {
			return nil, err
		}
	}

	if err := ref.set(val); err != nil {
		return nil, err
	}
	return val, nil
}

func (e *Evaluator) evalIncDecExpr(ctx context.Context, n *ast.IncDecExpr, env *object.Environment) (object.Object, *object.Error) {
	ref, err := e.resolveReference(ctx, n.X, env)
	if err != nil {
		return nil, err
	}
	old, err := ref.get()
	if err != nil {
		return nil, err
	}

	op := token.PLUS
	if n.Op == token.DEC {
		op = token.MINUS
	}
	val, err := e.binaryOp(ctx, n.OpPos, op, old, &object.Integer{Value: 1})
	if err != nil {
		return nil, err
	}
	if err := ref.set(val); err != nil {
		return nil, err
	}
	if n.Prefix {
		return val, nil
	}
	return old, nil
}

// resolveReference evaluates the operands of an assignment target once and
// returns accessors for the location it denotes.
func (e *Evaluator) resolveReference(ctx context.Context, target ast.Expr, env *object.Environment) (*reference, *object.Error) {
	switch t := target.(type) {
	case *ast.Ident:
		name := t.Name
		return &reference{
			get: func() (object.Object, *object.Error) {
				return e.evalIdent(ctx, t, env)
			},
			set: func(val object.Object) *object.Error {
				// the nearest existing binding, else a new one in the current frame
				if !env.Assign(name, val) {
					env.Define(name, val)
				}
				return nil
			},
		}, nil

	case *ast.IndexExpr:
		container, err := e.evalExpr(ctx, t.X, env)
		if err != nil {
			return nil, err
		}
		index, err := e.evalExpr(ctx, t.Index, env)
		if err != nil {
			return nil, err
		}
		switch c := container.(type) {
		case *object.Array:
			i, ok := index.(*object.Integer)
			if !ok {
				return nil, e.newError(ctx, t.Lbrack, "array index must be an int, got %s", typeName(index))
			}
			return &reference{
				get: func() (object.Object, *object.Error) {
					return e.indexArray(ctx, t.Lbrack, c, i.Value)
				},
				set: func(val object.Object) *object.Error {
					if i.Value < 0 || i.Value >= int64(len(c.Elements)) {
						return e.newError(ctx, t.Lbrack, "index out of range [%d] with length %d", i.Value, len(c.Elements))
					}
					c.Elements[i.Value] = val
					return nil
				},
			}, nil
		case *object.Map:
			key, ok := index.(*object.String)
			if !ok {
				return nil, e.newError(ctx, t.Lbrack, "object keys are strings, got %s", typeName(index))
			}
			return e.fieldReference(ctx, t.Lbrack, c, key.Value), nil
		}
		return nil, e.newError(ctx, t.Lbrack, "cannot assign to an element of %s", describe(container))

	case *ast.MemberExpr:
		container, err := e.evalExpr(ctx, t.X, env)
		if err != nil {
			return nil, err
		}
		m, ok := container.(*object.Map)
		if !ok {
			return nil, e.newError(ctx, t.Name.Pos(), "cannot assign to field %s of %s", t.Name.Name, describe(container))
		}
		return e.fieldReference(ctx, t.Name.Pos(), m, t.Name.Name), nil
	}
	return nil, e.newError(ctx, target.Pos(), "cannot assign to %s", target)
}

func (e *Evaluator) fieldReference(ctx context.Context, pos token.Pos, m *object.Map, key string) *reference {
	return &reference{
		get: func() (object.Object, *object.Error) {
			return e.lookupField(ctx, pos, m, key)
		},
		set: func(val object.Object) *object.Error {
			m.Set(key, val)
			return nil
		},
	}
}
