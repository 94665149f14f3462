package evaluator

import (
	"context"
	"math"
	"strings"

	"github.com/podhmo/swiftflow/ast"
	"github.com/podhmo/swiftflow/object"
	"github.com/podhmo/swiftflow/token"
)

func (e *Evaluator) evalBinaryExpr(ctx context.Context, n *ast.BinaryExpr, env *object.Environment) (object.Object, *object.Error) {
	left, err := e.evalExpr(ctx, n.X, env)
	if err != nil {
		return nil, err
	}

	// && and || short-circuit and always yield a boolean.
	switch n.Op {
	case token.AND:
		if !object.IsTruthy(left) {
			return object.FALSE, nil
		}
		right, err := e.evalExpr(ctx, n.Y, env)
		if err != nil {
			return nil, err
		}
		return object.NativeBool(object.IsTruthy(right)), nil
	case token.OR:
		if object.IsTruthy(left) {
			return object.TRUE, nil
		}
		right, err := e.evalExpr(ctx, n.Y, env)
		if err != nil {
			return nil, err
		}
		return object.NativeBool(object.IsTruthy(right)), nil
	}

	right, err := e.evalExpr(ctx, n.Y, env)
	if err != nil {
		return nil, err
	}
	return e.binaryOp(ctx, n.OpPos, n.Op, left, right)
}

// binaryOp applies a non short-circuit binary operator. It is shared with
// compound assignment and increment.
func (e *Evaluator) binaryOp(ctx context.Context, pos token.Pos, op token.Kind, left, right object.Object) (object.Object, *object.Error) {
	switch op {
	case token.EQ:
		return object.NativeBool(object.Equals(left, right)), nil
	case token.NEQ:
		return object.NativeBool(!object.Equals(left, right)), nil
	case token.IN:
		return e.evalIn(ctx, pos, left, right)
	}

	if op == token.PLUS {
		_, ls := left.(*object.String)
		_, rs := right.(*object.String)
		if ls || rs {
			return &object.String{Value: left.Inspect() + right.Inspect()}, nil
		}
	}

	switch l := left.(type) {
	case *object.Integer:
		switch r := right.(type) {
		case *object.Integer:
			return e.integerOp(ctx, pos, op, l.Value, r.Value)
		case *object.Float:
			return e.floatOp(ctx, pos, op, float64(l.Value), r.Value, left, right)
		}
	case *object.Float:
		if r, ok := object.ToFloat(right); ok {
			return e.floatOp(ctx, pos, op, l.Value, r, left, right)
		}
	case *object.String:
		if r, ok := right.(*object.String); ok {
			if res, ok := compare(op, strings.Compare(l.Value, r.Value)); ok {
				return res, nil
			}
		}
	}
	return nil, e.unsupported(ctx, pos, op, left, right)
}

func (e *Evaluator) unsupported(ctx context.Context, pos token.Pos, op token.Kind, left, right object.Object) *object.Error {
	return e.newError(ctx, pos, "unsupported operand types for %s: %s and %s", op, typeName(left), typeName(right))
}

func (e *Evaluator) integerOp(ctx context.Context, pos token.Pos, op token.Kind, a, b int64) (object.Object, *object.Error) {
	switch op {
	case token.PLUS:
		return &object.Integer{Value: a + b}, nil
	case token.MINUS:
		return &object.Integer{Value: a - b}, nil
	case token.STAR:
		return &object.Integer{Value: a * b}, nil
	case token.SLASH:
		if b == 0 {
			return nil, e.newError(ctx, pos, "division by zero")
		}
		return &object.Integer{Value: a / b}, nil
	case token.PERCENT:
		if b == 0 {
			return nil, e.newError(ctx, pos, "modulo by zero")
		}
		return &object.Integer{Value: a % b}, nil
	case token.CARET:
		if b < 0 {
			return &object.Float{Value: math.Pow(float64(a), float64(b))}, nil
		}
		return &object.Integer{Value: ipow(a, b)}, nil
	}
	if res, ok := compare(op, cmpInt(a, b)); ok {
		return res, nil
	}
	return nil, e.newError(ctx, pos, "unsupported operator %s for int", op)
}

func (e *Evaluator) floatOp(ctx context.Context, pos token.Pos, op token.Kind, a, b float64, left, right object.Object) (object.Object, *object.Error) {
	switch op {
	case token.PLUS:
		return &object.Float{Value: a + b}, nil
	case token.MINUS:
		return &object.Float{Value: a - b}, nil
	case token.STAR:
		return &object.Float{Value: a * b}, nil
	case token.SLASH:
		if math.Abs(b) < object.FloatTolerance {
			return nil, e.newError(ctx, pos, "division by zero")
		}
		return &object.Float{Value: a / b}, nil
	case token.CARET:
		return &object.Float{Value: math.Pow(a, b)}, nil
	}
	if res, ok := compare(op, cmpFloat(a, b)); ok {
		return res, nil
	}
	return nil, e.unsupported(ctx, pos, op, left, right)
}

// compare maps a three-way comparison result to the boolean of a relational
// operator. ok is false for other operators.
func compare(op token.Kind, c int) (object.Object, bool) {
	switch op {
	case token.LT:
		return object.NativeBool(c < 0), true
	case token.LEQ:
		return object.NativeBool(c <= 0), true
	case token.GT:
		return object.NativeBool(c > 0), true
	case token.GEQ:
		return object.NativeBool(c >= 0), true
	}
	return nil, false
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// cmpFloat treats values within the float tolerance as equal, so the
// relational operators agree with ==.
func cmpFloat(a, b float64) int {
	switch {
	case object.FloatEqual(a, b):
		return 0
	case a < b:
		return -1
	}
	return 1
}

func ipow(base, exp int64) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func (e *Evaluator) evalIn(ctx context.Context, pos token.Pos, elem, container object.Object) (object.Object, *object.Error) {
	switch c := container.(type) {
	case *object.Array:
		for _, el := range c.Elements {
			if object.Equals(elem, el) {
				return object.TRUE, nil
			}
		}
		return object.FALSE, nil
	case *object.Map:
		key, ok := elem.(*object.String)
		if !ok {
			return nil, e.newError(ctx, pos, "object keys are strings, got %s", typeName(elem))
		}
		_, found := c.Get(key.Value)
		return object.NativeBool(found), nil
	case *object.String:
		sub, ok := elem.(*object.String)
		if !ok {
			return nil, e.newError(ctx, pos, "'in <string>' requires a string operand, got %s", typeName(elem))
		}
		return object.NativeBool(strings.Contains(c.Value, sub.Value)), nil
	}
	return nil, e.unsupported(ctx, pos, token.IN, elem, container)
}

func (e *Evaluator) evalUnaryExpr(ctx context.Context, n *ast.UnaryExpr, env *object.Environment) (object.Object, *object.Error) {
	operand, err := e.evalExpr(ctx, n.X, env)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case token.NOT:
		return object.NativeBool(!object.IsTruthy(operand)), nil
	case token.MINUS:
		switch o := operand.(type) {
		case *object.Integer:
			return &object.Integer{Value: -o.Value}, nil
		case *object.Float:
			return &object.Float{Value: -o.Value}, nil
		}
	case token.TILDE:
		if o, ok := operand.(*object.Integer); ok {
			return &object.Integer{Value: ^o.Value}, nil
		}
	}
	return nil, e.newError(ctx, n.OpPos, "unsupported operand type for unary %s: %s", n.Op, typeName(operand))
}
