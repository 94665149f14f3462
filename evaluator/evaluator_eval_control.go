package evaluator

import (
	"context"

	"github.com/podhmo/swiftflow/ast"
	"github.com/podhmo/swiftflow/object"
	"github.com/podhmo/swiftflow/token"
)

func (e *Evaluator) evalIfStmt(ctx context.Context, n *ast.IfStmt, env *object.Environment) object.Outcome {
	cond, err := e.evalExpr(ctx, n.Cond, env)
	if err != nil {
		return object.Fail(err)
	}
	if object.IsTruthy(cond) {
		return e.evalStmt(ctx, n.Then, env)
	}
	if n.Else != nil {
		return e.evalStmt(ctx, n.Else, env)
	}
	return object.Normal(object.NIL)
}

func (e *Evaluator) evalWhileStmt(ctx context.Context, n *ast.WhileStmt, env *object.Environment) object.Outcome {
	iterations := 0
	for {
		cond, err := e.evalExpr(ctx, n.Cond, env)
		if err != nil {
			return object.Fail(err)
		}
		if !object.IsTruthy(cond) {
			return object.Normal(object.NIL)
		}
		if err := e.checkLoop(ctx, n.Pos(), &iterations); err != nil {
			return object.Fail(err)
		}

		out := e.evalLoopBody(ctx, n.Body, env)
		switch out.Signal {
		case object.SignalBreak:
			return object.Normal(object.NIL)
		case object.SignalNone, object.SignalContinue:
		default:
			return out
		}
	}
}

func (e *Evaluator) evalForStmt(ctx context.Context, n *ast.ForStmt, env *object.Environment) object.Outcome {
	loopEnv := object.NewEnclosedEnvironment(env)
	if n.Init != nil {
		if out := e.evalStmt(ctx, n.Init, loopEnv); !out.IsNormal() {
			return out
		}
	}

	iterations := 0
	for {
		if n.Cond != nil {
			cond, err := e.evalExpr(ctx, n.Cond, loopEnv)
			if err != nil {
				return object.Fail(err)
			}
			if !object.IsTruthy(cond) {
				return object.Normal(object.NIL)
			}
		}
		if err := e.checkLoop(ctx, n.Pos(), &iterations); err != nil {
			return object.Fail(err)
		}

		out := e.evalLoopBody(ctx, n.Body, loopEnv)
		switch out.Signal {
		case object.SignalBreak:
			return object.Normal(object.NIL)
		case object.SignalNone, object.SignalContinue:
		default:
			return out
		}

		if n.Post != nil {
			if _, err := e.evalExpr(ctx, n.Post, loopEnv); err != nil {
				return object.Fail(err)
			}
		}
	}
}

func (e *Evaluator) evalLoopBody(ctx context.Context, body ast.Stmt, env *object.Environment) object.Outcome {
	e.loopDepth++
	defer func() { e.loopDepth-- }()
	return e.evalStmt(ctx, body, env)
}

// checkLoop counts one iteration and reports cancellation or a runaway loop.
func (e *Evaluator) checkLoop(ctx context.Context, pos token.Pos, iterations *int) *object.Error {
	if err := ctx.Err(); err != nil {
		return e.newError(ctx, pos, "execution canceled: %v", err)
	}
	*iterations++
	if e.maxLoopIterations > 0 && *iterations > e.maxLoopIterations {
		return e.newError(ctx, pos, "loop iteration limit exceeded (%d)", e.maxLoopIterations)
	}
	return nil
}
