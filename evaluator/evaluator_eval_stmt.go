package evaluator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/podhmo/swiftflow/ast"
	"github.com/podhmo/swiftflow/object"
)

func (e *Evaluator) evalProgram(ctx context.Context, prog *ast.Program, env *object.Environment) object.Outcome {
	var result object.Object = object.NIL
	for _, stmt := range prog.Stmts {
		out := e.evalStmt(ctx, stmt, env)
		switch out.Signal {
		case object.SignalNone:
			result = out.Value
		case object.SignalReturn:
			// a top-level return ends the program
			return object.Normal(out.Value)
		default:
			return out
		}
	}
	return object.Normal(result)
}

func (e *Evaluator) evalStmt(ctx context.Context, stmt ast.Stmt, env *object.Environment) object.Outcome {
	switch n := stmt.(type) {
	case *ast.ExprStmt:
		return e.normal(e.evalExpr(ctx, n.X, env))
	case *ast.PrintStmt:
		val, err := e.evalExpr(ctx, n.Value, env)
		if err != nil {
			return object.Fail(err)
		}
		fmt.Fprintln(e.stdout, val.Inspect())
		return object.Normal(object.NIL)
	case *ast.VarDecl:
		var val object.Object = object.NIL
		if n.Value != nil {
			v, err := e.evalExpr(ctx, n.Value, env)
			if err != nil {
				return object.Fail(err)
			}
			val = v
		}
		env.Define(n.Name.Name, val)
		return object.Normal(object.NIL)
	case *ast.FuncDecl:
		fn := &object.Function{
			Name:     n.Name.Name,
			Params:   n.Params,
			Body:     n.Body,
			Env:      env,
			Filename: e.filename,
		}
		env.Define(n.Name.Name, fn)
		return object.Normal(object.NIL)
	case *ast.BlockStmt:
		return e.evalBlockStmt(ctx, n, object.NewEnclosedEnvironment(env))
	case *ast.IfStmt:
		return e.evalIfStmt(ctx, n, env)
	case *ast.WhileStmt:
		return e.evalWhileStmt(ctx, n, env)
	case *ast.ForStmt:
		return e.evalForStmt(ctx, n, env)
	case *ast.ReturnStmt:
		if n.Result == nil {
			return object.Return(object.NIL)
		}
		val, err := e.evalExpr(ctx, n.Result, env)
		if err != nil {
			return object.Fail(err)
		}
		return object.Return(val)
	case *ast.BreakStmt:
		if e.loopDepth == 0 {
			return object.Fail(e.newError(ctx, n.Pos(), "break outside of a loop"))
		}
		return object.Break()
	case *ast.ContinueStmt:
		if e.loopDepth == 0 {
			return object.Fail(e.newError(ctx, n.Pos(), "continue outside of a loop"))
		}
		return object.Continue()
	case *ast.ImportStmt:
		return e.evalImportStmt(ctx, n, env)
	}
	return object.Fail(e.newError(ctx, stmt.Pos(), "evaluation not implemented for %T", stmt))
}

func (e *Evaluator) normal(val object.Object, err *object.Error) object.Outcome {
	if err != nil {
		return object.Fail(err)
	}
	return object.Normal(val)
}

// evalBlockStmt evaluates the statements of block in env. The caller is
// responsible for creating a new scope if one is needed.
func (e *Evaluator) evalBlockStmt(ctx context.Context, block *ast.BlockStmt, env *object.Environment) object.Outcome {
	var result object.Object = object.NIL
	for _, stmt := range block.Stmts {
		out := e.evalStmt(ctx, stmt, env)
		if !out.IsNormal() {
			if out.IsError() {
				e.logc(ctx, slog.LevelDebug, "block aborted", "error", out.Err.Message)
			}
			return out
		}
		result = out.Value
	}
	return object.Normal(result)
}
