package evaluator

import (
	"context"
	"log/slog"

	"github.com/podhmo/swiftflow/ast"
	"github.com/podhmo/swiftflow/object"
	"github.com/podhmo/swiftflow/token"
)

// callSite describes where a call happens, for error positions and stack frames.
type callSite struct {
	pos  token.Pos
	name string // callee as written, when it is a plain identifier
}

func (e *Evaluator) evalCallExpr(ctx context.Context, n *ast.CallExpr, env *object.Environment) (object.Object, *object.Error) {
	fn, err := e.evalExpr(ctx, n.Fun, env)
	if err != nil {
		return nil, err
	}
	args, err := e.evalExprs(ctx, n.Args, env)
	if err != nil {
		return nil, err
	}

	site := callSite{pos: n.Lparen}
	if ident, ok := n.Fun.(*ast.Ident); ok {
		site.name = ident.Name
	}
	return e.applyFunction(ctx, fn, args, env, site)
}

// applyFunction calls fn with already evaluated arguments. callerEnv is the
// environment of the call site.
func (e *Evaluator) applyFunction(ctx context.Context, fn object.Object, args []object.Object, callerEnv *object.Environment, site callSite) (object.Object, *object.Error) {
	if err := ctx.Err(); err != nil {
		return nil, e.newError(ctx, site.pos, "execution canceled: %v", err)
	}
	if len(e.callStack) >= e.maxDepth {
		return nil, e.newError(ctx, site.pos, "maximum recursion depth exceeded")
	}

	switch f := fn.(type) {
	case *object.Function:
		name := f.Name
		if name == "" {
			name = site.name
		}
		e.pushFrame(site.pos, name, false)
		defer e.popFrame()
		e.logc(ctx, slog.LevelDebug, "call", "func", name, "args", len(args))
		return e.callFunction(ctx, f, name, args, callerEnv, site)

	case *object.Native:
		e.pushFrame(site.pos, f.Name, true)
		defer e.popFrame()
		e.logc(ctx, slog.LevelDebug, "call native", "func", f.Name, "args", len(args))
		return e.callNative(ctx, f, args, callerEnv, site)
	}

	if site.name != "" {
		return nil, e.newError(ctx, site.pos, "%s is not callable (%s)", site.name, describe(fn))
	}
	return nil, e.newError(ctx, site.pos, "%s is not callable", describe(fn))
}

func (e *Evaluator) callFunction(ctx context.Context, fn *object.Function, name string, args []object.Object, callerEnv *object.Environment, site callSite) (object.Object, *object.Error) {
	if len(args) > len(fn.Params) {
		return nil, e.newError(ctx, site.pos, "wrong number of arguments: %s takes %d, got %d", displayName(name), len(fn.Params), len(args))
	}

	fnEnv := object.NewEnclosedEnvironment(fn.Env)
	for i, param := range fn.Params {
		switch {
		case i < len(args):
			fnEnv.Define(param.Name.Name, args[i])
		case param.Default != nil:
			// defaults are evaluated where the call happens
			val, err := e.evalExpr(ctx, param.Default, callerEnv)
			if err != nil {
				return nil, err
			}
			fnEnv.Define(param.Name.Name, val)
		default:
			return nil, e.newError(ctx, site.pos, "wrong number of arguments: %s missing argument %s", displayName(name), param.Name.Name)
		}
	}

	savedLoop, savedFile := e.loopDepth, e.filename
	e.loopDepth = 0
	if fn.Filename != "" {
		e.filename = fn.Filename
	}
	out := e.evalBlockStmt(ctx, fn.Body, fnEnv)
	e.loopDepth, e.filename = savedLoop, savedFile

	switch out.Signal {
	case object.SignalReturn:
		return out.Value, nil
	case object.SignalNone:
		return object.NIL, nil
	case object.SignalError:
		return nil, out.Err
	}
	return nil, e.newError(ctx, site.pos, "%s escaped function %s", out.Signal, displayName(name))
}

func (e *Evaluator) callNative(ctx context.Context, fn *object.Native, args []object.Object, callerEnv *object.Environment, site callSite) (object.Object, *object.Error) {
	nctx := &object.NativeContext{
		Context: ctx,
		Name:    fn.Name,
		Pos:     site.pos,
		Stdin:   e.stdin,
		Stdout:  e.stdout,
		Stderr:  e.stderr,
		Logger:  e.logger,
		Call: func(callee object.Object, args ...object.Object) (object.Object, error) {
			val, err := e.applyFunction(ctx, callee, args, callerEnv, callSite{pos: site.pos})
			if err != nil {
				return nil, err
			}
			return val, nil
		},
	}

	result, err := fn.Fn(nctx, args, callerEnv)
	if err != nil {
		return nil, e.fromNativeError(ctx, site.pos, fn.Name, err)
	}
	if result == nil {
		return object.NIL, nil
	}
	return result, nil
}

func (e *Evaluator) pushFrame(pos token.Pos, name string, native bool) {
	e.callStack = append(e.callStack, &object.CallFrame{Pos: pos, Function: name, IsNative: native})
}

func (e *Evaluator) popFrame() {
	e.callStack = e.callStack[:len(e.callStack)-1]
}

func displayName(name string) string {
	if name == "" {
		return "<anonymous>"
	}
	return name
}
