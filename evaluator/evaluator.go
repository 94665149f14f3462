// Package evaluator walks a parsed program and produces values.
//
// Every statement evaluates to an object.Outcome. Expressions cannot produce
// a return, break or continue, so they are evaluated into a value and a
// runtime error, and only converted into an Outcome at statement level.
package evaluator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/podhmo/swiftflow/ast"
	"github.com/podhmo/swiftflow/object"
)

const (
	// DefaultMaxDepth bounds the number of active function calls.
	DefaultMaxDepth = 1000
	// DefaultMaxLoopIterations bounds the iterations of a single loop.
	DefaultMaxLoopIterations = 10_000_000

	// nestingPerCall scales MaxDepth into the bound on nested expression
	// evaluation.
	nestingPerCall = 64
)

// Importer loads the module named by an import statement. from is the file
// that contains the statement, empty for source that did not come from a
// file. The returned filename identifies the module within a session.
type Importer interface {
	Import(ctx context.Context, from, path string) (filename string, src []byte, err error)
}

// Config holds the settings of an Evaluator. The zero value is usable.
type Config struct {
	Logger   *slog.Logger
	Registry *object.Registry
	Importer Importer

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// MaxDepth bounds active function calls. Zero means DefaultMaxDepth.
	MaxDepth int
	// MaxLoopIterations bounds each loop. Zero means
	// DefaultMaxLoopIterations; a negative value disables the check.
	MaxLoopIterations int
	// Optimize applies constant folding to imported modules.
	Optimize bool
}

// Evaluator is the main object that evaluates the AST. It belongs to one
// session and must not be used from several goroutines at once.
type Evaluator struct {
	logger   *slog.Logger
	registry *object.Registry
	importer Importer

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	maxDepth          int
	maxLoopIterations int
	optimize          bool

	filename  string
	callStack []*object.CallFrame
	nesting   int
	loopDepth int

	modules map[string]*object.Environment
	loading map[string]bool
}

// New creates a new Evaluator.
func New(cfg Config) *Evaluator {
	e := &Evaluator{
		logger:            cfg.Logger,
		registry:          cfg.Registry,
		importer:          cfg.Importer,
		stdin:             cfg.Stdin,
		stdout:            cfg.Stdout,
		stderr:            cfg.Stderr,
		maxDepth:          cfg.MaxDepth,
		maxLoopIterations: cfg.MaxLoopIterations,
		optimize:          cfg.Optimize,
		modules:           make(map[string]*object.Environment),
		loading:           make(map[string]bool),
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	}
	if e.registry == nil {
		e.registry = object.NewRegistry()
	}
	if e.stdin == nil {
		e.stdin = os.Stdin
	}
	if e.stdout == nil {
		e.stdout = os.Stdout
	}
	if e.stderr == nil {
		e.stderr = os.Stderr
	}
	if e.maxDepth <= 0 {
		e.maxDepth = DefaultMaxDepth
	}
	if e.maxLoopIterations == 0 {
		e.maxLoopIterations = DefaultMaxLoopIterations
	}
	return e
}

// Registry returns the native registry consulted for unbound identifiers.
func (e *Evaluator) Registry() *object.Registry { return e.registry }

// Eval is the main dispatch for the evaluator.
func (e *Evaluator) Eval(ctx context.Context, node ast.Node, env *object.Environment) object.Outcome {
	switch n := node.(type) {
	case *ast.Program:
		return e.evalProgram(ctx, n, env)
	case ast.Stmt:
		return e.evalStmt(ctx, n, env)
	case ast.Expr:
		val, err := e.evalExpr(ctx, n, env)
		if err != nil {
			return object.Fail(err)
		}
		return object.Normal(val)
	}
	return object.Fail(e.newError(ctx, node.Pos(), "evaluation not implemented for %T", node))
}

// EvalFile evaluates prog as the contents of filename. Relative imports are
// resolved against it and runtime errors carry it.
func (e *Evaluator) EvalFile(ctx context.Context, filename string, prog *ast.Program, env *object.Environment) object.Outcome {
	saved := e.filename
	e.filename = filename
	defer func() { e.filename = saved }()
	return e.evalProgram(ctx, prog, env)
}

// Call invokes a Function or Native value with args, as a call expression
// would. env is used as the caller's environment for default parameters.
func (e *Evaluator) Call(ctx context.Context, fn object.Object, env *object.Environment, args ...object.Object) (object.Object, error) {
	val, err := e.applyFunction(ctx, fn, args, env, callSite{})
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (e *Evaluator) evalExpr(ctx context.Context, expr ast.Expr, env *object.Environment) (object.Object, *object.Error) {
	e.nesting++
	defer func() { e.nesting-- }()
	if e.nesting > e.maxDepth*nestingPerCall {
		return nil, e.newError(ctx, expr.Pos(), "maximum recursion depth exceeded")
	}

	switch n := expr.(type) {
	case *ast.IntegerLit:
		return &object.Integer{Value: n.Value}, nil
	case *ast.FloatLit:
		return &object.Float{Value: n.Value}, nil
	case *ast.StringLit:
		return &object.String{Value: n.Value}, nil
	case *ast.BoolLit:
		return object.NativeBool(n.Value), nil
	case *ast.NilLit:
		return object.NIL, nil
	case *ast.Ident:
		return e.evalIdent(ctx, n, env)
	case *ast.BinaryExpr:
		return e.evalBinaryExpr(ctx, n, env)
	case *ast.UnaryExpr:
		return e.evalUnaryExpr(ctx, n, env)
	case *ast.TernaryExpr:
		cond, err := e.evalExpr(ctx, n.Cond, env)
		if err != nil {
			return nil, err
		}
		if object.IsTruthy(cond) {
			return e.evalExpr(ctx, n.Then, env)
		}
		return e.evalExpr(ctx, n.Else, env)
	case *ast.AssignExpr:
		return e.evalAssignExpr(ctx, n, env)
	case *ast.IncDecExpr:
		return e.evalIncDecExpr(ctx, n, env)
	case *ast.ArrayLit:
		return e.evalArrayLit(ctx, n, env)
	case *ast.ObjectLit:
		return e.evalObjectLit(ctx, n, env)
	case *ast.CallExpr:
		return e.evalCallExpr(ctx, n, env)
	case *ast.IndexExpr:
		return e.evalIndexExpr(ctx, n, env)
	case *ast.MemberExpr:
		return e.evalMemberExpr(ctx, n, env)
	case *ast.FuncLit:
		return &object.Function{Params: n.Params, Body: n.Body, Env: env, Filename: e.filename}, nil
	}
	return nil, e.newError(ctx, expr.Pos(), "evaluation not implemented for %T", expr)
}

func (e *Evaluator) evalIdent(ctx context.Context, n *ast.Ident, env *object.Environment) (object.Object, *object.Error) {
	if val, ok := env.Get(n.Name); ok {
		return val, nil
	}
	if native, ok := e.registry.Lookup(n.Name); ok {
		return native, nil
	}
	return nil, e.newError(ctx, n.Pos(), "undefined: %s", n.Name)
}

func typeName(obj object.Object) string {
	if obj == nil {
		return string(object.NIL_OBJ)
	}
	return string(obj.Type())
}

func describe(obj object.Object) string {
	switch obj.(type) {
	case *object.Function, *object.Native:
		return obj.Inspect()
	}
	return fmt.Sprintf("%s value", typeName(obj))
}
