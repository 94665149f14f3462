package evaluator

import (
	"context"
	"log/slog"

	"github.com/podhmo/swiftflow/ast"
	"github.com/podhmo/swiftflow/object"
	"github.com/podhmo/swiftflow/parser"
)

// evalImportStmt loads a module once per session and copies its top-level
// bindings, or only the named ones, into env.
func (e *Evaluator) evalImportStmt(ctx context.Context, n *ast.ImportStmt, env *object.Environment) object.Outcome {
	path := n.Path.Value
	if e.importer == nil {
		return object.Fail(e.newError(ctx, n.Path.Pos(), "cannot import %q: imports are not configured", path))
	}

	filename, src, err := e.importer.Import(ctx, e.filename, path)
	if err != nil {
		return object.Fail(e.newError(ctx, n.Path.Pos(), "cannot import %q: %v", path, err))
	}

	module, ok := e.modules[filename]
	if !ok {
		if e.loading[filename] {
			return object.Fail(e.newError(ctx, n.Path.Pos(), "import cycle not allowed: %s", filename))
		}
		var lerr *object.Error
		module, lerr = e.loadModule(ctx, n, filename, src, env)
		if lerr != nil {
			return object.Fail(lerr)
		}
	}

	bindings := module.GetAll()
	if len(n.Names) == 0 {
		for _, name := range module.Names() {
			env.Define(name, bindings[name])
		}
		return object.Normal(object.NIL)
	}
	for _, ident := range n.Names {
		val, ok := bindings[ident.Name]
		if !ok {
			return object.Fail(e.newError(ctx, ident.Pos(), "module %q has no binding %s", path, ident.Name))
		}
		env.Define(ident.Name, val)
	}
	return object.Normal(object.NIL)
}

func (e *Evaluator) loadModule(ctx context.Context, n *ast.ImportStmt, filename string, src []byte, env *object.Environment) (*object.Environment, *object.Error) {
	e.logc(ctx, slog.LevelDebug, "load module", "path", n.Path.Value, "filename", filename)

	prog, err := parser.ParseFile(filename, string(src))
	if err != nil {
		return nil, e.newError(ctx, n.Path.Pos(), "cannot import %q:\n%v", n.Path.Value, err)
	}
	if e.optimize {
		ast.Fold(prog)
	}

	e.loading[filename] = true
	defer delete(e.loading, filename)

	// modules see the globals but not the importer's local scope
	moduleEnv := object.NewEnclosedEnvironment(globalOf(env))
	savedLoop := e.loopDepth
	e.loopDepth = 0
	out := e.EvalFile(ctx, filename, prog, moduleEnv)
	e.loopDepth = savedLoop
	if out.IsError() {
		return nil, out.Err
	}
	e.modules[filename] = moduleEnv
	return moduleEnv, nil
}

func globalOf(env *object.Environment) *object.Environment {
	for env.Outer() != nil {
		env = env.Outer()
	}
	return env
}
