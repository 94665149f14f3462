// Package swiftflow is the embedding API of the SwiftFlow scripting
// language. An Interpreter is one session: a global environment, a native
// registry and the modules imported so far.
package swiftflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/podhmo/swiftflow/ast"
	"github.com/podhmo/swiftflow/cache"
	"github.com/podhmo/swiftflow/evaluator"
	"github.com/podhmo/swiftflow/fs"
	"github.com/podhmo/swiftflow/locator"
	"github.com/podhmo/swiftflow/object"
	"github.com/podhmo/swiftflow/parser"
	"github.com/podhmo/swiftflow/stdlib"
)

// Interpreter holds the state of one session. It must not be used from
// several goroutines at once; separate Interpreters are independent.
type Interpreter struct {
	registry  *object.Registry
	eval      *evaluator.Evaluator
	globalEnv *object.Environment
	locator   *locator.Locator
	cache     *cache.ImportCache

	logger *slog.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	fsys              fs.FS
	importPaths       []string
	maxDepth          int
	maxLoopIterations int
	optimize          bool
	globals           map[string]any
	argv              []string
}

// Option is a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithStdin sets the standard input for the interpreter.
func WithStdin(r io.Reader) Option {
	return func(i *Interpreter) {
		i.stdin = r
	}
}

// WithStdout sets the standard output for the interpreter.
func WithStdout(w io.Writer) Option {
	return func(i *Interpreter) {
		i.stdout = w
	}
}

// WithStderr sets the standard error for the interpreter.
func WithStderr(w io.Writer) Option {
	return func(i *Interpreter) {
		i.stderr = w
	}
}

// WithLogger sets the logger used by the evaluator and the import locator.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		i.logger = logger
	}
}

// WithMaxDepth bounds the number of active function calls.
func WithMaxDepth(n int) Option {
	return func(i *Interpreter) {
		i.maxDepth = n
	}
}

// WithMaxLoopIterations bounds the iterations of a single loop. A negative
// value disables the check.
func WithMaxLoopIterations(n int) Option {
	return func(i *Interpreter) {
		i.maxLoopIterations = n
	}
}

// WithImportPaths adds directories searched by import statements.
func WithImportPaths(dirs ...string) Option {
	return func(i *Interpreter) {
		i.importPaths = append(i.importPaths, dirs...)
	}
}

// WithRegistry replaces the default natives. The interpreter works on a
// clone, so r can be shared by several interpreters.
func WithRegistry(r *object.Registry) Option {
	return func(i *Interpreter) {
		i.registry = r
	}
}

// WithOptimize enables constant folding before evaluation.
func WithOptimize(on bool) Option {
	return func(i *Interpreter) {
		i.optimize = on
	}
}

// WithGlobals defines variables in the global environment. Values are
// converted with object.FromGo.
func WithGlobals(globals map[string]any) Option {
	return func(i *Interpreter) {
		if i.globals == nil {
			i.globals = make(map[string]any, len(globals))
		}
		for name, value := range globals {
			i.globals[name] = value
		}
	}
}

// WithImportCache memoises import resolution in c. Call Close to persist it.
func WithImportCache(c *cache.ImportCache) Option {
	return func(i *Interpreter) {
		i.cache = c
	}
}

// WithArgs sets the values returned by the args() native of the default
// registry.
func WithArgs(argv []string) Option {
	return func(i *Interpreter) {
		i.argv = argv
	}
}

// WithFS sets the file system used to read scripts and modules.
func WithFS(fsys fs.FS) Option {
	return func(i *Interpreter) {
		i.fsys = fsys
	}
}

// NewInterpreter creates a new interpreter instance, configured with options.
func NewInterpreter(options ...Option) (*Interpreter, error) {
	i := &Interpreter{
		globalEnv: object.NewEnvironment(),
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
	for _, opt := range options {
		opt(i)
	}

	if i.logger == nil {
		i.logger = slog.New(slog.NewJSONHandler(i.stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	}
	if i.fsys == nil {
		i.fsys = fs.NewOSFS()
	}
	if i.registry == nil {
		i.registry = stdlib.NewRegistry(i.argv)
	} else {
		i.registry = i.registry.Clone()
	}

	locOpts := []locator.Option{
		locator.WithFS(i.fsys),
		locator.WithImportPaths(i.importPaths...),
		locator.WithLogger(i.logger),
	}
	if i.cache != nil {
		locOpts = append(locOpts, locator.WithCache(i.cache))
	}
	i.locator = locator.New(locOpts...)

	names := make([]string, 0, len(i.globals))
	for name := range i.globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		val, err := object.FromGo(i.globals[name])
		if err != nil {
			return nil, fmt.Errorf("global %q: %w", name, err)
		}
		i.globalEnv.Define(name, val)
	}

	i.eval = evaluator.New(evaluator.Config{
		Logger:            i.logger,
		Registry:          i.registry,
		Importer:          i.locator,
		Stdin:             i.stdin,
		Stdout:            i.stdout,
		Stderr:            i.stderr,
		MaxDepth:          i.maxDepth,
		MaxLoopIterations: i.maxLoopIterations,
		Optimize:          i.optimize,
	})
	return i, nil
}

// Register adds a native to this interpreter only.
func (i *Interpreter) Register(name string, fn object.NativeFunction) {
	i.registry.Register(name, fn)
}

// Globals returns the global environment.
func (i *Interpreter) Globals() *object.Environment {
	return i.globalEnv
}

// EvalString evaluates source as a program that did not come from a file.
// The result is the value of the last statement.
func (i *Interpreter) EvalString(ctx context.Context, source string) (object.Object, error) {
	return i.evalSource(ctx, "", source)
}

// EvalFile reads and evaluates the script filename.
func (i *Interpreter) EvalFile(ctx context.Context, filename string) (object.Object, error) {
	src, err := i.fsys.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return i.evalSource(ctx, filename, string(src))
}

// EvalLine evaluates one REPL entry. Bindings persist across calls.
func (i *Interpreter) EvalLine(ctx context.Context, line string) (object.Object, error) {
	return i.evalSource(ctx, "", line)
}

func (i *Interpreter) evalSource(ctx context.Context, filename, source string) (object.Object, error) {
	prog, err := parser.ParseFile(filename, source)
	if err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	if i.optimize {
		ast.Fold(prog)
	}
	out := i.eval.EvalFile(ctx, filename, prog, i.globalEnv)
	if out.IsError() {
		return nil, fmt.Errorf("evaluating script: %w", out.Err)
	}
	if out.Value == nil {
		return object.NIL, nil
	}
	return out.Value, nil
}

// Call invokes the function or native bound to name in the global
// environment or the registry.
func (i *Interpreter) Call(ctx context.Context, name string, args ...any) (object.Object, error) {
	fn, ok := i.globalEnv.Get(name)
	if !ok {
		native, found := i.registry.Lookup(name)
		if !found {
			return nil, fmt.Errorf("function %q not found", name)
		}
		fn = native
	}
	objs := make([]object.Object, len(args))
	for n, a := range args {
		obj, err := object.FromGo(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", n+1, err)
		}
		objs[n] = obj
	}
	return i.eval.Call(ctx, fn, i.globalEnv, objs...)
}

// Close persists the import cache, if one was configured with a file.
func (i *Interpreter) Close() error {
	if i.cache == nil {
		return nil
	}
	return i.cache.Save()
}

// As stores a value produced by a script in the Go value pointed to by
// target, following the rules of encoding/json.
func As(obj object.Object, target any) error {
	v, err := object.ToGo(obj)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// RuntimeError returns the runtime error carried by err, if any.
func RuntimeError(err error) (*object.Error, bool) {
	var rerr *object.Error
	if errors.As(err, &rerr) {
		return rerr, true
	}
	return nil, false
}

// ParseErrors returns the syntax errors carried by err, if any.
func ParseErrors(err error) (parser.ErrorList, bool) {
	var list parser.ErrorList
	if errors.As(err, &list) {
		return list, true
	}
	return nil, false
}
