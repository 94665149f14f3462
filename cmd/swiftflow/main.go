package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/podhmo/swiftflow"
	"github.com/podhmo/swiftflow/ast"
	"github.com/podhmo/swiftflow/lexer"
	"github.com/podhmo/swiftflow/locator"
	"github.com/podhmo/swiftflow/parser"
	"github.com/podhmo/swiftflow/token"
)

const usage = `Usage: swiftflow [flags] <command> [files...] [-- args...]

Commands:
  run <file>...     evaluate scripts (the default when a file is given)
  check <file>...   report syntax errors and unresolved imports
  tokens <file>     print the tokens of a script
  repl              start an interactive session (the default with no arguments)

Flags:
`

type options struct {
	configPath  string
	logLevel    string
	importPaths []string
	maxDepth    int
	maxLoop     int
	optimize    bool
	timeout     time.Duration
	jobs        int
}

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(a.run(context.Background(), os.Args[1:]))
}

// run executes the command line and returns the exit code.
func (a *app) run(ctx context.Context, args []string) int {
	var opts options
	fs := pflag.NewFlagSet("swiftflow", pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprint(a.stderr, usage)
		fs.PrintDefaults()
	}
	fs.StringVarP(&opts.configPath, "config", "c", "", "config file (.toml, .yaml or .yml)")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.StringSliceVarP(&opts.importPaths, "import-path", "I", nil, "directory searched by import statements (repeatable)")
	fs.IntVar(&opts.maxDepth, "max-depth", 0, "maximum call depth (0 uses the default)")
	fs.IntVar(&opts.maxLoop, "max-loop", 0, "maximum iterations of a single loop (0 uses the default, negative disables)")
	fs.BoolVarP(&opts.optimize, "optimize", "O", false, "fold constant expressions before evaluation")
	fs.DurationVar(&opts.timeout, "timeout", 0, "abort evaluation after this duration")
	fs.IntVarP(&opts.jobs, "jobs", "j", 1, "number of scripts evaluated concurrently")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	positional := fs.Args()
	var scriptArgs []string
	if dash := fs.ArgsLenAtDash(); dash >= 0 {
		positional, scriptArgs = fs.Args()[:dash], fs.Args()[dash:]
	}

	cfg := &swiftflow.Config{}
	if opts.configPath != "" {
		loaded, err := swiftflow.LoadConfig(opts.configPath)
		if err != nil {
			fmt.Fprintln(a.stderr, err)
			return 2
		}
		cfg = loaded
	}
	a.applyFlags(fs, &opts, cfg)

	logger, err := newLogger(a.stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(a.stderr, err)
		return 2
	}
	if d := cfg.TimeoutDuration(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	cmd := "repl"
	if len(positional) > 0 {
		if isCommand(positional[0]) {
			cmd, positional = positional[0], positional[1:]
		} else {
			cmd = "run"
		}
	}

	switch cmd {
	case "run":
		if len(positional) == 0 {
			fs.Usage()
			return 2
		}
		return a.runFiles(ctx, cfg, logger, positional, scriptArgs, opts.jobs)
	case "check":
		if len(positional) == 0 {
			fs.Usage()
			return 2
		}
		return a.check(cfg, logger, positional)
	case "tokens":
		if len(positional) != 1 {
			fs.Usage()
			return 2
		}
		return a.tokens(positional[0])
	case "repl":
		return a.repl(ctx, cfg, logger, scriptArgs)
	}
	return 2
}

func isCommand(s string) bool {
	switch s {
	case "run", "check", "tokens", "repl":
		return true
	}
	return false
}

// applyFlags lets explicitly set flags override the config file.
func (a *app) applyFlags(fs *pflag.FlagSet, opts *options, cfg *swiftflow.Config) {
	if fs.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if fs.Changed("import-path") {
		cfg.ImportPaths = append(cfg.ImportPaths, absPaths(opts.importPaths)...)
	}
	if fs.Changed("max-depth") {
		cfg.MaxDepth = opts.maxDepth
	}
	if fs.Changed("max-loop") {
		cfg.MaxLoopIterations = opts.maxLoop
	}
	if fs.Changed("optimize") {
		cfg.Optimize = opts.optimize
	}
	if fs.Changed("timeout") {
		cfg.Timeout = opts.timeout.String()
	}
}

func absPaths(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out[i] = p
	}
	return out
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lv slog.Level
	switch strings.ToLower(level) {
	case "", "error":
		lv = slog.LevelError
	case "warn":
		lv = slog.LevelWarn
	case "info":
		lv = slog.LevelInfo
	case "debug":
		lv = slog.LevelDebug
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv})), nil
}

func (a *app) newInterpreter(opts []swiftflow.Option, logger *slog.Logger, stdout io.Writer, scriptArgs []string) (*swiftflow.Interpreter, error) {
	// opts is shared by concurrent sessions; Clip makes append copy it.
	opts = append(slices.Clip(opts),
		swiftflow.WithLogger(logger),
		swiftflow.WithStdin(a.stdin),
		swiftflow.WithStdout(stdout),
		swiftflow.WithStderr(a.stderr),
		swiftflow.WithArgs(scriptArgs),
	)
	return swiftflow.NewInterpreter(opts...)
}

// runFiles evaluates each file in its own session. The sessions share one
// import cache, saved once at the end. With several files the output of each
// is buffered and written in argument order.
func (a *app) runFiles(ctx context.Context, cfg *swiftflow.Config, logger *slog.Logger, files, scriptArgs []string, jobs int) int {
	ic, err := cfg.ImportCache()
	if err != nil {
		fmt.Fprintln(a.stderr, err)
		return 1
	}
	opts := cfg.SessionOptions(ic)
	defer func() {
		if ic == nil {
			return
		}
		if err := ic.Save(); err != nil {
			logger.Warn("saving import cache", "file", ic.FilePath(), "error", err)
		}
	}()

	if len(files) == 1 {
		return a.report(a.runFile(ctx, opts, logger, a.stdout, files[0], scriptArgs))
	}

	outputs := make([]bytes.Buffer, len(files))
	errs := make([]error, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, file := range files {
		g.Go(func() error {
			errs[i] = a.runFile(gctx, opts, logger, &outputs[i], file, scriptArgs)
			return nil
		})
	}
	g.Wait()

	code := 0
	for i := range files {
		a.stdout.Write(outputs[i].Bytes())
		if c := a.report(errs[i]); c != 0 {
			code = c
		}
	}
	return code
}

func (a *app) runFile(ctx context.Context, opts []swiftflow.Option, logger *slog.Logger, stdout io.Writer, file string, scriptArgs []string) error {
	interp, err := a.newInterpreter(opts, logger, stdout, scriptArgs)
	if err != nil {
		return err
	}
	logger.Debug("run", "file", file)
	_, err = interp.EvalFile(ctx, file)
	return err
}

// report prints err the way the command line shows diagnostics and returns
// the exit code.
func (a *app) report(err error) int {
	if err == nil {
		return 0
	}
	if list, ok := swiftflow.ParseErrors(err); ok {
		for _, e := range list {
			fmt.Fprintln(a.stderr, e)
		}
		return 1
	}
	if rerr, ok := swiftflow.RuntimeError(err); ok {
		fmt.Fprint(a.stderr, rerr.Inspect())
		return 1
	}
	fmt.Fprintln(a.stderr, err)
	return 1
}

// check parses each file and resolves its imports without evaluating.
func (a *app) check(cfg *swiftflow.Config, logger *slog.Logger, files []string) int {
	var importPaths []string
	for _, p := range cfg.ImportPaths {
		if !filepath.IsAbs(p) && cfg.Dir != "" {
			p = filepath.Join(cfg.Dir, p)
		}
		importPaths = append(importPaths, p)
	}
	loc := locator.New(locator.WithImportPaths(importPaths...), locator.WithLogger(logger))

	code := 0
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintln(a.stderr, err)
			code = 1
			continue
		}
		prog, err := parser.ParseFile(file, string(src))
		if err != nil {
			a.report(err)
			code = 1
			continue
		}
		for _, imp := range ast.Imports(prog) {
			if _, err := loc.Resolve(file, imp.Path.Value); err != nil {
				fmt.Fprintf(a.stderr, "%s:%s: cannot import %q: %v\n", file, imp.Path.Pos(), imp.Path.Value, err)
				code = 1
			}
		}
	}
	return code
}

// tokens prints one token per line.
func (a *app) tokens(file string) int {
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintln(a.stderr, err)
		return 1
	}
	code := 0
	for _, tok := range lexer.Tokenize(string(src)) {
		fmt.Fprintf(a.stdout, "%s\t%s\t%s\n", tok.Pos, tok.Kind, tok.Text)
		if tok.Kind == token.ILLEGAL {
			code = 1
		}
	}
	return code
}
