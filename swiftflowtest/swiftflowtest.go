// Package swiftflowtest runs SwiftFlow scripts from Go tests.
package swiftflowtest

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/podhmo/swiftflow"
	"github.com/podhmo/swiftflow/fs"
	"github.com/podhmo/swiftflow/object"
)

// Result provides access to the results of a script execution.
type Result struct {
	Value  object.Object // value of the last statement
	Err    error         // parse or runtime error
	Stdout string

	env *object.Environment
}

// Get retrieves a global variable by name from the script's environment.
func (r *Result) Get(name string) (object.Object, bool) {
	return r.env.Get(name)
}

// Runner is a test helper for running scripts with an in-memory set of
// importable modules.
type Runner struct {
	files   fs.MapFS
	root    string
	options []swiftflow.Option
}

// NewRunner creates a new test runner. options are passed to every
// interpreter it creates.
func NewRunner(options ...swiftflow.Option) *Runner {
	return &Runner{files: fs.MapFS{}, root: filepath.FromSlash("/swiftflowtest"), options: options}
}

// AddModule makes content importable as path, for example "lib/util".
func (r *Runner) AddModule(path, content string) {
	name := filepath.Join(r.root, filepath.FromSlash(path))
	if filepath.Ext(name) == "" {
		name += ".swf"
	}
	r.files[name] = content
}

// Run evaluates script as the file main.swf next to the added modules.
func (r *Runner) Run(ctx context.Context, script string) *Result {
	main := filepath.Join(r.root, "main.swf")
	r.files[main] = script

	var out bytes.Buffer
	opts := append([]swiftflow.Option{
		swiftflow.WithFS(r.files),
		swiftflow.WithStdout(&out),
		swiftflow.WithStdin(strings.NewReader("")),
	}, r.options...)
	interp, err := swiftflow.NewInterpreter(opts...)
	if err != nil {
		return &Result{Err: err}
	}
	val, err := interp.EvalFile(ctx, main)
	return &Result{Value: val, Err: err, Stdout: out.String(), env: interp.Globals()}
}

// Run evaluates script in a fresh interpreter and fails the test on any error.
func Run(t *testing.T, script string, options ...swiftflow.Option) *Result {
	t.Helper()
	res := NewRunner(options...).Run(context.Background(), script)
	if res.Err != nil {
		t.Fatalf("script failed: %v", res.Err)
	}
	return res
}

// AssertOutput fails the test if the script does not print want.
func AssertOutput(t *testing.T, script, want string, options ...swiftflow.Option) {
	t.Helper()
	res := Run(t, script, options...)
	if diff := cmp.Diff(want, res.Stdout); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

// AssertError fails the test if the script does not fail. Each of contains
// must appear in the error message.
func AssertError(t *testing.T, script string, contains ...string) error {
	t.Helper()
	res := NewRunner().Run(context.Background(), script)
	if res.Err == nil {
		t.Fatalf("expected an error, but got %s", object.Repr(res.Value))
	}
	for _, c := range contains {
		if !strings.Contains(res.Err.Error(), c) {
			t.Errorf("error message %q does not contain %q", res.Err.Error(), c)
		}
	}
	return res.Err
}

// AssertInteger fails the test if the object is not an Integer with the expected value.
func AssertInteger(t *testing.T, obj object.Object, expected int64) {
	t.Helper()
	integer, ok := obj.(*object.Integer)
	if !ok {
		t.Fatalf("object is not Integer. got=%T (%+v)", obj, obj)
	}
	if integer.Value != expected {
		t.Errorf("integer has wrong value. want=%d, got=%d", expected, integer.Value)
	}
}

// AssertString fails the test if the object is not a String with the expected value.
func AssertString(t *testing.T, obj object.Object, expected string) {
	t.Helper()
	str, ok := obj.(*object.String)
	if !ok {
		t.Fatalf("object is not String. got=%T (%+v)", obj, obj)
	}
	if str.Value != expected {
		t.Errorf("String has wrong value. want=%q, got=%q", expected, str.Value)
	}
}
