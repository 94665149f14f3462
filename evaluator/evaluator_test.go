package evaluator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/podhmo/swiftflow/ast"
	"github.com/podhmo/swiftflow/object"
	"github.com/podhmo/swiftflow/parser"
)

// testEval parses input and evaluates it in a fresh global environment. It
// returns the outcome and everything printed.
func testEval(t *testing.T, cfg Config, input string) (object.Outcome, string) {
	t.Helper()
	prog, err := parser.ParseProgram(input)
	if err != nil {
		t.Fatalf("failed to parse code: %v", err)
	}
	var out bytes.Buffer
	cfg.Stdout = &out
	e := New(cfg)
	result := e.Eval(context.Background(), prog, object.NewEnvironment())
	return result, out.String()
}

func mustValue(t *testing.T, outcome object.Outcome) object.Object {
	t.Helper()
	if outcome.IsError() {
		t.Fatalf("unexpected runtime error: %s", outcome.Err.Inspect())
	}
	if !outcome.IsNormal() {
		t.Fatalf("unexpected outcome: %s", outcome)
	}
	return outcome.Value
}

func TestEval_Expressions(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"7 / 2", "3"},
		{"-7 / 2", "-3"},
		{"7 % 3", "1"},
		{"2 ^ 10", "1024"},
		{"2 ^ -1", "0.5"},
		{"1 + 2.5", "3.5"},
		{"10 / 4.0", "2.5"},
		{"0.1 + 0.2 == 0.3", "true"},
		{"0.1 + 0.2 <= 0.3", "true"},
		{"1 == 1.0", "true"},
		{`1 == "1"`, "false"},
		{"nil == nil", "true"},
		{`"a" + 1 + true`, "a1true"},
		{`"x" + nil`, "xnil"},
		{`"v=" + 1.5`, "v=1.5"},
		{`"a" + [1, "b"]`, `a[1, "b"]`},
		{"~5", "-6"},
		{"!0", "true"},
		{`!""`, "true"},
		{"-(3)", "-3"},
		{"1 < 2 && 2 < 3", "true"},
		{"nil || 0", "false"},
		{"1 && 2", "true"},
		{`"ab" < "b"`, "true"},
		{`"b" >= "b"`, "true"},
		{"2 in [1, 2]", "true"},
		{"3 in [1, 2]", "false"},
		{`var o = {k: 1}; "k" in o`, "true"},
		{`"ell" in "hello"`, "true"},
		{`5 > 3 ? "y" : "n"`, "y"},
		{"[1, 2, 3].length", "3"},
		{`"abc".length`, "3"},
		{`"abc"[1]`, "b"},
		{`var o = {"a b": 1, c: [2]}; o["a b"] + o.c[0]`, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			outcome, _ := testEval(t, Config{}, tt.input)
			got := mustValue(t, outcome)
			if got.Inspect() != tt.want {
				t.Errorf("got=%s, want=%s", got.Inspect(), tt.want)
			}
		})
	}
}

func TestEval_IntegerDivisionTruncates(t *testing.T) {
	for _, a := range []int64{-9, -7, -1, 0, 1, 7, 9} {
		for _, b := range []int64{-4, -3, -1, 1, 3, 4} {
			input := fmt.Sprintf("(%d) / (%d)", a, b)
			outcome, _ := testEval(t, Config{}, input)
			got := mustValue(t, outcome)
			if want := fmt.Sprint(a / b); got.Inspect() != want {
				t.Errorf("%s: got=%s, want=%s", input, got.Inspect(), want)
			}
		}
	}
}

func TestEval_RuntimeErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 / 0", "division by zero"},
		{"1.0 / 0.0", "division by zero"},
		{"1 / 0.0000000001", "division by zero"},
		{"5 % 0", "modulo by zero"},
		{"5.5 % 2", "unsupported operand types for %: float and int"},
		{`1 < "a"`, "unsupported operand types for <: int and string"},
		{"[1] - 1", "unsupported operand types for -: array and int"},
		{`-"a"`, "unsupported operand type for unary -: string"},
		{"x", "undefined: x"},
		{"undefinedFunc(1)", "undefined: undefinedFunc"},
		{"[1][5]", "index out of range [5] with length 1"},
		{"[1][-1]", "index out of range [-1] with length 1"},
		{`[1]["a"]`, "array index must be an int, got string"},
		{`var o = {a: 1}; o.b`, `key not found: "b"`},
		{`var o = {a: 1}; o["b"]`, `key not found: "b"`},
		{"var n = 1; n.x", "int value has no field x"},
		{"var x = 1; x()", "x is not callable (int value)"},
		{"break", "break outside of a loop"},
		{"continue", "continue outside of a loop"},
		{"func f() { break; } while (true) { f(); }", "break outside of a loop"},
		{"func f(a) {} f(1, 2)", "wrong number of arguments: f takes 1, got 2"},
		{"func f(a, b) {} f(1)", "wrong number of arguments: f missing argument b"},
		{"var a = [1]; a[3] = 1", "index out of range [3] with length 1"},
		{"var s = 1; s.x = 1", "cannot assign to field x of int value"},
		{"q += 1", "undefined: q"},
		{`import "m"`, `cannot import "m": imports are not configured`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			outcome, _ := testEval(t, Config{}, tt.input)
			if !outcome.IsError() {
				t.Fatalf("expected error, got=%s", outcome)
			}
			if !strings.Contains(outcome.Err.Message, tt.want) {
				t.Errorf("wrong error message. want=%q, got=%q", tt.want, outcome.Err.Message)
			}
		})
	}
}

func TestEval_Programs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name: "closure captures by reference",
			input: `
func make(n){ return func(x){ return x + n; } }
var add5 = make(5);
print add5(3);`,
			want: "8\n",
		},
		{
			name:  "break leaves the loop",
			input: `var i = 0; while(true){ if (i == 3) { break; } i = i + 1; } print i;`,
			want:  "3\n",
		},
		{
			name: "continue in for runs the update",
			input: `
var s = 0;
for (var i = 0; i < 10; i++) { if (i % 2 == 0) { continue; } s += i; }
print s;`,
			want: "25\n",
		},
		{
			name: "counter closure keeps its frame alive",
			input: `
func counter() { var c = 0; return func() { c = c + 1; return c; }; }
var a = counter(); var b = counter();
a(); a();
print a(); print b();`,
			want: "3\n1\n",
		},
		{
			name:  "block scope is visible to nested blocks only",
			input: `var x = 1; { var x = 2; { print x; } } print x;`,
			want:  "2\n1\n",
		},
		{
			name:  "assignment updates the nearest binding",
			input: `var x = 1; { x = 2; } print x;`,
			want:  "2\n",
		},
		{
			name: "default is evaluated in the caller environment",
			input: `
var d = 1;
func f(a = d) { return a; }
func g() { var d = 2; return f(); }
print f(); print g(); print f(7);`,
			want: "1\n2\n7\n",
		},
		{
			name: "arrays and objects are shared by reference",
			input: `
var a = [1, 2]; var b = a; b[0] = 9; print a;
var o = {n: 1}; var p = o; p.n += 1; o["m"] = 3; print o;`,
			want: "[9, 2]\n{n: 2, m: 3}\n",
		},
		{
			name:  "increment and decrement",
			input: `var i = 1; print i++; print i; print ++i; print --i; print i--; print i;`,
			want:  "1\n2\n3\n2\n2\n1\n",
		},
		{
			name:  "elif chain",
			input: `var x = 5; if (x < 3) { print "a"; } elif (x < 10) { print "b"; } else { print "c"; }`,
			want:  "b\n",
		},
		{
			name:  "declaration synonyms",
			input: `let a = 1; const b = 2; net c = 3; clog d = 4; dos e = 5; sel f = 6; print a + b + c + d + e + f;`,
			want:  "21\n",
		},
		{
			name:  "recursion",
			input: `fn fib(n) { if (n < 2) { return n; } return fib(n - 1) + fib(n - 2); } print fib(15);`,
			want:  "610\n",
		},
		{
			name:  "print formats",
			input: `print 1.0; print 2.5; print "s"; print nil; print null; print [1, "a", nil, [true]]; func f() {} print f;`,
			want:  "1\n2.5\ns\nnil\nnil\n[1, \"a\", nil, [true]]\n<func f>\n",
		},
		{
			name:  "compound assignment on strings",
			input: `var s = "a"; s += 1; s += "b"; print s;`,
			want:  "a1b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, out := testEval(t, Config{}, tt.input)
			mustValue(t, outcome)
			if diff := cmp.Diff(tt.want, out); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEval_BlockVariableNotVisibleAfterExit(t *testing.T) {
	for _, input := range []string{
		"{ var y = 1; } y",
		"{ z = 5; } z",
		"if (true) { var w = 1; } w",
	} {
		outcome, _ := testEval(t, Config{}, input)
		if !outcome.IsError() || !strings.HasPrefix(outcome.Err.Message, "undefined: ") {
			t.Errorf("%q: expected an undefined error, got=%s", input, outcome)
		}
	}
}

func TestEval_TopLevelReturnEndsProgram(t *testing.T) {
	outcome, out := testEval(t, Config{}, `print 1; return 5; print 2;`)
	got := mustValue(t, outcome)
	if got.Inspect() != "5" {
		t.Errorf("got=%s, want=5", got.Inspect())
	}
	if out != "1\n" {
		t.Errorf("output=%q, want %q", out, "1\n")
	}
}

func TestEval_FoldingIsTransparent(t *testing.T) {
	inputs := []string{
		"1 + 2 * 3 - 4",
		"(10 - 2) / 3 * 7",
		"100 / 7 / 2 + -3 * 2",
		"2 * (3 + (4 - 5)) / 1",
		"9223372036854775807 + 1",
	}
	for _, input := range inputs {
		plain, _ := testEval(t, Config{}, input)

		prog, err := parser.ParseProgram(input)
		if err != nil {
			t.Fatalf("failed to parse code: %v", err)
		}
		folded := ast.Fold(prog)
		e := New(Config{})
		got := e.Eval(context.Background(), folded, object.NewEnvironment())

		if mustValue(t, plain).Inspect() != mustValue(t, got).Inspect() {
			t.Errorf("%s: unfolded=%s, folded=%s", input, plain.Value.Inspect(), got.Value.Inspect())
		}
	}
}

func TestEval_Guards(t *testing.T) {
	t.Run("loop cap", func(t *testing.T) {
		outcome, _ := testEval(t, Config{MaxLoopIterations: 100}, "while (true) {}")
		if !outcome.IsError() || outcome.Err.Message != "loop iteration limit exceeded (100)" {
			t.Errorf("unexpected outcome: %s", outcome)
		}
	})
	t.Run("loop cap allows exactly the limit", func(t *testing.T) {
		outcome, _ := testEval(t, Config{MaxLoopIterations: 3}, "for (var i = 0; i < 3; i++) {} 1")
		mustValue(t, outcome)
	})
	t.Run("recursion depth", func(t *testing.T) {
		outcome, _ := testEval(t, Config{}, "func f(n) { return f(n + 1); } f(0)")
		if !outcome.IsError() || outcome.Err.Message != "maximum recursion depth exceeded" {
			t.Fatalf("unexpected outcome: %s", outcome)
		}
		if len(outcome.Err.CallStack) != DefaultMaxDepth {
			t.Errorf("call stack length = %d, want %d", len(outcome.Err.CallStack), DefaultMaxDepth)
		}
	})
	t.Run("expression nesting", func(t *testing.T) {
		input := "1" + strings.Repeat(" + 1", 100)
		outcome, _ := testEval(t, Config{MaxDepth: 1}, input)
		if !outcome.IsError() || outcome.Err.Message != "maximum recursion depth exceeded" {
			t.Errorf("unexpected outcome: %s", outcome)
		}
	})
	t.Run("canceled context", func(t *testing.T) {
		prog, err := parser.ParseProgram("while (true) {}")
		if err != nil {
			t.Fatalf("failed to parse code: %v", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		outcome := New(Config{}).Eval(ctx, prog, object.NewEnvironment())
		if !outcome.IsError() || !strings.HasPrefix(outcome.Err.Message, "execution canceled") {
			t.Errorf("unexpected outcome: %s", outcome)
		}
	})
}

func TestEval_CallStack(t *testing.T) {
	input := `
func inner() { return 1 / 0; }
func outer() { return inner(); }
outer();`
	outcome, _ := testEval(t, Config{}, input)
	if !outcome.IsError() {
		t.Fatalf("expected error, got=%s", outcome)
	}
	var names []string
	for _, f := range outcome.Err.CallStack {
		names = append(names, f.Function)
	}
	if diff := cmp.Diff([]string{"outer", "inner"}, names); diff != "" {
		t.Errorf("call stack mismatch (-want +got):\n%s", diff)
	}
	if got, want := outcome.Err.Pos.String(), "2:25"; got != want {
		t.Errorf("error position = %s, want %s", got, want)
	}
}

func TestEval_Natives(t *testing.T) {
	registry := object.NewRegistry()
	registry.Register("twice", func(ctx *object.NativeContext, args []object.Object, env *object.Environment) (object.Object, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("expected 2 arguments, got %d", len(args))
		}
		first, err := ctx.Call(args[0], args[1])
		if err != nil {
			return nil, err
		}
		return ctx.Call(args[0], first)
	})
	registry.Register("fail", func(ctx *object.NativeContext, args []object.Object, env *object.Environment) (object.Object, error) {
		return nil, errors.New("bad")
	})
	registry.Register("caller_x", func(ctx *object.NativeContext, args []object.Object, env *object.Environment) (object.Object, error) {
		v, ok := env.Get("x")
		if !ok {
			return object.NIL, nil
		}
		return v, nil
	})

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "higher order", input: `print twice(func(x) { return x * 2; }, 5);`, want: "20\n"},
		{name: "native as value", input: `var t = twice; print t; print typeof_missing == nil;`, wantErr: "undefined: typeof_missing"},
		{name: "caller env", input: `func f() { var x = 42; return caller_x(); } print f();`, want: "42\n"},
		{name: "plain error", input: `fail();`, wantErr: "fail: bad"},
		{name: "nested runtime error passes through", input: `twice(func(x) { return x / 0; }, 1);`, wantErr: "division by zero"},
		{name: "env binding shadows registry", input: `func twice(x) { return x; } print twice(3);`, want: "3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, out := testEval(t, Config{Registry: registry}, tt.input)
			if tt.wantErr != "" {
				if !outcome.IsError() {
					t.Fatalf("expected error, got=%s", outcome)
				}
				if outcome.Err.Message != tt.wantErr {
					t.Errorf("wrong error message. want=%q, got=%q", tt.wantErr, outcome.Err.Message)
				}
				return
			}
			mustValue(t, outcome)
			if diff := cmp.Diff(tt.want, out); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type mapImporter map[string]string

func (m mapImporter) Import(ctx context.Context, from, path string) (string, []byte, error) {
	src, ok := m[path]
	if !ok {
		return "", nil, fmt.Errorf("module not found")
	}
	return path + ".swf", []byte(src), nil
}

func TestEval_Imports(t *testing.T) {
	importer := mapImporter{}
	importer["m"] = `print "loading m"; var greeting = "hi"; func shout(s) { return s + "!"; }`
	importer["a"] = `import "b"; var fromA = 1;`
	importer["b"] = `import "a"; var fromB = 2;`
	importer["broken"] = `var = ;`
	importer["uses_global"] = `func get() { return g; }`

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "whole module", input: `import "m"; print shout(greeting);`, want: "loading m\nhi!\n"},
		{name: "evaluated once", input: `import "m"; import "m"; import shout from "m";`, want: "loading m\n"},
		{name: "selected names", input: `import shout from "m"; print shout("x"); print greeting;`, wantErr: "undefined: greeting"},
		{name: "missing name", input: `import nope from "m";`, wantErr: `module "m" has no binding nope`},
		{name: "missing module", input: `import "zzz";`, wantErr: `cannot import "zzz": module not found`},
		{name: "cycle", input: `import "a";`, wantErr: "import cycle not allowed: a.swf"},
		{name: "parse error", input: `import "broken";`, wantErr: `cannot import "broken":` + "\nbroken.swf:1:5: expected identifier, found '='"},
		{name: "module sees globals", input: `var g = 7; import get from "uses_global"; print get();`, want: "7\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, out := testEval(t, Config{Importer: importer}, tt.input)
			if tt.wantErr != "" {
				if !outcome.IsError() {
					t.Fatalf("expected error, got=%s", outcome)
				}
				if !strings.HasPrefix(outcome.Err.Message, tt.wantErr) {
					t.Errorf("wrong error message. want prefix %q, got=%q", tt.wantErr, outcome.Err.Message)
				}
				return
			}
			mustValue(t, outcome)
			if diff := cmp.Diff(tt.want, out); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
