package ast_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/podhmo/swiftflow/ast"
	"github.com/podhmo/swiftflow/parser"
	"github.com/podhmo/swiftflow/token"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.ParseProgram(src)
	if err != nil {
		t.Fatalf("ParseProgram(%q) failed: %v", src, err)
	}
	return prog
}

func TestFold(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "7;"},
		{"(10 - 4) / 4", "1;"},
		{"-7 / 2", "((-7) / 2);"}, // unary minus is not folded
		{"7 / 0", "(7 / 0);"},
		{"1 + 2 / 0", "(1 + (2 / 0));"},
		{"2 ^ 3", "(2 ^ 3);"},
		{"5 % 3", "(5 % 3);"},
		{"1.5 + 2", "(1.5 + 2);"},
		{"x + 2 * 3", "(x + 6);"},
		{"1 < 2", "(1 < 2);"},
		{"var a = [1 + 1, {k: 2 * 2}]", "var a = [2, {k: 4}];"},
		{"func f(n = 1 + 1) { return n * (3 - 1); }", "func f(n = 2) { return (n * 2); }"},
		{"for (var i = 0 + 0; i < 2 + 1; i += 1 * 1) print i;", "for (var i = 0; (i < 3); i += 1) print i;"},
		{"if (1 + 1) { print 2 * 2; } else print fn() -> 3 - 3;", "if (2) { print 4; } else print func() { return 0; };"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog := parse(t, tt.input)
			got := ast.Fold(prog).String()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Fold() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFold_Idempotent(t *testing.T) {
	src := "var x = (1 + 2) * (8 / 2 - 1) + y; print x / 0;"
	once := ast.Fold(parse(t, src)).String()
	twice := ast.Fold(ast.Fold(parse(t, src))).String()
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("folding twice differs from folding once (-once +twice):\n%s", diff)
	}
}

func TestFold_Expr(t *testing.T) {
	x := &ast.BinaryExpr{
		X:  &ast.IntegerLit{Value: 6},
		Op: token.STAR,
		Y:  &ast.IntegerLit{Value: 7},
	}
	got, ok := ast.Fold(x).(*ast.IntegerLit)
	if !ok {
		t.Fatalf("Fold() did not produce an IntegerLit. got=%T", ast.Fold(x))
	}
	if got.Value != 42 {
		t.Errorf("Fold() = %d, want 42", got.Value)
	}
}

func TestImports(t *testing.T) {
	prog := parse(t, `
import "a";
func f() {
	import x, y from "b";
	if (true) { import "c"; }
}
`)
	var got []string
	for _, imp := range ast.Imports(prog) {
		got = append(got, imp.Path.Value)
	}
	want := []string{"a", "b", "c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Imports() mismatch (-want +got):\n%s", diff)
	}
}

func TestPreorder_Stop(t *testing.T) {
	prog := parse(t, "print 1 + 2; print 3;")
	n := 0
	for range ast.Preorder(prog) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("iteration did not stop: visited %d nodes", n)
	}
}
