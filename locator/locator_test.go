package locator

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/podhmo/swiftflow/cache"
	"github.com/podhmo/swiftflow/fs"
)

func p(s string) string { return filepath.FromSlash(s) }

func TestResolve(t *testing.T) {
	fsys := fs.MapFS{
		p("/app/main.swf"):          `import "util";`,
		p("/app/util.swf"):          `var local = 1;`,
		p("/app/lib/strings.swf"):   `var s = 1;`,
		p("/app/data"):              `not a module`,
		p("/std/util.swf"):          `var std = 1;`,
		p("/std/math.swf"):          `var pi = 3.14;`,
		p("/std/net/http.swf"):      `var http = 1;`,
		p("/abs/explicit.swf"):      `var abs = 1;`,
		p("/work/scratch/tool.swf"): `var tool = 1;`,
	}
	l := New(WithFS(fsys), WithImportPaths(p("/std")), WithWorkDir(p("/work")))

	tests := []struct {
		name string
		from string
		path string
		want string
	}{
		{name: "next to the importing file first", from: "/app/main.swf", path: "util", want: "/app/util.swf"},
		{name: "explicit extension", from: "/app/main.swf", path: "util.swf", want: "/app/util.swf"},
		{name: "relative directory", from: "/app/main.swf", path: "./lib/strings", want: "/app/lib/strings.swf"},
		{name: "import path fallback", from: "/app/main.swf", path: "math", want: "/std/math.swf"},
		{name: "nested import path", from: "/app/main.swf", path: "net/http", want: "/std/net/http.swf"},
		{name: "literal path without extension", from: "/app/main.swf", path: "data", want: "/app/data"},
		{name: "absolute", from: "/app/main.swf", path: "/abs/explicit", want: "/abs/explicit.swf"},
		{name: "parent directory", from: "/app/lib/strings.swf", path: "../util", want: "/app/util.swf"},
		{name: "no importing file uses the work dir", from: "", path: "scratch/tool", want: "/work/scratch/tool.swf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Resolve(p(tt.from), tt.path)
			if err != nil {
				t.Fatalf("Resolve() unexpected error: %v", err)
			}
			if got != p(tt.want) {
				t.Errorf("Resolve() = %q, want %q", got, p(tt.want))
			}
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	l := New(WithFS(fs.MapFS{}), WithWorkDir(p("/work")))

	tests := []struct {
		path string
		want string
	}{
		{path: "", want: "empty import path"},
		{path: "a//b", want: "invalid import path"},
		{path: "lib/", want: "invalid import path"},
		{path: "missing", want: "module not found"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := l.Resolve("", tt.path)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestResolve_UsesCache(t *testing.T) {
	fsys := fs.MapFS{p("/app/util.swf"): `var a = 1;`}
	c := cache.NewImportCache("", "")
	l := New(WithFS(fsys), WithCache(c))

	if _, err := l.Resolve(p("/app/main.swf"), "util"); err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("expected one cache entry, got %d", c.Len())
	}

	// a stale entry is dropped and the search runs again
	delete(fsys, p("/app/util.swf"))
	fsys[p("/app/util")] = `var b = 1;`
	got, err := l.Resolve(p("/app/main.swf"), "util")
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if got != p("/app/util") {
		t.Errorf("Resolve() = %q, want %q", got, p("/app/util"))
	}
}

func TestImport(t *testing.T) {
	fsys := fs.MapFS{p("/app/util.swf"): `var a = 1;`}
	l := New(WithFS(fsys))

	filename, src, err := l.Import(context.Background(), p("/app/main.swf"), "util")
	if err != nil {
		t.Fatalf("Import() unexpected error: %v", err)
	}
	if filename != p("/app/util.swf") || string(src) != `var a = 1;` {
		t.Errorf("Import() = %q, %q", filename, src)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := l.Import(ctx, "", "util"); err == nil {
		t.Errorf("Import() with a canceled context should fail")
	}
}
