package swiftflow

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "swiftflow.toml")
	writeFile(t, tomlPath, `
import_paths = ["lib", "/abs/lib"]
max_depth = 50
max_loop_iterations = -1
optimize = true
log_level = "debug"
timeout = "2s"

[globals]
env = "test"
retries = 3
`)
	yamlPath := filepath.Join(dir, "swiftflow.yaml")
	writeFile(t, yamlPath, `
import_paths: [lib, /abs/lib]
max_depth: 50
max_loop_iterations: -1
optimize: true
log_level: debug
timeout: 2s
globals:
  env: test
  retries: 3
`)

	for _, path := range []string{tomlPath, yamlPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			cfg, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig() failed: %v", err)
			}
			want := &Config{
				ImportPaths:       []string{"lib", "/abs/lib"},
				MaxDepth:          50,
				MaxLoopIterations: -1,
				Optimize:          true,
				LogLevel:          "debug",
				Timeout:           "2s",
				Dir:               dir,
			}
			if diff := cmp.Diff(want, cfg, cmpopts.IgnoreFields(Config{}, "Globals")); diff != "" {
				t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
			}
			if len(cfg.Globals) != 2 || cfg.Globals["env"] != "test" {
				t.Errorf("wrong globals: %v", cfg.Globals)
			}
			if cfg.TimeoutDuration() != 2*time.Second {
				t.Errorf("TimeoutDuration() = %v", cfg.TimeoutDuration())
			}
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{name: "unknown toml key", file: "a.toml", content: "max_dept = 1\n", wantErr: "unknown keys max_dept"},
		{name: "unknown yaml key", file: "a.yaml", content: "max_dept: 1\n", wantErr: "field max_dept not found"},
		{name: "bad timeout", file: "b.toml", content: `timeout = "soon"`, wantErr: "timeout:"},
		{name: "bad level", file: "c.yml", content: "log_level: loud\n", wantErr: `unknown level "loud"`},
		{name: "extension", file: "d.json", content: "{}", wantErr: `unsupported file type ".json"`},
		{name: "malformed", file: "e.toml", content: "import_paths = [", wantErr: "config: parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			writeFile(t, path, tt.content)
			_, err := LoadConfig(path)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Options(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "lib", "greet.swf"), `func greet(n) -> greeting + ", " + n;`)
	cfgPath := filepath.Join(dir, "swiftflow.toml")
	writeFile(t, cfgPath, `
import_paths = ["lib"]
cache_file = ".cache/imports.json"

[globals]
greeting = "hello"
`)

	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options() failed: %v", err)
	}
	var out bytes.Buffer
	i, err := NewInterpreter(append(opts, WithStdout(&out))...)
	if err != nil {
		t.Fatalf("NewInterpreter() failed: %v", err)
	}
	if _, err := i.EvalString(context.Background(), `import "greet"; print greet("ann");`); err != nil {
		t.Fatalf("EvalString() failed: %v", err)
	}
	if out.String() != "hello, ann\n" {
		t.Errorf("wrong output. expected=%q, got=%q", "hello, ann\n", out.String())
	}

	if err := i.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".cache", "imports.json")); err != nil {
		t.Errorf("import cache was not persisted: %v", err)
	}
}

func TestConfig_ImportCache(t *testing.T) {
	t.Run("no cache file", func(t *testing.T) {
		ic, err := (&Config{}).ImportCache()
		if err != nil || ic != nil {
			t.Errorf("ImportCache() = %v, %v; want nil, nil", ic, err)
		}
	})

	t.Run("corrupted cache file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "imports.json"), "{")
		cfg := &Config{CacheFile: "imports.json", Dir: dir}
		if _, err := cfg.ImportCache(); err == nil || !strings.Contains(err.Error(), "loading import cache") {
			t.Errorf("expected a load error, got %v", err)
		}
	})

	t.Run("shared between sessions", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "lib", "one.swf"), `var one = 1;`)
		cfg := &Config{ImportPaths: []string{"lib"}, CacheFile: "imports.json", Dir: dir}
		ic, err := cfg.ImportCache()
		if err != nil {
			t.Fatalf("ImportCache() failed: %v", err)
		}
		for range 2 {
			i, err := NewInterpreter(append(cfg.SessionOptions(ic), WithStdout(&bytes.Buffer{}))...)
			if err != nil {
				t.Fatalf("NewInterpreter() failed: %v", err)
			}
			if _, err := i.EvalString(context.Background(), `import "one"; one`); err != nil {
				t.Fatalf("EvalString() failed: %v", err)
			}
		}
		if ic.Len() != 1 {
			t.Errorf("wrong number of cache entries. want=1, got=%d", ic.Len())
		}
		if err := ic.Save(); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "imports.json")); err != nil {
			t.Errorf("import cache was not persisted: %v", err)
		}
	})
}
