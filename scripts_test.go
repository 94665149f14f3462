package swiftflow

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var update = flag.Bool("update", false, "rewrite the .golden files under testdata/scripts")

// TestScripts runs every testdata/scripts/*.swf file and compares its output
// with the .golden file next to it. A failing script appends one
// "error: pos: message" line.
func TestScripts(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "scripts", "*.swf"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no scripts found")
	}

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".swf")
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			interp, err := NewInterpreter(WithStdout(&out), WithStdin(strings.NewReader("")))
			if err != nil {
				t.Fatalf("NewInterpreter() failed: %v", err)
			}
			if _, err := interp.EvalFile(context.Background(), file); err != nil {
				rerr, ok := RuntimeError(err)
				if !ok {
					t.Fatalf("unexpected error: %v", err)
				}
				fmt.Fprintf(&out, "error: %s: %s\n", rerr.Pos, rerr.Message)
			}

			golden := strings.TrimSuffix(file, ".swf") + ".golden"
			if *update {
				if err := os.WriteFile(golden, out.Bytes(), 0o644); err != nil {
					t.Fatal(err)
				}
				return
			}
			want, err := os.ReadFile(golden)
			if err != nil {
				t.Fatalf("reading golden file: %v", err)
			}
			if diff := cmp.Diff(string(want), out.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
