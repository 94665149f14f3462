package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/podhmo/swiftflow"
	"github.com/podhmo/swiftflow/object"
	"github.com/podhmo/swiftflow/parser"
)

const (
	historyFile = ".swiftflow_history"
	promptMain  = ">> "
	promptCont  = ".. "
)

// lineReader is the part of liner.State the REPL uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// plainReader reads lines without editing, for input that is not a terminal.
type plainReader struct {
	sc  *bufio.Scanner
	out io.Writer
}

func (r *plainReader) Prompt(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.sc.Text(), nil
}

func (r *plainReader) AppendHistory(string) {}
func (r *plainReader) Close() error         { return nil }

func (a *app) repl(ctx context.Context, cfg *swiftflow.Config, logger *slog.Logger, scriptArgs []string) int {
	opts, err := cfg.Options()
	if err != nil {
		fmt.Fprintln(a.stderr, err)
		return 1
	}
	interp, err := a.newInterpreter(opts, logger, a.stdout, scriptArgs)
	if err != nil {
		fmt.Fprintln(a.stderr, err)
		return 1
	}
	defer interp.Close()

	var lr lineReader
	if f, ok := a.stdin.(*os.File); ok && f == os.Stdin {
		ln := liner.NewLiner()
		ln.SetCtrlCAborts(true)
		histPath := ""
		if home, err := os.UserHomeDir(); err == nil {
			histPath = filepath.Join(home, historyFile)
			if f, err := os.Open(histPath); err == nil {
				ln.ReadHistory(f)
				f.Close()
			}
		}
		defer func() {
			if histPath == "" {
				return
			}
			if f, err := os.Create(histPath); err == nil {
				ln.WriteHistory(f)
				f.Close()
			}
		}()
		lr = ln
	} else {
		lr = &plainReader{sc: bufio.NewScanner(a.stdin), out: a.stdout}
	}
	defer lr.Close()

	for {
		code, ok := readEntry(lr)
		if !ok {
			fmt.Fprintln(a.stdout)
			return 0
		}
		trimmed := strings.TrimSpace(code)
		switch trimmed {
		case "":
			continue
		case ":quit", "exit":
			return 0
		}

		v, err := interp.EvalLine(ctx, code)
		lr.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if err != nil {
			a.report(err)
			continue
		}
		if v != object.NIL {
			fmt.Fprintln(a.stdout, object.Repr(v))
		}
	}
}

// readEntry reads lines until they form a complete program, or until an
// error that more input cannot fix. ok is false at end of input.
func readEntry(lr lineReader) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := lr.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if _, perr := parser.ParseProgram(b.String()); perr != nil && parser.IsIncomplete(perr) {
			continue
		}
		return b.String(), true
	}
}
