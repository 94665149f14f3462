package stdhttp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/podhmo/swiftflow/evaluator"
	"github.com/podhmo/swiftflow/object"
	"github.com/podhmo/swiftflow/parser"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/hello", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "hello %s", r.Header.Get("X-Name"))
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Method", r.Method)
		fmt.Fprintf(w, "%s|%s", r.Header.Get("Content-Type"), body)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func eval(t *testing.T, srv *httptest.Server, input string) object.Outcome {
	t.Helper()
	prog, err := parser.ParseProgram(input)
	if err != nil {
		t.Fatalf("failed to parse code: %v", err)
	}
	r := object.NewRegistry()
	InstallClient(r, srv.Client())
	env := object.NewEnvironment()
	env.Define("base", &object.String{Value: srv.URL})
	e := evaluator.New(evaluator.Config{Registry: r})
	return e.Eval(context.Background(), prog, env)
}

func TestHTTP(t *testing.T) {
	srv := newServer(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "out.txt")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "get", input: `http_get(base + "/hello")`, want: "hello "},
		{name: "get with headers", input: `http_get(base + "/hello", {"X-Name": "ann"})`, want: "hello ann"},
		{name: "post string", input: `http_post(base + "/echo", "raw", "text/plain")`, want: "text/plain|raw"},
		{name: "post object as json", input: `http_post(base + "/echo", {b: 1, a: [true]})`, want: `application/json|{"b":1,"a":[true]}`},
		{name: "request", input: `var r = http_request("put", base + "/echo", "x"); [r.status, r.headers["X-Method"], r.body]`, want: `[200, "PUT", "|x"]`},
		{name: "request status", input: `http_request("GET", base + "/missing").status`, want: "404"},
		{name: "download", input: `http_download(base + "/hello", ` + strconv.Quote(target) + `)`, want: "200"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := eval(t, srv, tt.input)
			if outcome.IsError() {
				t.Fatalf("unexpected runtime error: %s", outcome.Err.Inspect())
			}
			if got := outcome.Value.Inspect(); got != tt.want {
				t.Errorf("wrong result. expected=%q, got=%q", tt.want, got)
			}
		})
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("download did not write the file: %v", err)
	}
	if string(data) != "hello " {
		t.Errorf("wrong file content. expected=%q, got=%q", "hello ", data)
	}
}

func TestHTTP_Errors(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "url type", input: `http_get(1)`, wantErr: "http_get: argument 1 must be string, got int"},
		{name: "headers type", input: `http_get(base, 1)`, wantErr: "http_get: headers must be an object, got int"},
		{name: "arity", input: `http_post(base)`, wantErr: "http_post: wrong number of arguments, got=1, want at least 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := eval(t, srv, tt.input)
			if !outcome.IsError() {
				t.Fatalf("expected error, got=%s", outcome)
			}
			if outcome.Err.Message != tt.wantErr {
				t.Errorf("wrong error message. expected=%q, got=%q", tt.wantErr, outcome.Err.Message)
			}
		})
	}
}
