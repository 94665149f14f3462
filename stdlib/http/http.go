// Package stdhttp provides HTTP client natives.
package stdhttp

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/podhmo/swiftflow/object"
	"github.com/podhmo/swiftflow/stdlib/args"
	stdjson "github.com/podhmo/swiftflow/stdlib/json"
)

// DefaultTimeout bounds each request made with the default client.
const DefaultTimeout = 30 * time.Second

const userAgent = "swiftflow/1.0"

// Install registers the HTTP natives using a client with DefaultTimeout.
func Install(r *object.Registry) {
	InstallClient(r, &http.Client{Timeout: DefaultTimeout})
}

// InstallClient registers the HTTP natives using c.
func InstallClient(r *object.Registry, c *http.Client) {
	h := &natives{client: c}
	r.Register("http_get", h.get)
	r.Register("http_post", h.post)
	r.Register("http_request", h.request)
	r.Register("http_download", h.download)
}

type natives struct {
	client *http.Client
}

// http_get(url[, headers]) returns the response body.
func (h *natives) get(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 1, 2); err != nil {
		return nil, err
	}
	url, err := args.String(a, 0)
	if err != nil {
		return nil, err
	}
	var headers object.Object
	if len(a) == 2 {
		headers = a[1]
	}
	res, err := h.do(ctx, http.MethodGet, url, nil, headers)
	if err != nil {
		return nil, err
	}
	return &object.String{Value: res.body}, nil
}

// http_post(url, body[, contentType]) returns the response body. A body
// that is not a string is sent as JSON.
func (h *natives) post(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 2, 3); err != nil {
		return nil, err
	}
	url, err := args.String(a, 0)
	if err != nil {
		return nil, err
	}
	body, err := encodeBody(a[1])
	if err != nil {
		return nil, err
	}
	contentType := "application/json"
	if len(a) == 3 {
		if contentType, err = args.String(a, 2); err != nil {
			return nil, err
		}
	}
	headers := object.NewMap()
	headers.Set("Content-Type", &object.String{Value: contentType})
	res, err := h.do(ctx, http.MethodPost, url, strings.NewReader(body), headers)
	if err != nil {
		return nil, err
	}
	return &object.String{Value: res.body}, nil
}

// http_request(method, url[, body[, headers]]) returns an object with
// status, headers and body.
func (h *natives) request(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 2, 4); err != nil {
		return nil, err
	}
	method, err := args.String(a, 0)
	if err != nil {
		return nil, err
	}
	url, err := args.String(a, 1)
	if err != nil {
		return nil, err
	}
	var body io.Reader
	if len(a) >= 3 && a[2] != object.NIL {
		text, err := encodeBody(a[2])
		if err != nil {
			return nil, err
		}
		body = strings.NewReader(text)
	}
	var headers object.Object
	if len(a) == 4 {
		headers = a[3]
	}

	res, err := h.do(ctx, strings.ToUpper(method), url, body, headers)
	if err != nil {
		return nil, err
	}
	out := object.NewMap()
	out.Set("status", &object.Integer{Value: int64(res.status)})
	out.Set("headers", res.headers)
	out.Set("body", &object.String{Value: res.body})
	return out, nil
}

// http_download(url, path) writes the response body to path and returns
// the status code. The file is removed if the transfer fails.
func (h *natives) download(ctx *object.NativeContext, a []object.Object, env *object.Environment) (object.Object, error) {
	if err := args.Count(a, 2, 2); err != nil {
		return nil, err
	}
	url, err := args.String(a, 0)
	if err != nil {
		return nil, err
	}
	path, err := args.String(a, 1)
	if err != nil {
		return nil, err
	}

	req, err := newRequest(ctx, http.MethodGet, url, nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	ctx.Logger.DebugContext(ctx.Context, "downloaded", "url", url, "path", path, "bytes", n, "status", resp.StatusCode)
	return &object.Integer{Value: int64(resp.StatusCode)}, nil
}

type response struct {
	status  int
	headers *object.Map
	body    string
}

func (h *natives) do(ctx *object.NativeContext, method, url string, body io.Reader, headers object.Object) (*response, error) {
	req, err := newRequest(ctx, method, url, body, headers)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}
	ctx.Logger.DebugContext(ctx.Context, "http request", "method", method, "url", url, "status", resp.StatusCode)

	names := make([]string, 0, len(resp.Header))
	for k := range resp.Header {
		names = append(names, k)
	}
	sort.Strings(names)
	hs := object.NewMap()
	for _, k := range names {
		hs.Set(k, &object.String{Value: strings.Join(resp.Header[k], ", ")})
	}
	return &response{status: resp.StatusCode, headers: hs, body: string(data)}, nil
}

func newRequest(ctx *object.NativeContext, method, url string, body io.Reader, headers object.Object) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx.Context, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	switch hs := headers.(type) {
	case nil, *object.Nil:
	case *object.Map:
		for _, k := range hs.Keys() {
			v, _ := hs.Get(k)
			req.Header.Set(k, v.Inspect())
		}
	default:
		return nil, fmt.Errorf("headers must be an object, got %s", headers.Type())
	}
	return req, nil
}

func encodeBody(v object.Object) (string, error) {
	if s, ok := v.(*object.String); ok {
		return s.Value, nil
	}
	return stdjson.Stringify(v, "")
}
