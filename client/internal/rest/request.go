package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Request describes one logical call. Body is encoded once up front so every
// attempt replays identical bytes.
type Request struct {
	Method string
	Path   string
	Body   []byte
	Header http.Header // per-call overrides; win over defaults
}

// NewJSONRequest encodes body as JSON. A nil body sends no payload.
func NewJSONRequest(method, path string, body any) (Request, error) {
	req := Request{Method: method, Path: path}
	if body == nil {
		return req, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return Request{}, fmt.Errorf("encode %s %s body: %w", method, path, err)
	}
	req.Body = b
	return req, nil
}

// NewFormRequest builds an application/x-www-form-urlencoded POST.
func NewFormRequest(path string, form url.Values) Request {
	h := make(http.Header)
	h.Set("Content-Type", "application/x-www-form-urlencoded")
	return Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   []byte(form.Encode()),
		Header: h,
	}
}

// op is the short label used in errors, logs and spans.
func (r Request) op() string {
	path := r.Path
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return r.Method + " " + path
}
