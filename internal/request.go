package internal

import (
	"net/http"
	"strings"
)

// Request is a read-only view of the incoming HTTP request, aware of the
// mount prefix the app is served under.
type Request struct {
	r        *http.Request
	basePath string
}

func newRequest(r *http.Request, basePath string) *Request {
	return &Request{r: r, basePath: strings.TrimRight(basePath, "/")}
}

// HTTP returns the underlying request.
func (q *Request) HTTP() *http.Request { return q.r }

func (q *Request) Method() string { return q.r.Method }

func (q *Request) IsPost() bool { return q.r.Method == http.MethodPost }

// Get returns the query parameter name, or def when it is absent.
func (q *Request) Get(name, def string) string {
	if vs, ok := q.r.URL.Query()[name]; ok && len(vs) > 0 {
		return vs[0]
	}
	return def
}

// Post returns the form field name from the request body, or def.
func (q *Request) Post(name, def string) string {
	if q.r.PostForm == nil {
		_ = q.r.ParseForm()
	}
	if vs, ok := q.r.PostForm[name]; ok && len(vs) > 0 {
		return vs[0]
	}
	return def
}

// Header returns a request header.
func (q *Request) Header(name string) string { return q.r.Header.Get(name) }

// Host returns the Host header, falling back to the URL host.
func (q *Request) Host() string {
	if q.r.Host != "" {
		return q.r.Host
	}
	return q.r.URL.Host
}

// IsSSL reports whether the request arrived over TLS, directly or through a
// proxy setting X-Forwarded-Proto.
func (q *Request) IsSSL() bool {
	return q.r.TLS != nil || strings.EqualFold(q.r.Header.Get("X-Forwarded-Proto"), "https")
}

// RequestURI returns the raw request target, query included.
func (q *Request) RequestURI() string {
	if q.r.RequestURI != "" {
		return q.r.RequestURI
	}
	return q.r.URL.RequestURI()
}

// BaseURL returns the mount prefix when the request path lives under it, or "".
func (q *Request) BaseURL() string {
	if q.basePath == "" {
		return ""
	}
	p := q.r.URL.Path
	if p == q.basePath || strings.HasPrefix(p, q.basePath+"/") {
		return q.basePath
	}
	return ""
}

// PathInfo returns the request path without the base URL.
func (q *Request) PathInfo() string {
	p := strings.TrimPrefix(q.r.URL.Path, q.BaseURL())
	if p == "" {
		return "/"
	}
	return p
}

// AbsoluteURL expands a path into scheme://host/base/path. URLs that already
// carry a scheme are returned unchanged.
func (q *Request) AbsoluteURL(u string) string {
	if strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://") {
		return u
	}
	scheme := "http://"
	if q.IsSSL() {
		scheme = "https://"
	}
	return scheme + q.Host() + q.BaseURL() + u
}
