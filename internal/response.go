package internal

import (
	"net/http"
	"strconv"
)

// Response accumulates status, headers and body until Send writes them.
// A response is sent at most once.
type Response struct {
	w          http.ResponseWriter
	headers    http.Header
	content    string
	statusText string
	statusCode int
	sent       bool
}

func newResponse(w http.ResponseWriter) *Response {
	return &Response{
		w:          w,
		headers:    make(http.Header),
		statusCode: http.StatusOK,
		statusText: http.StatusText(http.StatusOK),
	}
}

// SetStatusCode sets the status. An empty text uses the standard reason phrase.
func (r *Response) SetStatusCode(code int, text string) {
	if text == "" {
		text = http.StatusText(code)
	}
	r.statusCode = code
	r.statusText = text
}

func (r *Response) StatusCode() int { return r.statusCode }

func (r *Response) StatusText() string { return r.statusText }

// SetHeader replaces a response header.
func (r *Response) SetHeader(name, value string) {
	r.headers.Set(name, value)
}

// Header returns the pending headers.
func (r *Response) Header() http.Header { return r.headers }

func (r *Response) SetContent(body string) { r.content = body }

func (r *Response) Content() string { return r.content }

// reset discards the buffered status, headers and body.
func (r *Response) reset() {
	clear(r.headers)
	r.content = ""
	r.SetStatusCode(http.StatusOK, "")
}

// Sent reports whether Send already ran.
func (r *Response) Sent() bool { return r.sent }

// Send writes the response. Calling it twice returns ErrAlreadySent.
func (r *Response) Send() error {
	if r.sent {
		return ErrAlreadySent
	}
	r.sent = true

	h := r.w.Header()
	for name, values := range r.headers {
		h[name] = values
	}
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", "text/html; charset=utf-8")
	}
	h.Set("Content-Length", strconv.Itoa(len(r.content)))

	r.w.WriteHeader(r.statusCode)
	_, err := r.w.Write([]byte(r.content))
	return err
}
