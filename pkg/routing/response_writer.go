package routing

import (
	"bufio"
	"net"
	"net/http"
	"sync"
)

// ResponseWriter records whether and how a response was written, so the
// router does not write a second response after an action wrote its own.
type ResponseWriter struct {
	http.ResponseWriter
	mu          sync.Mutex
	status      int
	size        int64
	written     bool
	beforeWrite []func()
}

// NewResponseWriter wraps w. Wrapping a *ResponseWriter returns it as is.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// OnBeforeWrite registers fn to run once, right before headers are sent.
func (w *ResponseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.beforeWrite = append(w.beforeWrite, fn)
}

// markWritten flips the written flag and returns the pending hooks, or false
// when headers were already sent.
func (w *ResponseWriter) markWritten(status int) ([]func(), bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.written {
		return nil, false
	}
	w.written = true
	w.status = status
	hooks := w.beforeWrite
	w.beforeWrite = nil
	return hooks, true
}

func (w *ResponseWriter) WriteHeader(code int) {
	hooks, first := w.markWritten(code)
	if !first {
		return
	}
	for _, fn := range hooks {
		fn()
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if hooks, first := w.markWritten(w.Status()); first {
		for _, fn := range hooks {
			fn()
		}
		w.ResponseWriter.WriteHeader(w.Status())
	}
	n, err := w.ResponseWriter.Write(b)
	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

// Status returns the status code sent, 200 until headers are written.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size returns the number of body bytes written.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Written reports whether headers were sent.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Unwrap returns the wrapped writer for http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
