package internal

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/BenRutlandWeb/atomic-framework/middlewares"
	"github.com/BenRutlandWeb/atomic-framework/pkg/auth"
	"github.com/BenRutlandWeb/atomic-framework/pkg/container"
	"github.com/BenRutlandWeb/atomic-framework/pkg/logger"
	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
	"github.com/BenRutlandWeb/atomic-framework/pkg/validation"
	"github.com/BenRutlandWeb/atomic-framework/pkg/view"
)

// ServiceExceptions is the container name of the exception handler.
const ServiceExceptions = "exceptions"

// ExceptionHandler renders errors returned by actions and middleware.
//
// The status comes from the error's StatusCode method, 500 otherwise.
// Validation failures always render {"errors": {...}}. Everything else
// renders {"message": "..."}, or the errors/{status} view when one exists
// and the client did not ask for JSON. Handle answers every error itself,
// so only a failed write reaches the caller.
type ExceptionHandler struct {
	logger     *slog.Logger
	debug      bool
	views      func() (*view.Factory, error)
	dontReport []error
}

// ExceptionOption configures an ExceptionHandler.
type ExceptionOption func(*ExceptionHandler)

// WithExceptionLogger sets the logger server errors are reported to.
func WithExceptionLogger(l *slog.Logger) ExceptionOption {
	return func(h *ExceptionHandler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithDebug exposes the messages of server errors in responses.
func WithDebug(debug bool) ExceptionOption {
	return func(h *ExceptionHandler) { h.debug = debug }
}

// WithErrorViews resolves the view factory error pages are rendered with.
func WithErrorViews(fn func() (*view.Factory, error)) ExceptionOption {
	return func(h *ExceptionHandler) { h.views = fn }
}

// DontReport skips logging errors matching any of targets.
func DontReport(targets ...error) ExceptionOption {
	return func(h *ExceptionHandler) { h.dontReport = append(h.dontReport, targets...) }
}

// NewExceptionHandler creates an exception handler.
func NewExceptionHandler(opts ...ExceptionOption) *ExceptionHandler {
	h := &ExceptionHandler{logger: logger.NewNope()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle implements routing.ExceptionHandler.
func (h *ExceptionHandler) Handle(w http.ResponseWriter, r *http.Request, err error) error {
	status := StatusOf(err)
	h.report(r, err, status)

	var verr *validation.Error
	if errors.As(err, &verr) {
		return routing.WriteResponse(w, r, routing.JSON(status, verr))
	}

	if !wantsJSON(r) && h.renderView(w, r, status, err) {
		return nil
	}
	return routing.WriteResponse(w, r, routing.JSON(status, map[string]string{
		"message": h.message(err, status),
	}))
}

// StatusOf returns the HTTP status err should be answered with.
func StatusOf(err error) int {
	var sc auth.StatusCoder
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code >= 400 && code <= 599 {
			return code
		}
	}
	return http.StatusInternalServerError
}

func (h *ExceptionHandler) report(r *http.Request, err error, status int) {
	if status < http.StatusInternalServerError {
		return
	}
	for _, target := range h.dontReport {
		if errors.Is(err, target) {
			return
		}
	}
	attrs := []any{
		slog.Any("error", err),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
	}
	if pe, ok := middlewares.AsPanicError(err); ok && pe.Stack != nil {
		attrs = append(attrs, slog.String("stack", string(pe.Stack)))
	}
	h.logger.ErrorContext(r.Context(), "request failed", attrs...)
}

func (h *ExceptionHandler) message(err error, status int) string {
	if status >= http.StatusInternalServerError && !h.debug {
		if status == http.StatusInternalServerError {
			return "Server Error"
		}
		return http.StatusText(status)
	}
	return err.Error()
}

func (h *ExceptionHandler) renderView(w http.ResponseWriter, r *http.Request, status int, err error) bool {
	if h.views == nil {
		return false
	}
	views, verr := h.views()
	if verr != nil || views == nil {
		return false
	}
	name := "errors/" + strconv.Itoa(status)
	if !views.Exists(name) {
		return false
	}
	v, verr := views.Make(name, map[string]any{
		"Status":  status,
		"Message": h.message(err, status),
	})
	if verr != nil {
		return false
	}
	html, verr := v.HTML()
	if verr != nil {
		h.logger.ErrorContext(r.Context(), "error view failed", slog.Any("error", verr), slog.String("view", name))
		return false
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(html))
	return true
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "json") ||
		r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
		strings.Contains(r.Header.Get("Content-Type"), "json")
}

// Exceptions returns the exception handler shared by both routers.
func (a *Application) Exceptions() *ExceptionHandler {
	return mustMake[*ExceptionHandler](a, ServiceExceptions)
}

func bindExceptions(a *Application) {
	container.ProvideNamed(a.Container, ServiceExceptions, func(container.Resolver) (*ExceptionHandler, error) {
		return NewExceptionHandler(
			WithExceptionLogger(a.Logger()),
			WithDebug(a.Config().Bool("app.debug")),
			WithErrorViews(func() (*view.Factory, error) {
				return container.MakeNamed[*view.Factory](a, ServiceView)
			}),
		), nil
	})
}
