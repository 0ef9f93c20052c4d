package routing

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BenRutlandWeb/atomic-framework/pkg/hooks"
)

// Hook name prefixes the host fires for AJAX actions, for guests and for
// signed-in users respectively.
const (
	AjaxGuestHookPrefix = "ajax_nopriv_"
	AjaxUserHookPrefix  = "ajax_"
)

// Listener is the part of the event dispatcher the AJAX router uses.
type Listener interface {
	ListenAll(events []string, listener any, priority ...int) error
}

// AjaxRouter defines routes served through the host's AJAX endpoint. A route
// URI is the AJAX action name.
type AjaxRouter struct {
	*Router
}

// NewAjaxRouter creates an AJAX router.
func NewAjaxRouter(opts ...Option) *AjaxRouter {
	a := &AjaxRouter{Router: NewRouter(opts...)}
	a.routeURL = a.ajaxURL
	return a
}

// AjaxHooks returns the hook names an action is served on.
func AjaxHooks(action string) []string {
	return []string{AjaxGuestHookPrefix + action, AjaxUserHookPrefix + action}
}

// Dispatch listens on the AJAX hooks of every route.
//
// The listener receives the response writer as the filtered value and the
// request as argument. When the request method is not one of the route's
// methods the writer is passed through untouched; otherwise the route runs,
// the response is written and hooks.Halt is returned. Errors the exception
// handler could not handle are returned as the filtered value.
func (a *AjaxRouter) Dispatch(l Listener) error {
	var errs []error
	for route := range a.routes.Each() {
		stages, err := a.GatherRouteMiddleware(route)
		if err != nil {
			errs = append(errs, fmt.Errorf("ajax route [%s]: %w", route.URI(), err))
			continue
		}
		if err := l.ListenAll(AjaxHooks(route.URI()), a.listener(route, stages)); err != nil {
			errs = append(errs, fmt.Errorf("ajax route [%s]: %w", route.URI(), err))
		}
	}
	a.logger.Debug("ajax routes dispatched", slog.Int("count", a.routes.Len()))
	return errors.Join(errs...)
}

func (a *AjaxRouter) listener(route *Route, stages []Middleware) func(http.ResponseWriter, *http.Request) any {
	return func(w http.ResponseWriter, hr *http.Request) any {
		if !route.AllowsMethod(hr.Method) {
			return w
		}

		rw := NewResponseWriter(w)
		req, err := a.newRequest(rw, hr)
		if err != nil {
			return a.halt(a.handleException(rw, hr, err))
		}

		res, err := a.RunRoute(route, req, stages)
		if err != nil {
			return a.halt(a.handleException(req.Response(), req.Request(), err))
		}
		if rw.Written() {
			return hooks.Halt
		}
		return a.halt(WriteResponse(req.Response(), req.Request(), res))
	}
}

func (a *AjaxRouter) halt(err error) any {
	if err != nil {
		return err
	}
	return hooks.Halt
}

func (a *AjaxRouter) ajaxURL(route *Route) string {
	action := strings.Trim(route.URI(), "/")
	if a.url == nil {
		return "/?action=" + action
	}
	return a.url.Ajax(action)
}
