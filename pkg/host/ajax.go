package host

import (
	"log/slog"
	"net/http"

	"github.com/BenRutlandWeb/atomic-framework/pkg/hooks"
	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
)

// serveAjax dispatches the request to ajax_{action} for logged in users and
// ajax_nopriv_{action} for guests. A listener answers by halting the hook.
func (h *Host) serveAjax(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	if action == "" {
		action = r.PostFormValue("action")
	}
	if action == "" {
		ajaxFail(w)
		return
	}

	hook := routing.AjaxGuestHookPrefix + action
	if h.loggedIn != nil && h.loggedIn(r) {
		hook = routing.AjaxUserHookPrefix + action
	}

	switch res := h.hooks.Apply(hook, w, r); {
	case hooks.IsHalt(res):
	case isError(res):
		h.logger.ErrorContext(r.Context(), "ajax action failed",
			slog.String("action", action),
			slog.Any("error", res),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	default:
		ajaxFail(w)
	}
}

func isError(v any) bool {
	_, ok := v.(error)
	return ok
}

// ajaxFail answers the way an unhandled action does: 400 with body "0".
func ajaxFail(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte("0"))
}
