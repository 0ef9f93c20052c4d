package host

import (
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
)

type restRoute struct {
	namespace string
	pattern   string
	re        *regexp.Regexp
	route     routing.RESTRoute
}

// RESTRouteInfo describes a registered REST route.
type RESTRouteInfo struct {
	Namespace string
	Pattern   string
	Methods   []string
}

// Path returns the route path relative to the REST prefix.
func (i RESTRouteInfo) Path() string {
	if i.Pattern == "" {
		return "/" + i.Namespace
	}
	return "/" + i.Namespace + "/" + i.Pattern
}

// RegisterRESTRoute registers a route matched case-insensitively against
// /{namespace}/{pattern}. Pattern is a regular expression; named groups become
// the callback parameters.
func (h *Host) RegisterRESTRoute(namespace, pattern string, route routing.RESTRoute) error {
	namespace = strings.Trim(namespace, "/")
	pattern = strings.Trim(pattern, "/")
	if namespace == "" {
		return fmt.Errorf("%w: empty namespace", ErrInvalidRoute)
	}
	if route.Callback == nil {
		return fmt.Errorf("%w: [%s/%s]", ErrNoHandler, namespace, pattern)
	}

	expr := "(?i)^/" + namespace
	if pattern != "" {
		expr += "/" + pattern
	}
	re, err := regexp.Compile(expr + "$")
	if err != nil {
		return fmt.Errorf("%w: [%s/%s]: %w", ErrInvalidRoute, namespace, pattern, err)
	}

	methods := make([]string, 0, len(route.Methods))
	for _, m := range route.Methods {
		methods = append(methods, strings.ToUpper(m))
	}
	route.Methods = methods

	h.restMu.Lock()
	h.rest = append(h.rest, &restRoute{namespace: namespace, pattern: pattern, re: re, route: route})
	h.restMu.Unlock()
	return nil
}

// RESTRoutes lists the registered REST routes in registration order.
func (h *Host) RESTRoutes() []RESTRouteInfo {
	h.restMu.RLock()
	defer h.restMu.RUnlock()

	out := make([]RESTRouteInfo, 0, len(h.rest))
	for _, r := range h.rest {
		out = append(out, RESTRouteInfo{
			Namespace: r.namespace,
			Pattern:   r.pattern,
			Methods:   slices.Clone(r.route.Methods),
		})
	}
	return out
}

func (h *Host) serveREST(w http.ResponseWriter, r *http.Request) {
	h.InitREST()

	path := "/" + strings.Trim(strings.TrimPrefix(r.URL.Path, "/"+h.cfg.RestPrefix), "/")

	h.restMu.RLock()
	routes := slices.Clone(h.rest)
	h.restMu.RUnlock()

	pathMatched := false
	for _, rt := range routes {
		m := rt.re.FindStringSubmatch(path)
		if m == nil {
			continue
		}
		pathMatched = true
		if !slices.Contains(rt.route.Methods, r.Method) {
			continue
		}

		if rt.route.Permission != nil && !rt.route.Permission(r) {
			restError(w, http.StatusUnauthorized, "rest_forbidden", "Sorry, you are not allowed to do that.")
			return
		}

		params := make(map[string]string)
		for i, name := range rt.re.SubexpNames() {
			if name != "" && i < len(m) {
				params[name] = m[i]
			}
		}

		if err := rt.route.Callback(w, r, params); err != nil {
			h.logger.ErrorContext(r.Context(), "rest callback failed",
				slog.String("path", path),
				slog.String("method", r.Method),
				slog.Any("error", err),
			)
			restError(w, http.StatusInternalServerError, "internal_server_error", http.StatusText(http.StatusInternalServerError))
		}
		return
	}

	if pathMatched {
		restError(w, http.StatusMethodNotAllowed, "rest_no_route", "No route was found matching the URL and request method.")
		return
	}
	restError(w, http.StatusNotFound, "rest_no_route", "No route was found matching the URL and request method.")
}

// serveRESTIndex lists namespaces and routes.
func (h *Host) serveRESTIndex(w http.ResponseWriter, r *http.Request) {
	h.InitREST()

	routes := h.RESTRoutes()
	seen := map[string]bool{}
	namespaces := []string{}
	index := make(map[string][]string, len(routes))
	for _, rt := range routes {
		if !seen[rt.Namespace] {
			seen[rt.Namespace] = true
			namespaces = append(namespaces, rt.Namespace)
		}
		p := rt.Path()
		index[p] = append(index[p], rt.Methods...)
	}
	sort.Strings(namespaces)

	writeJSON(w, http.StatusOK, map[string]any{
		"namespaces": namespaces,
		"routes":     index,
	})
}

func restError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"code":    code,
		"message": message,
		"data":    map[string]int{"status": status},
	})
}
