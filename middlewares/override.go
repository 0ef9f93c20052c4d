package middlewares

import (
	"net/http"
	"strings"
)

// MethodOverrideField and MethodOverrideHeader carry the spoofed method of an
// HTML form post.
const (
	MethodOverrideField  = "_method"
	MethodOverrideHeader = "X-HTTP-Method-Override"
)

var overridable = map[string]bool{
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// MethodOverride is a host middleware letting POST requests act as PUT, PATCH
// or DELETE.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			m := strings.ToUpper(r.Header.Get(MethodOverrideHeader))
			if m == "" {
				m = strings.ToUpper(r.PostFormValue(MethodOverrideField))
			}
			if overridable[m] {
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}
