package routing

import (
	"slices"
	"strings"
)

// GroupAttributes are the attributes shared by a group of routes.
type GroupAttributes struct {
	Namespace  string
	Prefix     string
	Name       string
	Middleware []string
}

// MergeGroup merges inner into outer: namespaces and prefixes are trimmed of
// slashes and joined with "/", names are concatenated and middleware lists are
// appended.
func MergeGroup(inner, outer GroupAttributes) GroupAttributes {
	return GroupAttributes{
		Namespace:  joinPath(outer.Namespace, inner.Namespace),
		Prefix:     joinPath(outer.Prefix, inner.Prefix),
		Name:       outer.Name + inner.Name,
		Middleware: append(slices.Clone(outer.Middleware), inner.Middleware...),
	}
}

func joinPath(a, b string) string {
	return strings.Trim(strings.Trim(a, "/")+"/"+strings.Trim(b, "/"), "/")
}
