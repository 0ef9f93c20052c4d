package cpts

import (
	"github.com/BenRutlandWeb/atomic-framework/pkg/content"
)

// Book is the book post type.
func Book() content.PostType {
	return content.PostType{
		Name: "book",
		Options: map[string]any{
			"public":       true,
			"show_in_rest": true,
			"has_archive":  true,
			"menu_icon":    "dashicons-book",
			"supports":     []string{"title", "editor", "thumbnail"},
		},
		Taxonomies: []content.Taxonomy{
			{Name: "genre", Options: map[string]any{"hierarchical": true}},
		},
	}
}
