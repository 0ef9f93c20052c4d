package content

import (
	"fmt"

	"github.com/BenRutlandWeb/atomic-framework/pkg/str"
)

// Labels are the admin strings of a post type or taxonomy.
type Labels map[string]string

// Singular returns the title cased name: "book_genre" becomes "Book Genre".
func Singular(name string) string {
	return str.Title(name)
}

// Plural returns the plural title cased name: "book_genre" becomes
// "Book Genres".
func Plural(name string) string {
	return str.Plural(str.Title(name))
}

// PostTypeLabels generates the labels of a post type.
func PostTypeLabels(name string) Labels {
	p, s := Plural(name), Singular(name)
	return Labels{
		"name":                  p,
		"singular_name":         s,
		"all_items":             "All " + p,
		"archives":              s + " Archives",
		"attributes":            s + " Attributes",
		"insert_into_item":      "Insert into " + s,
		"uploaded_to_this_item": "Uploaded to this " + s,
		"filter_items_list":     fmt.Sprintf("Filter %s list", p),
		"items_list_navigation": p + " list navigation",
		"items_list":            p + " list",
		"new_item":              "New " + s,
		"add_new":               "Add New",
		"add_new_item":          "Add New " + s,
		"edit_item":             "Edit " + s,
		"view_item":             "View " + s,
		"view_items":            "View " + p,
		"search_items":          "Search " + p,
		"not_found":             fmt.Sprintf("No %s found", p),
		"not_found_in_trash":    fmt.Sprintf("No %s found in trash", p),
		"parent_item_colon":     "Parent " + s + ":",
		"menu_name":             p,
	}
}

// TaxonomyLabels generates the labels of a taxonomy.
func TaxonomyLabels(name string) Labels {
	p, s := Plural(name), Singular(name)
	return Labels{
		"name":                       p,
		"singular_name":              s,
		"search_items":               "Search " + p,
		"popular_items":              "Popular " + p,
		"all_items":                  "All " + p,
		"parent_item":                "Parent " + s,
		"parent_item_colon":          "Parent " + s + ":",
		"edit_item":                  "Edit " + s,
		"view_item":                  "View " + s,
		"update_item":                "Update " + s,
		"add_new_item":               "Add New " + s,
		"new_item_name":              fmt.Sprintf("New %s Name", s),
		"separate_items_with_commas": fmt.Sprintf("Separate %s with commas", p),
		"add_or_remove_items":        "Add or remove " + p,
		"choose_from_most_used":      "Choose from the most used " + p,
		"not_found":                  fmt.Sprintf("No %s found", p),
		"no_terms":                   "No " + p,
		"items_list_navigation":      p + " list navigation",
		"items_list":                 p + " list",
		"most_used":                  "Most Used",
		"back_to_items":              "← Go to " + p,
	}
}
