// Package content registers custom post types, taxonomies and shortcodes.
//
// Labels are generated from the name, so a "book_genre" taxonomy is listed
// as "Book Genres" with "Add New Book Genre" and so on:
//
//	reg := content.NewRegistry()
//	reg.RegisterPostType(content.PostType{
//		Name:       "book",
//		Options:    map[string]any{"public": true},
//		Taxonomies: []content.Taxonomy{{Name: "book_genre"}},
//	})
//
// Shortcodes replace [tag attr="value"]content[/tag] placeholders:
//
//	reg.Shortcodes().Add(content.Shortcode{
//		Tag:      "button",
//		Defaults: map[string]string{"href": "#"},
//		Handler: func(ctx context.Context, sc *content.ShortcodeCall) (string, error) {
//			return `<a href="` + sc.Get("href") + `">` + sc.Content() + `</a>`, nil
//		},
//	})
//	html, err := reg.Shortcodes().Do(ctx, body)
package content
