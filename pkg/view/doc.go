// Package view renders html/template views addressed by dotted names and
// bridges them with templ components.
//
//	views := view.New(os.DirFS("resources/views"), view.WithPartials("layouts/*.html"))
//	v, err := views.Make("emails.welcome", data) // emails/welcome.html
//
// First resolves a candidate list through the view.candidates filter, which
// TemplateRedirect uses to look inside a sub directory before the root.
package view
