package view

import (
	"html/template"
	"io/fs"
	"net/http"
	"strings"
)

// MethodField renders the hidden _method input used to spoof PUT, PATCH and
// DELETE from HTML forms.
func MethodField(method string) template.HTML {
	method = strings.ToUpper(method)
	switch method {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return ""
	}
	return template.HTML(`<input type="hidden" name="_method" value="` + method + `">`)
}

// SVG inlines the svg file name (without extension) from fsys. Missing files
// render nothing.
func SVG(fsys fs.FS, name string) template.HTML {
	if fsys == nil {
		return ""
	}
	b, err := fs.ReadFile(fsys, strings.TrimPrefix(strings.TrimSuffix(name, ".svg"), "/")+".svg")
	if err != nil {
		return ""
	}
	return template.HTML(b)
}
