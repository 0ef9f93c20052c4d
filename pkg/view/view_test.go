package view_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenRutlandWeb/atomic-framework/pkg/events"
	"github.com/BenRutlandWeb/atomic-framework/pkg/hooks"
	"github.com/BenRutlandWeb/atomic-framework/pkg/view"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":          {Data: []byte(`root {{.}}`)},
		"views/index.html":    {Data: []byte("\n  views {{.}}")},
		"emails/welcome.html": {Data: []byte(`{{template "header" .}}Hi {{.Name}}`)},
		"layouts/header.html": {Data: []byte(`{{define "header"}}[{{.App}}] {{end}}`)},
		"forms/edit.html":     {Data: []byte(`<form>{{method_field "put"}}</form>`)},
		"icons/check.svg":     {Data: []byte(`<svg id="check"></svg>`)},
		"broken.html":         {Data: []byte(`{{ .Missing `)},
		"icon.html":           {Data: []byte(`{{svg "icons/check"}}`)},
	}
}

func TestMake(t *testing.T) {
	t.Parallel()

	views := view.New(testFS(), view.WithPartials("layouts/*.html"), view.WithCache(true))

	v, err := views.Make("emails.welcome", map[string]string{"Name": "Ann", "App": "Atomic"})
	require.NoError(t, err)
	assert.Equal(t, "emails.welcome", v.Name())
	assert.Equal(t, "[Atomic] Hi Ann", v.String())

	again, err := views.Make("emails.welcome", map[string]string{"Name": "Bob", "App": "Atomic"})
	require.NoError(t, err)
	assert.Equal(t, "[Atomic] Hi Bob", again.String())

	_, err = views.Make("emails.missing", nil)
	require.ErrorIs(t, err, view.ErrViewNotFound)

	_, err = views.Make("broken", nil)
	require.ErrorIs(t, err, view.ErrParse)
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	views := view.New(testFS())

	form, err := views.Make("forms.edit", nil)
	require.NoError(t, err)
	assert.Equal(t, `<form><input type="hidden" name="_method" value="PUT"></form>`, form.String())

	icon, err := views.Make("icon", nil)
	require.NoError(t, err)
	assert.Equal(t, `<svg id="check"></svg>`, icon.String())

	assert.Empty(t, view.MethodField("get"))
	assert.Empty(t, view.SVG(testFS(), "icons/missing"))
	assert.Equal(t, "emails/welcome", view.NormalizeName("emails.welcome"))
}

func TestFirstWithTemplateRedirect(t *testing.T) {
	t.Parallel()

	filter := events.NewFilter(events.NewDispatcher(hooks.New()))
	require.NoError(t, view.NewTemplateRedirect("views").Register(filter))

	views := view.New(testFS(), view.WithFilters(filter))

	v, err := views.First([]string{"single", "index"}, "x")
	require.NoError(t, err)
	assert.Equal(t, "views.index", v.Name())

	html, err := v.HTML()
	require.NoError(t, err)
	assert.Equal(t, "views x", string(html))

	_, err = views.First([]string{"nothing"}, nil)
	require.ErrorIs(t, err, view.ErrViewNotFound)
}

func TestFirstWithoutFilters(t *testing.T) {
	t.Parallel()

	v, err := view.New(testFS()).First([]string{"single", "index"}, "x")
	require.NoError(t, err)
	assert.Equal(t, "index", v.Name())
}

func TestTemplateRedirectFilter(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"resources.views.page", "page", "resources.views.index", "index"},
		view.NewTemplateRedirect("/resources/views/").Filter([]string{"page", "index"}))
	assert.Equal(t, []string{"page"}, view.NewTemplateRedirect("").Filter([]string{"page"}))
}

func TestTemplInterop(t *testing.T) {
	t.Parallel()

	views := view.New(testFS())
	v, err := views.Make("index", "y")
	require.NoError(t, err)

	var c templ.Component = v
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	assert.Equal(t, "root y", buf.String())

	badge := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<b>new</b>")
		return err
	})
	html, err := view.Component(context.Background(), badge)
	require.NoError(t, err)
	assert.Equal(t, "<b>new</b>", string(html))

	var out strings.Builder
	require.NoError(t, views.Render(context.Background(), &out, "index", "z"))
	assert.Equal(t, "root z", out.String())
}
