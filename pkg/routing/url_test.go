package routing_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
)

func newGenerator(t *testing.T, opts ...routing.URLOption) (*routing.URLGenerator, *routing.Router, *routing.AjaxRouter) {
	t.Helper()

	router := routing.NewRouter(routing.WithNamespace("app/v1"))
	ajax := routing.NewAjaxRouter()
	url := routing.NewURLGenerator(router.Routes(), ajax.Routes(), routing.URLConfig{
		Home:      "https://example.com/",
		AssetRoot: "/dist/",
	}, opts...)
	router.SetURLGenerator(url)
	ajax.SetURLGenerator(url)
	return url, router, ajax
}

func TestRouteURL(t *testing.T) {
	t.Parallel()

	url, router, _ := newGenerator(t)
	router.Get("posts/{id}/{slug?}", ok(nil)).Name("posts.show")
	router.Routes().RefreshNameLookups()

	link, err := url.Route("posts.show", map[string]any{"id": 5, "slug": "hello", "page": 2})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/rest/app/v1/posts/5/hello?page=2", link)

	link, err = url.Route("posts.show", map[string]any{"id": 5}, false)
	require.NoError(t, err)
	assert.Equal(t, "/rest/app/v1/posts/5", link)

	_, err = url.Route("missing", nil)
	assert.ErrorIs(t, err, routing.ErrRouteNotFound)
}

func TestAjaxRouteURL(t *testing.T) {
	t.Parallel()

	url, _, ajax := newGenerator(t)
	ajax.Post("contact_form", ok(nil)).Name("contact")
	ajax.Routes().RefreshNameLookups()

	link, err := url.AjaxRoute("contact", map[string]any{"action": "other", "ref": "footer"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/ajax?action=contact_form&ref=footer", link)

	_, err = url.AjaxRoute("posts.show", nil)
	assert.ErrorIs(t, err, routing.ErrRouteNotFound)
}

func TestNameLookupNeedsRefresh(t *testing.T) {
	t.Parallel()

	url, router, _ := newGenerator(t)
	router.Get("a", ok(nil)).Name("a")

	_, err := url.Route("a", nil)
	require.ErrorIs(t, err, routing.ErrRouteNotFound)

	router.Routes().RefreshNameLookups()
	_, err = url.Route("a", nil)
	assert.NoError(t, err)
}

func TestMergeParametersWithURL(t *testing.T) {
	t.Parallel()

	url, _, _ := newGenerator(t)
	link, rest := url.MergeParametersWithURL("https://x.test/ajax?action=save&{id}", map[string]any{"id": 1, "action": "x", "q": "y"})

	assert.Equal(t, "https://x.test/ajax?action=save&1", link)
	assert.Equal(t, map[string]any{"q": "y"}, rest)
}

func TestSurfaceURLs(t *testing.T) {
	t.Parallel()

	url, _, _ := newGenerator(t)

	assert.Equal(t, "https://example.com", url.Home())
	assert.Equal(t, "https://example.com/about", url.Home("/about/"))
	assert.Equal(t, "https://example.com/admin/options", url.Admin("options"))
	assert.Equal(t, "https://example.com/ajax", url.Ajax())
	assert.Equal(t, "https://example.com/ajax?action=save", url.Ajax("save"))
	assert.Equal(t, "https://example.com/rest/app/v1", url.Rest("app/v1"))
	assert.Equal(t, "https://example.com/theme/dist/app.css", url.Asset("/app.css"))
	assert.Equal(t, "https://example.com/login?redirect_to=%2Faccount", url.Login("/account"))
	assert.Equal(t, "https://example.com/logout", url.Logout())
	assert.Equal(t, "https://example.com/register?redirect_to=%2F", url.Register("/"))
}

func TestMix(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"dist/mix-manifest.json": {Data: []byte(`{"/app.js":"/app.js?id=abc123"}`)},
	}
	url, _, _ := newGenerator(t, routing.WithManifestFS(fsys))

	assert.Equal(t, "https://example.com/theme/dist/app.js?id=abc123", url.Mix("app.js"))
	assert.Equal(t, "https://example.com/theme/dist/other.js", url.Mix("other.js"))

	noManifest, _, _ := newGenerator(t)
	assert.Equal(t, "https://example.com/theme/dist/app.js", noManifest.Mix("/app.js"))
}

func TestIsValidURL(t *testing.T) {
	t.Parallel()

	url, _, _ := newGenerator(t)
	for _, p := range []string{"#top", "//cdn.test/x", "https://a.test", "mailto:a@b.c", "tel:123", "ftp://files.test/x"} {
		assert.True(t, url.IsValidURL(p), p)
	}
	for _, p := range []string{"posts/1", "/posts", "example"} {
		assert.False(t, url.IsValidURL(p), p)
	}
}

func TestCurrentFullPrevious(t *testing.T) {
	t.Parallel()

	url, _, _ := newGenerator(t)
	r := httptest.NewRequest(http.MethodGet, "http://example.com/a?b=c", nil)
	req := request.FromHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "http://example.com/a", url.Current(req))
	assert.Equal(t, "http://example.com/a?b=c", url.Full(req))
	assert.Equal(t, "https://example.com", url.Previous(req))
	assert.Equal(t, "/fallback", url.Previous(req, "/fallback"))

	r.Header.Set("Referer", "https://example.com/from")
	assert.Equal(t, "https://example.com/from", url.Previous(req))
}
