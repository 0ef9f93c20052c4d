package atomic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenRutlandWeb/atomic-framework"
	"github.com/BenRutlandWeb/atomic-framework/pkg/config"
	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
	"github.com/BenRutlandWeb/atomic-framework/pkg/validation"
)

const testKey = "0123456789abcdef0123456789abcdef"

func testConfig(providers ...string) *config.Repository {
	return config.FromMap(map[string]any{
		"app": map[string]any{
			"name":      "Test",
			"url":       "http://blog.test",
			"key":       testKey,
			"providers": providers,
		},
	})
}

func routes(router *atomic.Router, ajax *atomic.AjaxRouter) error {
	router.Get("posts/{id}", func(r *request.Request) (any, error) {
		return map[string]string{"id": r.Param("id")}, nil
	}).Name("posts.show")

	router.Post("posts", func(r *request.Request) (any, error) {
		data, err := r.Validate(validation.Rules{"title": "required"}, nil)
		if err != nil {
			return nil, err
		}
		return data, nil
	})

	router.Post("echo", func(r *request.Request) (any, error) {
		return map[string]any{"name": r.Input("name"), "empty": r.Input("empty")}, nil
	})

	router.Get("missing", func(*request.Request) (any, error) {
		return nil, atomic.Abort(http.StatusNotFound)
	})

	router.Get("boom", func(*request.Request) (any, error) {
		panic("boom")
	})

	ajax.Post("subscribe", func(r *request.Request) (any, error) {
		return map[string]string{"subscribed": r.String("email")}, nil
	})
	return nil
}

func newApp(t *testing.T) http.Handler {
	t.Helper()
	app := atomic.New(
		atomic.WithConfig(testConfig("validation")),
		atomic.WithRoutes(routes),
	)
	h, err := app.Handler()
	require.NoError(t, err)
	return h
}

func do(h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestNew(t *testing.T) {
	t.Parallel()

	app := atomic.New()
	require.NotNil(t, app)
	assert.NotNil(t, app.Kernel())
	assert.Equal(t, atomic.Version, app.Version())
	assert.True(t, app.Bound(atomic.ServiceRouter))
	assert.True(t, app.Bound(atomic.ServiceEvents))
}

func TestAppServesREST(t *testing.T) {
	t.Parallel()
	h := newApp(t)

	rec := do(h, http.MethodGet, "/rest/api/posts/7", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", decode(t, rec)["id"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(h, http.MethodGet, "/rest/api/nothing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "rest_no_route", decode(t, rec)["code"])
}

func TestAppTrimsAndNullsInput(t *testing.T) {
	t.Parallel()
	h := newApp(t)

	rec := do(h, http.MethodPost, "/rest/api/echo", url.Values{"name": {"  Ben  "}, "empty": {""}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Ben", body["name"])
	assert.Nil(t, body["empty"])
}

func TestAppValidationFailure(t *testing.T) {
	t.Parallel()
	h := newApp(t)

	rec := do(h, http.MethodPost, "/rest/api/posts", url.Values{"title": {""}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs, ok := decode(t, rec)["errors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"title is required"}, errs["title"])

	rec = do(h, http.MethodPost, "/rest/api/posts", url.Values{"title": {"Hello"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello", decode(t, rec)["title"])
}

func TestAppErrors(t *testing.T) {
	t.Parallel()
	h := newApp(t)

	rec := do(h, http.MethodGet, "/rest/api/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decode(t, rec)["message"])

	rec = do(h, http.MethodGet, "/rest/api/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Server Error", decode(t, rec)["message"])
}

func TestAppServesAjax(t *testing.T) {
	t.Parallel()
	h := newApp(t)

	rec := do(h, http.MethodPost, "/ajax?action=subscribe", url.Values{"email": {"a@b.com"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@b.com", decode(t, rec)["subscribed"])

	rec = do(h, http.MethodPost, "/ajax?action=unknown", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "0", rec.Body.String())
}

func TestAppURLGeneration(t *testing.T) {
	t.Parallel()

	app := atomic.New(atomic.WithConfig(testConfig()), atomic.WithRoutes(routes))
	require.NoError(t, app.Bootstrap())

	link, err := app.URL().Route("posts.show", map[string]any{"id": 3, "ref": "home"})
	require.NoError(t, err)
	assert.Equal(t, "http://blog.test/rest/api/posts/3?ref=home", link)
}

func TestAppUnknownProvider(t *testing.T) {
	t.Parallel()

	app := atomic.New(atomic.WithConfig(testConfig("nope")))
	err := app.Bootstrap()
	require.ErrorIs(t, err, atomic.ErrUnknownProvider)
	require.ErrorIs(t, err, atomic.ErrBootstrapFailed)
}

func TestAppLoadsConfigFromFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"config/app.yaml":      {Data: []byte("name: Blog\nkey: " + testKey + "\n")},
		"config/services.json": {Data: []byte(`{"mail": {"driver": "array"}}`)},
	}
	app := atomic.New(atomic.WithFS(fsys))
	require.NoError(t, app.Bootstrap())
	assert.Equal(t, "Blog", app.Config().String("app.name"))
	assert.Equal(t, "array", app.Config().String("services.mail.driver"))
}

func TestAppMissingAppConfig(t *testing.T) {
	t.Parallel()

	app := atomic.New(atomic.WithFS(fstest.MapFS{"config/mail.yaml": {Data: []byte("driver: log\n")}}))
	require.ErrorIs(t, app.Bootstrap(), config.ErrMissingAppConfig)
}

func TestAppRunStopsWithContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	app := atomic.New(atomic.WithConfig(config.FromMap(map[string]any{
		"app":  map[string]any{"key": testKey},
		"host": map[string]any{"addr": "127.0.0.1:0"},
	})))
	require.NoError(t, app.Run(ctx))
}
