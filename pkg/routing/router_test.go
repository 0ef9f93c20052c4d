package routing_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenRutlandWeb/atomic-framework/pkg/events"
	"github.com/BenRutlandWeb/atomic-framework/pkg/hooks"
	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
)

type registeredRoute struct {
	namespace string
	pattern   string
	route     routing.RESTRoute
}

type fakeHost struct {
	routes []registeredRoute
}

func (h *fakeHost) RegisterRESTRoute(namespace, pattern string, route routing.RESTRoute) error {
	h.routes = append(h.routes, registeredRoute{namespace: namespace, pattern: pattern, route: route})
	return nil
}

func ok(v any) routing.Action {
	return func(*request.Request) (any, error) { return v, nil }
}

func tagMiddleware(tag string) routing.Middleware {
	return func(r *request.Request, next routing.Next) (any, error) {
		r.Response().Header().Add("X-Trace", tag)
		return next(r)
	}
}

func TestNestedGroups(t *testing.T) {
	t.Parallel()

	router := routing.NewRouter()
	var route *routing.Route
	router.Group(routing.GroupAttributes{Prefix: "/api/", Name: "api.", Namespace: "app", Middleware: []string{"a"}}, func(r *routing.Router) {
		r.Group(routing.GroupAttributes{Prefix: "/users/", Name: "users.", Namespace: "v1", Middleware: []string{"b", "a"}}, func(r *routing.Router) {
			route = r.Get("/{id}/", ok("x")).Name("show").Middleware("c", "b")
		})
	})

	assert.Equal(t, "api/users/{id}", route.URI())
	assert.Equal(t, "api.users.show", route.GetName())
	assert.Equal(t, "app/v1", route.Namespace())
	assert.Equal(t, []string{"a", "b", "a", "c", "b"}, route.MiddlewareNames())
	assert.Equal(t, []string{"a", "b", "c"}, route.GatherMiddleware())
	assert.False(t, router.HasGroupStack())
}

func TestEmptyURIBecomesSlash(t *testing.T) {
	t.Parallel()

	router := routing.NewRouter()
	assert.Equal(t, "/", router.Get("", ok(nil)).URI())
	assert.Equal(t, "/", router.Get("///", ok(nil)).URI())
}

func TestMethods(t *testing.T) {
	t.Parallel()

	router := routing.NewRouter()

	assert.Equal(t, []string{"GET", "HEAD"}, router.Get("a", ok(nil)).Methods())
	assert.Equal(t, []string{"POST"}, router.Post("a", ok(nil)).Methods())
	assert.Equal(t, []string{"GET", "POST", "HEAD"}, router.Match([]string{"get", "post"}, "a", ok(nil)).Methods())
	assert.NotContains(t, router.Match([]string{"PUT", "DELETE"}, "a", ok(nil)).Methods(), "HEAD")
	assert.Len(t, router.Any("a", ok(nil)).Methods(), 7)
}

func TestRegistrar(t *testing.T) {
	t.Parallel()

	router := routing.NewRouter()

	_, err := router.Attribute("domain", "example.com")
	require.ErrorIs(t, err, routing.ErrInvalidAttribute)
	assert.Contains(t, err.Error(), "[domain]")

	reg, err := router.Attribute("prefix", "admin")
	require.NoError(t, err)
	route := reg.Name("admin.").Middleware("auth").Get("dashboard", ok(nil)).Name("dashboard")

	assert.Equal(t, "admin/dashboard", route.URI())
	assert.Equal(t, "admin.dashboard", route.GetName())
	assert.Equal(t, []string{"auth"}, route.GatherMiddleware())

	router.Namespace("shop/v2").Prefix("cart").Group(func(r *routing.Router) {
		route = r.Post("items", ok(nil))
	})
	assert.Equal(t, "shop/v2", route.Namespace())
	assert.Equal(t, "cart/items", route.URI())
}

func TestParseURI(t *testing.T) {
	t.Parallel()

	router := routing.NewRouter()
	tests := map[string]string{
		"posts":              "posts",
		"posts/{id}":         `posts\/?(?P<id>[a-zA-Z0-9-]+)`,
		"posts/{id}/{slug?}": `posts\/?(?P<id>[a-zA-Z0-9-]+)\/?(?P<slug>[a-zA-Z0-9-]+)?`,
		"{id}":               `(?P<id>[a-zA-Z0-9-]+)`,
	}
	for uri, want := range tests {
		assert.Equal(t, want, routing.ParseURI(router.Get(uri, ok(nil))), uri)
	}
}

func TestDispatchRunsMiddlewareAndAction(t *testing.T) {
	t.Parallel()

	router := routing.NewRouter(routing.WithNamespace("app/v1"))
	router.Use(tagMiddleware("global"))
	router.AliasMiddleware("one", tagMiddleware("one"))
	router.AliasParameterizedMiddleware("role", func(args ...string) (routing.Middleware, error) {
		return tagMiddleware("role=" + strings.Join(args, "+")), nil
	})
	router.MiddlewareGroup("web", []string{"one", "role:admin,editor"})
	router.OnRequest(func(r *request.Request) {
		r.SetUserResolver(func(*request.Request) any { return "ann" })
	})

	router.Get("posts/{id}", func(r *request.Request) (any, error) {
		return map[string]any{
			"id":    r.Input("id"),
			"user":  r.User(),
			"route": routing.CurrentRoute(r).GetName(),
		}, nil
	}).Name("posts.show").Middleware("web", "web")

	host := &fakeHost{}
	require.NoError(t, router.Dispatch(host))
	require.Len(t, host.routes, 1)

	reg := host.routes[0]
	assert.Equal(t, "app/v1", reg.namespace)
	assert.Equal(t, `posts\/?(?P<id>[a-zA-Z0-9-]+)`, reg.pattern)
	assert.Equal(t, []string{"GET", "HEAD"}, reg.route.Methods)
	assert.True(t, reg.route.Permission(httptest.NewRequest(http.MethodGet, "/", nil)))

	rec := httptest.NewRecorder()
	err := reg.route.Callback(rec, httptest.NewRequest(http.MethodGet, "/rest/app/v1/posts/7", nil), map[string]string{"id": "7"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"7","user":"ann","route":"posts.show"}`, rec.Body.String())
	assert.Equal(t, []string{"global", "one", "role=admin+editor"}, rec.Header().Values("X-Trace"))
}

func TestDispatchFailsOnUnknownMiddleware(t *testing.T) {
	t.Parallel()

	router := routing.NewRouter()
	router.Get("a", ok(nil)).Middleware("missing")

	err := router.Dispatch(&fakeHost{})
	assert.ErrorIs(t, err, routing.ErrMiddlewareNotFound)
}

func TestMiddlewareShortCircuit(t *testing.T) {
	t.Parallel()

	router := routing.NewRouter()
	called := false
	router.AliasMiddleware("deny", func(*request.Request, routing.Next) (any, error) {
		return routing.Status(http.StatusForbidden, "nope"), nil
	})
	router.Get("a", func(*request.Request) (any, error) {
		called = true
		return nil, nil
	}).Middleware("deny")

	host := &fakeHost{}
	require.NoError(t, router.Dispatch(host))

	rec := httptest.NewRecorder()
	require.NoError(t, host.routes[0].route.Callback(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil))
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "nope", rec.Body.String())
}

type recordingHandler struct {
	handled []error
	handle  bool
}

func (h *recordingHandler) Handle(w http.ResponseWriter, _ *http.Request, err error) error {
	h.handled = append(h.handled, err)
	if !h.handle {
		return err
	}
	w.WriteHeader(http.StatusTeapot)
	return nil
}

func TestMiddlewareAfterGather(t *testing.T) {
	t.Parallel()

	router := routing.NewRouter()
	route := router.Get("posts", ok("x")).Middleware("auth")
	assert.Equal(t, []string{"auth"}, route.GatherMiddleware())

	route.Middleware("throttle", "auth")
	assert.Equal(t, []string{"auth", "throttle"}, route.GatherMiddleware())
}

func TestActionErrorsGoToExceptionHandler(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	handler := &recordingHandler{handle: true}
	router := routing.NewRouter(routing.WithExceptionHandler(handler))
	router.Post("a", func(*request.Request) (any, error) { return nil, boom })

	host := &fakeHost{}
	require.NoError(t, router.Dispatch(host))

	rec := httptest.NewRecorder()
	require.NoError(t, host.routes[0].route.Callback(rec, httptest.NewRequest(http.MethodPost, "/", nil), nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	require.Len(t, handler.handled, 1)
	assert.ErrorIs(t, handler.handled[0], boom)

	handler.handle = false
	err := host.routes[0].route.Callback(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil), nil)
	assert.ErrorIs(t, err, boom)
}

func TestActionErrorsWithoutHandlerReachHost(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	router := routing.NewRouter()
	router.Get("a", func(*request.Request) (any, error) { return nil, boom })

	host := &fakeHost{}
	require.NoError(t, router.Dispatch(host))
	err := host.routes[0].route.Callback(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.ErrorIs(t, err, boom)
}

func TestActionWritingItsOwnResponse(t *testing.T) {
	t.Parallel()

	router := routing.NewRouter()
	router.Get("raw", func(r *request.Request) (any, error) {
		r.Response().WriteHeader(http.StatusAccepted)
		_, err := r.Response().Write([]byte("done"))
		return nil, err
	})

	host := &fakeHost{}
	require.NoError(t, router.Dispatch(host))

	rec := httptest.NewRecorder()
	require.NoError(t, host.routes[0].route.Callback(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}

func TestAjaxRouterDispatch(t *testing.T) {
	t.Parallel()

	table := hooks.New()
	dispatcher := events.NewDispatcher(table)
	ajax := routing.NewAjaxRouter()
	ajax.Post("contact_form", func(r *request.Request) (any, error) {
		return map[string]string{"sent": r.String("email")}, nil
	}).Name("contact")

	require.NoError(t, ajax.Dispatch(dispatcher))
	assert.True(t, table.Has("ajax_contact_form"))
	assert.True(t, table.Has("ajax_nopriv_contact_form"))

	// Wrong method: the writer passes through and nothing is written.
	rec := httptest.NewRecorder()
	get := httptest.NewRequest(http.MethodGet, "/ajax?action=contact_form", nil)
	res := table.Apply("ajax_nopriv_contact_form", http.ResponseWriter(rec), get)
	assert.False(t, hooks.IsHalt(res))
	assert.Empty(t, rec.Body.String())

	rec = httptest.NewRecorder()
	post := httptest.NewRequest(http.MethodPost, "/ajax?action=contact_form", strings.NewReader("email=a%40b.com"))
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	res = table.Apply("ajax_contact_form", http.ResponseWriter(rec), post)

	assert.True(t, hooks.IsHalt(res))
	assert.JSONEq(t, `{"sent":"a@b.com"}`, rec.Body.String())
}

func TestAjaxUnhandledErrorIsReturned(t *testing.T) {
	t.Parallel()

	table := hooks.New()
	ajax := routing.NewAjaxRouter()
	boom := errors.New("boom")
	ajax.Get("fail", func(*request.Request) (any, error) { return nil, boom })
	require.NoError(t, ajax.Dispatch(events.NewDispatcher(table)))

	res := table.Apply("ajax_fail", http.ResponseWriter(httptest.NewRecorder()), httptest.NewRequest(http.MethodGet, "/", nil))
	err, isErr := res.(error)
	require.True(t, isErr)
	assert.ErrorIs(t, err, boom)
}

func TestForm(t *testing.T) {
	t.Parallel()

	router := routing.NewRouter(routing.WithRequestOptions(request.WithValidator(validatorStub{})))
	router.Post("signup", routing.Form(signupForm{}, func(_ *request.Request, data request.Validated) (any, error) {
		return data, nil
	}))

	host := &fakeHost{}
	require.NoError(t, router.Dispatch(host))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.com","extra":1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	require.NoError(t, host.routes[0].route.Callback(rec, req, nil))
	assert.JSONEq(t, `{"email":"a@b.com"}`, rec.Body.String())
}
