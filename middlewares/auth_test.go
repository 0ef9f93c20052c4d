package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenRutlandWeb/atomic-framework/middlewares"
	"github.com/BenRutlandWeb/atomic-framework/pkg/auth"
	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
	"github.com/BenRutlandWeb/atomic-framework/pkg/routing"
)

const secret = "0123456789abcdef0123456789abcdef"

type member string

func (m member) AuthID() string { return string(m) }

type members struct{}

func (members) RetrieveByID(_ context.Context, id string) (auth.User, error) {
	if id == "1" {
		return member(id), nil
	}
	return nil, auth.ErrUserNotFound
}

func (members) RetrieveByLogin(context.Context, string) (auth.User, string, error) {
	return nil, "", auth.ErrUserNotFound
}

func newGuard(t *testing.T) (*auth.Guard, *auth.CookieJar) {
	t.Helper()
	jar, err := auth.NewCookieJar(secret)
	require.NoError(t, err)
	return auth.NewGuard(jar, members{}), jar
}

// carry copies cookies onto r.
func carry(cookies []*http.Cookie, r *http.Request) *request.Request {
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return request.FromHTTP(routing.NewResponseWriter(httptest.NewRecorder()), r)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	guard, _ := newGuard(t)
	mw := middlewares.Authenticate(guard)

	req, _ := newRequest(http.MethodGet, "/me", nil)
	_, err := mw(req, done)
	var authErr *auth.AuthenticationError
	require.ErrorAs(t, err, &authErr)

	rec := httptest.NewRecorder()
	login := request.FromHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	guard.Login(login, member("1"), false)

	res, err := mw(carry(rec.Result().Cookies(), httptest.NewRequest(http.MethodGet, "/me", nil)), done)
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
}

func TestGuest(t *testing.T) {
	t.Parallel()

	guard, _ := newGuard(t)
	mw := middlewares.Guest(guard, "/dashboard")

	req, _ := newRequest(http.MethodGet, "/login", nil)
	res, err := mw(req, done)
	require.NoError(t, err)
	assert.Equal(t, "ok", res)

	rec := httptest.NewRecorder()
	login := request.FromHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	guard.Login(login, member("1"), false)

	res, err = mw(carry(rec.Result().Cookies(), httptest.NewRequest(http.MethodGet, "/login", nil)), done)
	require.NoError(t, err)
	assert.Implements(t, (*routing.Responder)(nil), res)
}

func TestVerifyCsrfToken(t *testing.T) {
	t.Parallel()

	guard, jar := newGuard(t)
	csrf, err := auth.NewCSRF(secret, jar, auth.WithGuard(guard))
	require.NoError(t, err)
	mw := middlewares.VerifyCsrfToken(csrf, "webhooks/*", "/ping")

	rec := httptest.NewRecorder()
	token := csrf.Token(request.FromHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	cookies := rec.Result().Cookies()

	tests := []struct {
		name    string
		method  string
		target  string
		token   string
		wantErr bool
	}{
		{name: "safe method", method: http.MethodGet, target: "/posts"},
		{name: "missing token", method: http.MethodPost, target: "/posts", wantErr: true},
		{name: "wrong token", method: http.MethodPost, target: "/posts", token: "nope", wantErr: true},
		{name: "valid token", method: http.MethodPost, target: "/posts", token: token},
		{name: "prefix exception", method: http.MethodPost, target: "/webhooks/stripe"},
		{name: "exact exception", method: http.MethodDelete, target: "/ping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.token != "" {
				r.Header.Set(auth.TokenHeader, tt.token)
			}
			_, err := mw(carry(cookies, r), done)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var mismatch *auth.TokenMismatchError
			assert.True(t, errors.As(err, &mismatch))
		})
	}
}
