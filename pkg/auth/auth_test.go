package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenRutlandWeb/atomic-framework/pkg/auth"
	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
)

const secret = "0123456789abcdef0123456789abcdef"

type testUser struct{ id string }

func (u testUser) AuthID() string { return u.id }

type users map[string]testUser

func (u users) RetrieveByID(_ context.Context, id string) (auth.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, errors.New("missing")
}

func (u users) RetrieveByLogin(_ context.Context, login string) (auth.User, string, error) {
	if user, ok := u[login]; ok {
		return user, "hash:secret", nil
	}
	return nil, "", errors.New("missing")
}

type plainChecker struct{}

func (plainChecker) Check(value, hash string) bool { return "hash:"+value == hash }

// replay builds a new request carrying the cookies set on rec.
func replay(t *testing.T, rec *httptest.ResponseRecorder, r *http.Request) *request.Request {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			r.AddCookie(c)
		}
	}
	return request.FromHTTP(httptest.NewRecorder(), r)
}

func TestCookieJar(t *testing.T) {
	t.Parallel()

	t.Run("short secret", func(t *testing.T) {
		t.Parallel()
		_, err := auth.NewCookieJar("short")
		require.ErrorIs(t, err, auth.ErrNoSecret)
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		jar, err := auth.NewCookieJar(secret)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		jar.Set(rec, "name", "value|with|pipes", time.Hour)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(rec.Result().Cookies()[0])
		v, err := jar.Get(r, "name")
		require.NoError(t, err)
		assert.Equal(t, "value|with|pipes", v)
	})

	t.Run("tampered", func(t *testing.T) {
		t.Parallel()
		jar, err := auth.NewCookieJar(secret)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		jar.Set(rec, "name", "1", 0)
		c := rec.Result().Cookies()[0]

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "other", Value: c.Value})
		_, err = jar.Get(r, "other")
		require.ErrorIs(t, err, auth.ErrBadSignature)

		r = httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "name", Value: "x" + c.Value})
		_, err = jar.Get(r, "name")
		require.ErrorIs(t, err, auth.ErrBadSignature)

		_, err = jar.Get(httptest.NewRequest(http.MethodGet, "/", nil), "name")
		require.ErrorIs(t, err, auth.ErrCookieNotFound)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		now := time.Now()
		jar, err := auth.NewCookieJar(secret, auth.WithClock(func() time.Time { return now }))
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		jar.Set(rec, "name", "v", time.Minute)

		now = now.Add(2 * time.Minute)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(rec.Result().Cookies()[0])
		_, err = jar.Get(r, "name")
		require.ErrorIs(t, err, auth.ErrCookieExpired)
	})
}

func TestGuard(t *testing.T) {
	t.Parallel()

	provider := users{"7": {id: "7"}, "ann@example.com": {id: "7"}}

	newGuard := func(t *testing.T) *auth.Guard {
		jar, err := auth.NewCookieJar(secret)
		require.NoError(t, err)
		return auth.NewGuard(jar, provider, auth.WithPasswordChecker(plainChecker{}))
	}

	t.Run("guest", func(t *testing.T) {
		t.Parallel()
		g := newGuard(t)
		req := request.FromHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		assert.False(t, g.Check(req))
		assert.True(t, g.Guest(req))
		assert.Empty(t, g.ID(req))

		var authErr *auth.AuthenticationError
		err := g.Authenticate(req)
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode())
		assert.Equal(t, "Unauthenticated.", err.Error())
	})

	t.Run("login persists across requests", func(t *testing.T) {
		t.Parallel()
		g := newGuard(t)
		rec := httptest.NewRecorder()
		req := request.FromHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		g.Login(req, testUser{id: "7"}, true)
		assert.True(t, g.Check(req))

		next := replay(t, rec, httptest.NewRequest(http.MethodGet, "/", nil))
		g.Install(next)
		assert.Equal(t, "7", g.ID(next))
		assert.Equal(t, testUser{id: "7"}, next.User())
		require.NoError(t, g.Authenticate(next))
	})

	t.Run("logout", func(t *testing.T) {
		t.Parallel()
		g := newGuard(t)
		rec := httptest.NewRecorder()
		req := request.FromHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		g.Login(req, testUser{id: "7"}, false)

		next := replay(t, rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.True(t, g.Check(next))
		g.Logout(next)
		assert.False(t, g.Check(next))
		assert.Empty(t, g.ID(next))
	})

	t.Run("signed in reads the cookie only", func(t *testing.T) {
		t.Parallel()
		g := newGuard(t)
		rec := httptest.NewRecorder()
		req := request.FromHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.False(t, g.SignedIn(req.Request()))

		g.Login(req, testUser{id: "99"}, false)
		next := replay(t, rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.True(t, g.SignedIn(next.Request()))

		forged := httptest.NewRequest(http.MethodGet, "/", nil)
		forged.AddCookie(&http.Cookie{Name: auth.DefaultCookieName, Value: "99"})
		assert.False(t, g.SignedIn(forged))
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		g := newGuard(t)
		rec := httptest.NewRecorder()
		req := request.FromHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		g.Login(req, testUser{id: "99"}, false)

		next := replay(t, rec, httptest.NewRequest(http.MethodGet, "/", nil))
		_, err := g.User(next)
		require.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("attempt", func(t *testing.T) {
		t.Parallel()
		g := newGuard(t)
		req := request.FromHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))

		_, err := g.Attempt(req, "ann@example.com", "wrong", false)
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
		_, err = g.Attempt(req, "bob@example.com", "secret", false)
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)

		u, err := g.Attempt(req, "ann@example.com", "secret", false)
		require.NoError(t, err)
		assert.Equal(t, "7", u.AuthID())
		assert.True(t, g.Check(req))
	})
}

func TestCSRF(t *testing.T) {
	t.Parallel()

	newCSRF := func(t *testing.T, now *time.Time) (*auth.CSRF, *auth.Guard) {
		jar, err := auth.NewCookieJar(secret)
		require.NoError(t, err)
		g := auth.NewGuard(jar, users{"7": {id: "7"}})
		c, err := auth.NewCSRF(secret, jar, auth.WithGuard(g),
			auth.WithTokenLifetime(2*time.Hour),
			auth.WithCSRFClock(func() time.Time { return *now }))
		require.NoError(t, err)
		return c, g
	}

	t.Run("guest token round trip through form field", func(t *testing.T) {
		t.Parallel()
		now := time.Unix(1_700_000_000, 0)
		c, _ := newCSRF(t, &now)

		rec := httptest.NewRecorder()
		first := request.FromHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		token := c.Token(first)
		assert.Len(t, token, 24)
		assert.Equal(t, token, c.Token(first))
		assert.Contains(t, string(c.Field(first)), `name="_token" value="`+token+`"`)

		form := url.Values{auth.TokenField: {token}}
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		next := replay(t, rec, r)
		require.NoError(t, c.VerifyRequest(next))
	})

	t.Run("header token and tick window", func(t *testing.T) {
		t.Parallel()
		now := time.Unix(1_700_000_000, 0)
		c, _ := newCSRF(t, &now)

		rec := httptest.NewRecorder()
		token := c.Token(request.FromHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil)))

		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set(auth.TokenHeader, token)
		next := replay(t, rec, r)

		now = now.Add(time.Hour)
		assert.True(t, c.Verify(next, token))

		now = now.Add(3 * time.Hour)
		var mismatch *auth.TokenMismatchError
		require.ErrorAs(t, c.VerifyRequest(next), &mismatch)
		assert.Equal(t, http.StatusUnauthorized, mismatch.StatusCode())
	})

	t.Run("token is bound to the session", func(t *testing.T) {
		t.Parallel()
		now := time.Unix(1_700_000_000, 0)
		c, g := newCSRF(t, &now)

		rec := httptest.NewRecorder()
		req := request.FromHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		g.Login(req, testUser{id: "7"}, false)
		token := c.Token(req)

		other := request.FromHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
		assert.False(t, c.Verify(other, token))
		assert.False(t, c.Verify(other, ""))

		same := replay(t, rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.True(t, c.Verify(same, token))
	})
}
