package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/BenRutlandWeb/atomic-framework/pkg/logger"
	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
)

// DefaultCookieName is the name of the cookie holding the signed user id.
const DefaultCookieName = "atomic_auth"

// User is anything a guard can sign in.
type User interface {
	AuthID() string
}

// UserProvider loads users by the id stored in the auth cookie.
type UserProvider interface {
	RetrieveByID(ctx context.Context, id string) (User, error)
}

// CredentialsProvider is implemented by providers that can look a user up by
// login name and return the stored password hash.
type CredentialsProvider interface {
	RetrieveByLogin(ctx context.Context, login string) (User, string, error)
}

// PasswordChecker compares a plain password with a stored hash.
type PasswordChecker interface {
	Check(value, hash string) bool
}

type (
	userKey   struct{}
	loggedOut struct{}
)

// Guard authenticates requests from a signed cookie.
type Guard struct {
	jar        *CookieJar
	provider   UserProvider
	hasher     PasswordChecker
	logger     *slog.Logger
	cookieName string
	lifetime   time.Duration
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithCookieName overrides DefaultCookieName.
func WithCookieName(name string) GuardOption {
	return func(g *Guard) { g.cookieName = name }
}

// WithLifetime sets how long a "remember me" login lasts. Defaults to 14 days.
func WithLifetime(d time.Duration) GuardOption {
	return func(g *Guard) { g.lifetime = d }
}

// WithPasswordChecker enables Attempt.
func WithPasswordChecker(h PasswordChecker) GuardOption {
	return func(g *Guard) { g.hasher = h }
}

// WithLogger sets the guard logger.
func WithLogger(l *slog.Logger) GuardOption {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGuard creates a guard.
func NewGuard(jar *CookieJar, provider UserProvider, opts ...GuardOption) *Guard {
	g := &Guard{
		jar:        jar,
		provider:   provider,
		logger:     logger.NewNope(),
		cookieName: DefaultCookieName,
		lifetime:   14 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Install makes req.User() resolve through the guard.
func (g *Guard) Install(req *request.Request) {
	req.SetUserResolver(func(r *request.Request) any {
		u, err := g.User(r)
		if err != nil {
			return nil
		}
		return u
	})
}

// ID returns the signed user id, or "" for guests.
func (g *Guard) ID(req *request.Request) string {
	switch u := req.Attribute(userKey{}).(type) {
	case User:
		return u.AuthID()
	case loggedOut:
		return ""
	}
	id, err := g.jar.Get(req.Request(), g.cookieName)
	if err != nil {
		return ""
	}
	return id
}

// SignedIn reports whether r carries a valid auth cookie, without loading
// the user.
func (g *Guard) SignedIn(r *http.Request) bool {
	id, err := g.jar.Get(r, g.cookieName)
	return err == nil && id != ""
}

// User returns the current user. The result is memoised on the request.
func (g *Guard) User(req *request.Request) (User, error) {
	switch u := req.Attribute(userKey{}).(type) {
	case User:
		return u, nil
	case loggedOut:
		return nil, ErrUserNotFound
	}

	id := g.ID(req)
	if id == "" {
		return nil, ErrUserNotFound
	}
	u, err := g.provider.RetrieveByID(req.Context(), id)
	if err != nil {
		return nil, errors.Join(ErrUserNotFound, err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	req.SetAttribute(userKey{}, u)
	return u, nil
}

// Check reports whether the request carries a valid user.
func (g *Guard) Check(req *request.Request) bool {
	_, err := g.User(req)
	return err == nil
}

// Guest is the negation of Check.
func (g *Guard) Guest(req *request.Request) bool {
	return !g.Check(req)
}

// Login signs the user in. Without remember the cookie lasts for the
// browser session.
func (g *Guard) Login(req *request.Request, u User, remember bool) {
	var ttl time.Duration
	if remember {
		ttl = g.lifetime
	}
	g.jar.Set(req.Response(), g.cookieName, u.AuthID(), ttl)
	req.SetAttribute(userKey{}, u)
	g.logger.InfoContext(req.Context(), "user signed in", slog.String("user_id", u.AuthID()))
}

// Attempt validates credentials and signs the user in on success.
func (g *Guard) Attempt(req *request.Request, login, password string, remember bool) (User, error) {
	cp, ok := g.provider.(CredentialsProvider)
	if !ok || g.hasher == nil {
		return nil, ErrNoCredentials
	}

	u, hash, err := cp.RetrieveByLogin(req.Context(), login)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !g.hasher.Check(password, hash) {
		return nil, ErrInvalidCredentials
	}

	g.Login(req, u, remember)
	return u, nil
}

// Logout removes the auth cookie.
func (g *Guard) Logout(req *request.Request) {
	g.jar.Delete(req.Response(), g.cookieName)
	req.SetAttribute(userKey{}, loggedOut{})
}

// Authenticate returns an AuthenticationError for guests.
func (g *Guard) Authenticate(req *request.Request) error {
	if g.Check(req) {
		return nil
	}
	return &AuthenticationError{}
}

// StatusCoder is implemented by errors carrying an HTTP status.
type StatusCoder interface {
	StatusCode() int
}

var (
	_ StatusCoder = (*AuthenticationError)(nil)
	_ StatusCoder = (*TokenMismatchError)(nil)
)
