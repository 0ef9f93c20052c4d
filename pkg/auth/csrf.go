package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"html/template"
	"strconv"
	"time"

	"github.com/BenRutlandWeb/atomic-framework/pkg/request"
)

const (
	// TokenField is the form field carrying the CSRF token.
	TokenField = "_token"
	// TokenHeader is the header carrying the CSRF token for script requests.
	TokenHeader = "X-CSRF-TOKEN"
	// DefaultCSRFCookieName keeps the session key for guests.
	DefaultCSRFCookieName = "atomic_csrf"
)

type sessionKey struct{}

// CSRF issues and verifies request forgery tokens. A token is bound to the
// signed-in user id, or to a random key stored in a cookie for guests, and
// to a time tick of half the token lifetime. Tokens from the previous tick
// are still accepted.
type CSRF struct {
	secret     []byte
	jar        *CookieJar
	guard      *Guard
	cookieName string
	lifetime   time.Duration
	now        func() time.Time
}

// CSRFOption configures CSRF.
type CSRFOption func(*CSRF)

// WithGuard binds tokens of signed-in users to their id.
func WithGuard(g *Guard) CSRFOption {
	return func(c *CSRF) { c.guard = g }
}

// WithTokenLifetime sets the maximum token age. Defaults to 24 hours.
func WithTokenLifetime(d time.Duration) CSRFOption {
	return func(c *CSRF) {
		if d > 0 {
			c.lifetime = d
		}
	}
}

// WithCSRFClock replaces time.Now, for tests.
func WithCSRFClock(now func() time.Time) CSRFOption {
	return func(c *CSRF) { c.now = now }
}

// NewCSRF creates a token issuer.
func NewCSRF(secret string, jar *CookieJar, opts ...CSRFOption) (*CSRF, error) {
	if len(secret) < 32 {
		return nil, ErrNoSecret
	}
	c := &CSRF{
		secret:     []byte(secret),
		jar:        jar,
		cookieName: DefaultCSRFCookieName,
		lifetime:   24 * time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Token returns the token for the current session. For guests without a
// session cookie one is written to the response.
func (c *CSRF) Token(req *request.Request) string {
	return c.make(c.session(req, true), c.tick())
}

// Verify reports whether token is valid for the current session.
func (c *CSRF) Verify(req *request.Request, token string) bool {
	if token == "" {
		return false
	}
	session := c.session(req, false)
	if session == "" {
		return false
	}
	tick := c.tick()
	for _, t := range []int64{tick, tick - 1} {
		if hmac.Equal([]byte(token), []byte(c.make(session, t))) {
			return true
		}
	}
	return false
}

// VerifyRequest checks the token sent in the _token field or the
// X-CSRF-TOKEN header.
func (c *CSRF) VerifyRequest(req *request.Request) error {
	if c.Verify(req, TokenFromRequest(req)) {
		return nil
	}
	return &TokenMismatchError{}
}

// Field renders a hidden input holding the token.
func (c *CSRF) Field(req *request.Request) template.HTML {
	return template.HTML(`<input type="hidden" name="` + TokenField + `" value="` +
		template.HTMLEscapeString(c.Token(req)) + `">`)
}

// TokenFromRequest reads the token from the input or the headers.
func TokenFromRequest(req *request.Request) string {
	if token := req.String(TokenField); token != "" {
		return token
	}
	if token := req.Header(TokenHeader); token != "" {
		return token
	}
	return req.Header("X-XSRF-TOKEN")
}

func (c *CSRF) session(req *request.Request, create bool) string {
	if c.guard != nil {
		if id := c.guard.ID(req); id != "" {
			return "user:" + id
		}
	}
	if key, ok := req.Attribute(sessionKey{}).(string); ok {
		return key
	}
	if key, err := c.jar.Get(req.Request(), c.cookieName); err == nil && key != "" {
		return "guest:" + key
	}
	if !create {
		return ""
	}

	b := make([]byte, 16)
	_, _ = rand.Read(b)
	raw := hex.EncodeToString(b)
	c.jar.Set(req.Response(), c.cookieName, raw, 0)

	key := "guest:" + raw
	req.SetAttribute(sessionKey{}, key)
	return key
}

func (c *CSRF) tick() int64 {
	half := int64(c.lifetime/time.Second) / 2
	if half < 1 {
		half = 1
	}
	return c.now().Unix()/half + 1
}

func (c *CSRF) make(session string, tick int64) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(strconv.FormatInt(tick, 10)))
	mac.Write([]byte{'|'})
	mac.Write([]byte(session))
	return hex.EncodeToString(mac.Sum(nil))[:24]
}
