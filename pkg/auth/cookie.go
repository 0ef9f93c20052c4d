package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CookieJar writes and reads HMAC-signed cookies whose payload carries its
// own expiry, so a copied cookie stops verifying once it expires.
type CookieJar struct {
	secret   []byte
	domain   string
	path     string
	secure   bool
	sameSite http.SameSite
	now      func() time.Time
}

// CookieOption configures a CookieJar.
type CookieOption func(*CookieJar)

// WithCookieDomain sets the cookie domain.
func WithCookieDomain(domain string) CookieOption {
	return func(j *CookieJar) { j.domain = domain }
}

// WithCookiePath sets the cookie path. Defaults to "/".
func WithCookiePath(path string) CookieOption {
	return func(j *CookieJar) { j.path = path }
}

// WithSecureCookies sets the Secure flag.
func WithSecureCookies(secure bool) CookieOption {
	return func(j *CookieJar) { j.secure = secure }
}

// WithSameSite sets the SameSite mode. Defaults to Lax.
func WithSameSite(ss http.SameSite) CookieOption {
	return func(j *CookieJar) { j.sameSite = ss }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CookieOption {
	return func(j *CookieJar) { j.now = now }
}

// NewCookieJar creates a jar signing with secret, which must be at least 32 bytes.
func NewCookieJar(secret string, opts ...CookieOption) (*CookieJar, error) {
	if len(secret) < 32 {
		return nil, ErrNoSecret
	}
	j := &CookieJar{
		secret:   []byte(secret),
		path:     "/",
		sameSite: http.SameSiteLaxMode,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Set writes a signed cookie valid for ttl. A zero ttl makes a session cookie
// whose signature never expires.
func (j *CookieJar) Set(w http.ResponseWriter, name, value string, ttl time.Duration) {
	var expires int64
	maxAge := 0
	if ttl > 0 {
		expires = j.now().Add(ttl).Unix()
		maxAge = int(ttl.Seconds())
	}
	payload := strconv.FormatInt(expires, 10) + "|" + value
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload)) + "." +
		base64.RawURLEncoding.EncodeToString(j.sign(name, payload))

	http.SetCookie(w, j.cookie(name, encoded, maxAge))
}

// Get verifies and returns a cookie value.
func (j *CookieJar) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", ErrCookieNotFound
	}

	rawPayload, rawSig, ok := strings.Cut(c.Value, ".")
	if !ok {
		return "", ErrBadSignature
	}
	payload, err1 := base64.RawURLEncoding.DecodeString(rawPayload)
	sig, err2 := base64.RawURLEncoding.DecodeString(rawSig)
	if err := errors.Join(err1, err2); err != nil {
		return "", ErrBadSignature
	}
	if !hmac.Equal(sig, j.sign(name, string(payload))) {
		return "", ErrBadSignature
	}

	rawExpires, value, ok := strings.Cut(string(payload), "|")
	if !ok {
		return "", ErrBadSignature
	}
	expires, err := strconv.ParseInt(rawExpires, 10, 64)
	if err != nil {
		return "", ErrBadSignature
	}
	if expires > 0 && j.now().Unix() > expires {
		return "", ErrCookieExpired
	}
	return value, nil
}

// Delete expires the cookie.
func (j *CookieJar) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, j.cookie(name, "", -1))
}

// sign binds the signature to the cookie name so values cannot be moved
// between cookies.
func (j *CookieJar) sign(name, payload string) []byte {
	mac := hmac.New(sha256.New, j.secret)
	mac.Write([]byte(name))
	mac.Write([]byte{0})
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}

func (j *CookieJar) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     j.path,
		Domain:   j.domain,
		MaxAge:   maxAge,
		Secure:   j.secure,
		HttpOnly: true,
		SameSite: j.sameSite,
	}
}
