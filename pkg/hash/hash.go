// Package hash hashes and verifies passwords.
//
// Values are keyed with HMAC-SHA256 under the application key and the hex
// digest is hashed with bcrypt, so a hash only verifies under the key that
// made it.
package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyKey is returned by New when no application key is configured.
var ErrEmptyKey = errors.New("hash: application key is empty")

// Hasher hashes values under an application key.
type Hasher struct {
	key  []byte
	cost int
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithCost sets the bcrypt cost. Values outside bcrypt's range are ignored.
func WithCost(cost int) Option {
	return func(h *Hasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// New creates a hasher keyed with key.
func New(key string, opts ...Option) (*Hasher, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	h := &Hasher{key: []byte(key), cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Make hashes value.
func (h *Hasher) Make(value string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(h.mac(value)), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Check reports whether value matches hash. An empty hash never matches.
func (h *Hasher) Check(value, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(h.mac(value))) == nil
}

// NeedsRehash reports whether hash was made with a different cost.
func (h *Hasher) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	return err != nil || cost != h.cost
}

func (h *Hasher) mac(value string) string {
	m := hmac.New(sha256.New, h.key)
	m.Write([]byte(value))
	return hex.EncodeToString(m.Sum(nil))
}
