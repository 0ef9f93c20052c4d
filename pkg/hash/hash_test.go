package hash_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/BenRutlandWeb/atomic-framework/pkg/hash"
)

func TestMakeAndCheck(t *testing.T) {
	t.Parallel()

	h, err := hash.New("app-key", hash.WithCost(bcrypt.MinCost))
	require.NoError(t, err)

	hashed, err := h.Make("secret")
	require.NoError(t, err)

	assert.True(t, h.Check("secret", hashed))
	assert.False(t, h.Check("wrong", hashed))
	assert.False(t, h.Check("secret", ""))
	assert.False(t, h.NeedsRehash(hashed))

	other, err := hash.New("other-key", hash.WithCost(bcrypt.MinCost))
	require.NoError(t, err)
	assert.False(t, other.Check("secret", hashed), "hashes are bound to the key")
}

func TestNeedsRehash(t *testing.T) {
	t.Parallel()

	low, err := hash.New("k", hash.WithCost(bcrypt.MinCost))
	require.NoError(t, err)
	hashed, err := low.Make("v")
	require.NoError(t, err)

	high, err := hash.New("k", hash.WithCost(bcrypt.MinCost+1))
	require.NoError(t, err)
	assert.True(t, high.NeedsRehash(hashed))
	assert.True(t, high.NeedsRehash("not-a-hash"))
}

func TestNewRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := hash.New("")
	assert.ErrorIs(t, err, hash.ErrEmptyKey)
}
