package config_test

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenRutlandWeb/atomic-framework/pkg/config"
)

func TestLoadDir(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"app.yaml":              {Data: []byte("name: Shop\ndebug: true\nproviders:\n  - events\n  - mail\n")},
		"mail.json":             {Data: []byte(`{"from":{"address":"shop@example.com","name":"Shop"}}`)},
		"services/payment.toml": {Data: []byte("timeout = \"1m30s\"\nretries = 3\n")},
		"README.md":             {Data: []byte("ignored")},
	}

	cfg := config.New()
	require.NoError(t, cfg.LoadDir(fsys))

	assert.Equal(t, "Shop", cfg.String("app.name"))
	assert.True(t, cfg.Bool("app.debug"))
	assert.Equal(t, []string{"events", "mail"}, cfg.StringSlice("app.providers"))
	assert.Equal(t, "shop@example.com", cfg.String("mail.from.address"))
	assert.Equal(t, 90*time.Second, cfg.Duration("services.payment.timeout"))
	assert.Equal(t, 3, cfg.Int("services.payment.retries"))
	assert.False(t, cfg.Has("readme"))
}

func TestLoadDirRequiresApp(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"mail.yaml": {Data: []byte("driver: log\n")}}
	assert.ErrorIs(t, config.New().LoadDir(fsys), config.ErrMissingAppConfig)
}

func TestLoadDirInvalidFile(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"app.json": {Data: []byte(`{"name":`)}}
	assert.ErrorIs(t, config.New().LoadDir(fsys), config.ErrInvalidFile)
}

func TestDefaultsAndSet(t *testing.T) {
	t.Parallel()

	cfg := config.FromMap(map[string]any{"app": map[string]any{"name": "Atomic"}})

	assert.Equal(t, "fallback", cfg.String("app.missing", "fallback"))
	assert.Equal(t, 8080, cfg.Int("server.port", 8080))

	cfg.SetDefault("server.port", 9000)
	assert.Equal(t, 9000, cfg.Int("server.port", 8080))

	cfg.Set("app.name", "Renamed")
	assert.Equal(t, "Renamed", cfg.String("app.name"))
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("ATOMIC_APP_NAME", "FromEnv")

	cfg := config.FromMap(map[string]any{"app": map[string]any{"name": "FromFile"}})
	assert.Equal(t, "FromEnv", cfg.String("app.name"))
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	cfg := config.FromMap(map[string]any{
		"mail": map[string]any{"from": map[string]any{"address": "a@b.c", "name": "A"}},
	})

	var from struct {
		Address string `mapstructure:"address"`
		Name    string `mapstructure:"name"`
	}
	require.NoError(t, cfg.Unmarshal("mail.from", &from))
	assert.Equal(t, "a@b.c", from.Address)
	assert.Equal(t, "A", from.Name)
}
