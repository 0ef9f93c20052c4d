package console_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenRutlandWeb/atomic-framework/pkg/console"
)

func kind(t *testing.T, name string) console.Kind {
	t.Helper()
	k, err := console.KindByName(name)
	require.NoError(t, err)
	return k
}

func TestResolve(t *testing.T) {
	t.Parallel()

	gen := console.NewGenerator("/project")

	target, err := gen.Resolve(kind(t, "controller"), "Admin/PostController")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/project/app/http/controllers/admin/post_controller.go"), target.Path)
	assert.Equal(t, "admin", target.Package)
	assert.Equal(t, "PostController", target.Class)
	assert.Equal(t, "post-controller", target.Name)
	assert.Equal(t, "post_controller", target.Tag)

	target, err = gen.Resolve(kind(t, "cpt"), "book")
	require.NoError(t, err)
	assert.Equal(t, "cpts", target.Package)
	assert.Equal(t, "Book", target.Class)
	assert.Equal(t, "book", target.Name)

	for _, name := range []string{"", "/", "../escape", "9lives", "has space"} {
		_, err := gen.Resolve(kind(t, "rule"), name)
		assert.ErrorIs(t, err, console.ErrInvalidName, name)
	}
}

func TestKindByName(t *testing.T) {
	t.Parallel()

	for _, k := range console.Kinds {
		got, err := console.KindByName(k.Name)
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := console.KindByName("model")
	assert.ErrorIs(t, err, console.ErrUnknownKind)
}

func TestGenerateEveryKind(t *testing.T) {
	t.Parallel()

	// listener and subscriber share app/listeners, so each kind gets its own root.
	for _, k := range console.Kinds {
		gen := console.NewGenerator(t.TempDir())
		path, err := gen.Generate(k, "Sample", false, map[string]string{"public": "true", "hierarchical": "false"})
		require.NoError(t, err, k.Name)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		out := string(data)
		assert.NotContains(t, out, "{{", k.Name)
		assert.Contains(t, out, "Sample", k.Name)
		assert.Contains(t, out, "package ", k.Name)
	}
}

func TestListenerAndSubscriberShareDirectory(t *testing.T) {
	t.Parallel()

	listener, err := console.KindByName("listener")
	require.NoError(t, err)
	subscriber, err := console.KindByName("subscriber")
	require.NoError(t, err)

	gen := console.NewGenerator(t.TempDir())
	_, err = gen.Generate(listener, "SendReceipt", false, nil)
	require.NoError(t, err)
	_, err = gen.Generate(subscriber, "SendReceipt", false, nil)
	require.ErrorIs(t, err, console.ErrAlreadyExists)

	_, err = gen.Generate(subscriber, "OrderEvents", false, nil)
	require.NoError(t, err)
}

func TestGenerateReplacesTokens(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	gen := console.NewGenerator(root)

	path, err := gen.Generate(kind(t, "shortcode"), "PullQuote", false, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "app", "shortcodes", "pull_quote.go"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "package shortcodes")
	assert.Contains(t, string(data), "func PullQuote() content.Shortcode")
	assert.Contains(t, string(data), `Tag:      "pull_quote"`)
}

func TestGenerateExistingFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	gen := console.NewGenerator(root)
	rule := kind(t, "rule")

	path, err := gen.Generate(rule, "Uppercase", false, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("edited"), 0o644))

	_, err = gen.Generate(rule, "Uppercase", false, nil)
	require.ErrorIs(t, err, console.ErrAlreadyExists)
	data, _ := os.ReadFile(path)
	assert.Equal(t, "edited", string(data))

	_, err = gen.Generate(rule, "Uppercase", true, nil)
	require.NoError(t, err)
	data, _ = os.ReadFile(path)
	assert.Contains(t, string(data), "type Uppercase struct{}")
}

func TestGenerateProjectStub(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "stubs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "stubs", "event.stub"), []byte("package {{ package }}\n\n// custom\ntype {{ class }} struct{ ID int }\n"), 0o644))

	path, err := console.NewGenerator(root).Generate(kind(t, "event"), "OrderShipped", false, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package events\n\n// custom\ntype OrderShipped struct{ ID int }\n", string(data))
}
