package filesystem_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenRutlandWeb/atomic-framework/pkg/filesystem"
	"github.com/BenRutlandWeb/atomic-framework/pkg/validation"
)

func newLocal(t *testing.T, opts ...filesystem.LocalOption) *filesystem.Local {
	t.Helper()
	d, err := filesystem.NewLocal(t.TempDir(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestLocal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("put get exists", func(t *testing.T) {
		t.Parallel()
		d := newLocal(t)

		require.NoError(t, d.Put(ctx, "docs/readme.txt", strings.NewReader("hello")))

		ok, err := d.Exists(ctx, "docs/readme.txt")
		require.NoError(t, err)
		assert.True(t, ok)

		b, err := d.Get(ctx, "/docs/readme.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", string(b))

		ok, err = d.Exists(ctx, "docs/missing.txt")
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = d.Get(ctx, "docs/missing.txt")
		assert.ErrorIs(t, err, filesystem.ErrNotFound)
	})

	t.Run("stat", func(t *testing.T) {
		t.Parallel()
		d := newLocal(t)
		require.NoError(t, d.Put(ctx, "a.txt", strings.NewReader("abc")))
		require.NoError(t, d.Put(ctx, "secret", strings.NewReader("<html><body>x</body></html>"), filesystem.WithVisibility(filesystem.Private)))

		info, err := d.Stat(ctx, "a.txt")
		require.NoError(t, err)
		assert.Equal(t, "a.txt", info.Name)
		assert.Equal(t, int64(3), info.Size)
		assert.True(t, strings.HasPrefix(info.ContentType, "text/plain"))
		assert.Equal(t, filesystem.Public, info.Visibility)

		info, err = d.Stat(ctx, "secret")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(info.ContentType, "text/html"))
		assert.Equal(t, filesystem.Private, info.Visibility)
	})

	t.Run("files copy move delete", func(t *testing.T) {
		t.Parallel()
		d := newLocal(t)
		require.NoError(t, d.Put(ctx, "a.txt", strings.NewReader("a")))
		require.NoError(t, d.Put(ctx, "sub/b.txt", strings.NewReader("b")))

		require.NoError(t, d.Copy(ctx, "a.txt", "sub/c.txt"))
		require.NoError(t, d.Move(ctx, "sub/b.txt", "moved/b.txt"))

		files, err := d.Files(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "moved/b.txt", "sub/c.txt"}, files)

		files, err = d.Files(ctx, "sub")
		require.NoError(t, err)
		assert.Equal(t, []string{"sub/c.txt"}, files)

		files, err = d.Files(ctx, "nothing")
		require.NoError(t, err)
		assert.Empty(t, files)

		require.NoError(t, d.Delete(ctx, "a.txt", "sub/c.txt", "never-existed"))
		files, err = d.Files(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"moved/b.txt"}, files)
	})

	t.Run("open streams content", func(t *testing.T) {
		t.Parallel()
		d := newLocal(t)
		require.NoError(t, d.Put(ctx, "stream.bin", bytes.NewReader([]byte{1, 2, 3})))

		rc, err := d.Open(ctx, "stream.bin")
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, b)
	})

	t.Run("rejects escaping paths", func(t *testing.T) {
		t.Parallel()
		d := newLocal(t)
		for _, name := range []string{"", "../etc/passwd", "a/../../b", `a\b`, "/"} {
			err := d.Put(ctx, name, strings.NewReader("x"))
			assert.ErrorIs(t, err, filesystem.ErrInvalidPath, name)
		}
		_, err := d.Files(ctx, "../")
		assert.ErrorIs(t, err, filesystem.ErrInvalidPath)
	})

	t.Run("url", func(t *testing.T) {
		t.Parallel()
		_, err := newLocal(t).URL(ctx, "a.txt")
		require.ErrorIs(t, err, filesystem.ErrNoURL)

		d := newLocal(t, filesystem.WithBaseURL("https://example.com/storage/"))
		u, err := d.URL(ctx, "photos/my cat.png")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/storage/photos/my%20cat.png", u)
	})
}

func TestNewLocalRequiresDir(t *testing.T) {
	t.Parallel()
	_, err := filesystem.NewLocal("")
	require.ErrorIs(t, err, filesystem.ErrInvalidConfig)
}

func TestManager(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	m := filesystem.NewManager(filesystem.Config{
		Disks: map[string]filesystem.DiskConfig{
			"local":  {Driver: "local", Root: filepath.Join(dir, "app")},
			"public": {Driver: "local", Root: filepath.Join(dir, "public"), S3Config: filesystem.S3Config{URL: "/storage"}},
			"broken": {Driver: "ftp"},
		},
	})
	t.Cleanup(func() { _ = m.Close() })

	require.NoError(t, m.Put(ctx, "default.txt", strings.NewReader("via default")))
	local, err := m.Disk("local")
	require.NoError(t, err)
	b, err := local.Get(ctx, "default.txt")
	require.NoError(t, err)
	assert.Equal(t, "via default", string(b))

	again, err := m.Disk()
	require.NoError(t, err)
	assert.Same(t, local, again)

	public, err := m.Disk("public")
	require.NoError(t, err)
	u, err := public.URL(ctx, "logo.svg")
	require.NoError(t, err)
	assert.Equal(t, "/storage/logo.svg", u)

	_, err = m.Disk("missing")
	assert.ErrorIs(t, err, filesystem.ErrUnknownDisk)
	_, err = m.Disk("broken")
	assert.ErrorIs(t, err, filesystem.ErrUnknownDriver)

	assert.Equal(t, []string{"broken", "local", "public"}, m.Names())
}

func TestManagerCustomDriver(t *testing.T) {
	t.Parallel()
	memory := newLocal(t)
	m := filesystem.NewManager(filesystem.Config{
		Default: "mem",
		Disks:   map[string]filesystem.DiskConfig{"mem": {Driver: "memory"}},
	}, filesystem.WithDriver("memory", func(filesystem.DiskConfig) (filesystem.Disk, error) {
		return memory, nil
	}))

	d, err := m.Disk()
	require.NoError(t, err)
	assert.Same(t, memory, d)
}

func TestMIME(t *testing.T) {
	t.Parallel()

	assert.True(t, filesystem.MatchesMIME("image/png", "image/*"))
	assert.True(t, filesystem.MatchesMIME("Text/Plain; charset=utf-8", "text/plain"))
	assert.False(t, filesystem.MatchesMIME("application/pdf", "image/*", "text/plain"))
	assert.False(t, filesystem.MatchesMIME("imagex/png", "image*"))

	assert.Equal(t, ".jpg", filesystem.ExtFromMIME("image/jpeg"))
	assert.Equal(t, ".png", filesystem.ExtFromMIME("image/png; q=1"))
	assert.Empty(t, filesystem.ExtFromMIME("application/x-unknown-thing"))

	png := []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("x", 600))
	ct, r := filesystem.DetectMIME(bytes.NewReader(png))
	assert.Equal(t, "image/png", ct)
	replayed, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, png, replayed)

	ct, _ = filesystem.DetectMIME(strings.NewReader(""))
	assert.Equal(t, "application/octet-stream", ct)
}

func TestNewS3(t *testing.T) {
	t.Parallel()

	_, err := filesystem.NewS3(filesystem.S3Config{Bucket: "b"})
	require.ErrorIs(t, err, filesystem.ErrInvalidConfig)

	ctx := context.Background()
	cases := []struct {
		name string
		cfg  filesystem.S3Config
		want string
	}{
		{"aws", filesystem.S3Config{}, "https://media.s3.eu-west-2.amazonaws.com/a/b%20c.png"},
		{"custom url", filesystem.S3Config{URL: "https://cdn.example.com/"}, "https://cdn.example.com/a/b%20c.png"},
		{"path style", filesystem.S3Config{Endpoint: "http://minio:9000", PathStyle: true}, "http://minio:9000/media/a/b%20c.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := tc.cfg
			cfg.Bucket, cfg.Key, cfg.Secret, cfg.Region = "media", "key", "secret", "eu-west-2"
			cfg.Visibility = filesystem.Public

			d, err := filesystem.NewS3(cfg)
			require.NoError(t, err)
			u, err := d.URL(ctx, "a/b c.png")
			require.NoError(t, err)
			assert.Equal(t, tc.want, u)
		})
	}

	t.Run("private disks presign", func(t *testing.T) {
		t.Parallel()
		d, err := filesystem.NewS3(filesystem.S3Config{Bucket: "media", Key: "key", Secret: "secret"})
		require.NoError(t, err)
		u, err := d.URL(ctx, "private/report.pdf")
		require.NoError(t, err)
		assert.Contains(t, u, "X-Amz-Signature=")
		assert.Contains(t, u, "private/report.pdf")
	})
}

func uploadedFile(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r := httptest.NewRequest(http.MethodPost, "/", &body)
	r.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, r.ParseMultipartForm(1<<20))
	return r.MultipartForm.File[field][0]
}

func TestPutFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	png := []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("p", 100))

	t.Run("stores under a random name", func(t *testing.T) {
		t.Parallel()
		d := newLocal(t)
		fh := uploadedFile(t, "avatar", "me.png", png)

		name, err := filesystem.PutFile(ctx, d, "avatar", fh, "avatars", filesystem.ImageOnly(), filesystem.MaxSize(1024))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(name, "avatars/"))
		assert.True(t, strings.HasSuffix(name, ".png"))
		assert.NotContains(t, name, "me")

		b, err := d.Get(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, png, b)
	})

	t.Run("rule failures are validation errors", func(t *testing.T) {
		t.Parallel()
		d := newLocal(t)
		fh := uploadedFile(t, "avatar", "notes.txt", []byte("plain words"))

		_, err := filesystem.PutFile(ctx, d, "avatar", fh, "", filesystem.ImageOnly(), filesystem.MaxSize(4))
		require.Error(t, err)
		require.True(t, validation.IsValidationError(err))

		fields := validation.ExtractFieldErrors(err)
		assert.Equal(t, []string{
			"avatar must be a file of type image/*",
			"avatar may not be greater than 4 bytes",
		}, fields.Get("avatar"))

		files, err := d.Files(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("empty upload", func(t *testing.T) {
		t.Parallel()
		_, err := filesystem.PutFile(ctx, newLocal(t), "doc", &multipart.FileHeader{}, "")
		assert.ErrorIs(t, err, filesystem.ErrEmptyFile)
	})
}
