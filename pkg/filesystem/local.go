package filesystem

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Local stores files in a directory. All access goes through os.Root so
// names cannot escape it.
type Local struct {
	root       *os.Root
	baseURL    string
	visibility Visibility
}

// LocalOption configures a Local disk.
type LocalOption func(*Local)

// WithBaseURL sets the public URL prefix of the directory.
func WithBaseURL(u string) LocalOption {
	return func(l *Local) { l.baseURL = strings.TrimSuffix(u, "/") }
}

// WithLocalVisibility sets the default visibility. Public files are world
// readable.
func WithLocalVisibility(v Visibility) LocalOption {
	return func(l *Local) { l.visibility = v }
}

// NewLocal opens dir, creating it when missing.
func NewLocal(dir string, opts ...LocalOption) (*Local, error) {
	if dir == "" {
		return nil, ErrInvalidConfig
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	l := &Local{root: root, visibility: Public}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Close releases the directory handle.
func (l *Local) Close() error { return l.root.Close() }

// Exists reports whether name exists.
func (l *Local) Exists(_ context.Context, name string) (bool, error) {
	p, err := localPath(name)
	if err != nil {
		return false, err
	}
	if _, err := l.root.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Get reads name.
func (l *Local) Get(_ context.Context, name string) ([]byte, error) {
	p, err := localPath(name)
	if err != nil {
		return nil, err
	}
	b, err := l.root.ReadFile(p)
	if err != nil {
		return nil, localError(err, ErrNotFound)
	}
	return b, nil
}

// Open opens name for reading.
func (l *Local) Open(_ context.Context, name string) (io.ReadCloser, error) {
	p, err := localPath(name)
	if err != nil {
		return nil, err
	}
	f, err := l.root.Open(p)
	if err != nil {
		return nil, localError(err, ErrNotFound)
	}
	return f, nil
}

// Put writes r to name, creating parent directories.
func (l *Local) Put(_ context.Context, name string, r io.Reader, opts ...PutOption) error {
	p, err := localPath(name)
	if err != nil {
		return err
	}
	o := applyPut(l.visibility, opts)

	if dir := filepath.Dir(p); dir != "." {
		if err := l.root.MkdirAll(dir, 0o755); err != nil {
			return errors.Join(ErrWriteFailed, err)
		}
	}

	perm := fs.FileMode(0o600)
	if o.visibility == Public {
		perm = 0o644
	}
	f, err := l.root.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return localError(err, ErrWriteFailed)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return errors.Join(ErrWriteFailed, err)
	}
	if err := f.Chmod(perm); err != nil {
		_ = f.Close()
		return errors.Join(ErrWriteFailed, err)
	}
	return f.Close()
}

// Delete removes names. Missing files are ignored.
func (l *Local) Delete(_ context.Context, names ...string) error {
	var errs error
	for _, name := range names {
		p, err := localPath(name)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		if err := l.root.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = errors.Join(errs, ErrDeleteFailed, err)
		}
	}
	return errs
}

// Copy duplicates from into to.
func (l *Local) Copy(ctx context.Context, from, to string) error {
	src, err := l.Open(ctx, from)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := l.Stat(ctx, from)
	if err != nil {
		return err
	}
	return l.Put(ctx, to, src, WithVisibility(info.Visibility))
}

// Move renames from to to.
func (l *Local) Move(_ context.Context, from, to string) error {
	src, err := localPath(from)
	if err != nil {
		return err
	}
	dst, err := localPath(to)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(dst); dir != "." {
		if err := l.root.MkdirAll(dir, 0o755); err != nil {
			return errors.Join(ErrWriteFailed, err)
		}
	}
	if err := l.root.Rename(src, dst); err != nil {
		return localError(err, ErrWriteFailed)
	}
	return nil
}

// Stat describes name. The content type comes from the extension, or from
// the first bytes when the extension is unknown.
func (l *Local) Stat(ctx context.Context, name string) (*FileInfo, error) {
	p, err := localPath(name)
	if err != nil {
		return nil, err
	}
	fi, err := l.root.Stat(p)
	if err != nil {
		return nil, localError(err, ErrNotFound)
	}
	if fi.IsDir() {
		return nil, ErrNotFound
	}

	ct := mime.TypeByExtension(path.Ext(name))
	if ct == "" {
		if f, err := l.Open(ctx, name); err == nil {
			ct, _ = DetectMIME(f)
			_ = f.Close()
		}
	}

	vis := Private
	if fi.Mode().Perm()&0o044 != 0 {
		vis = Public
	}
	clean, _ := cleanName(name)
	return &FileInfo{
		Name:         clean,
		ContentType:  ct,
		Visibility:   vis,
		Size:         fi.Size(),
		LastModified: fi.ModTime(),
	}, nil
}

// Files lists the files below dir recursively, in lexical order.
func (l *Local) Files(_ context.Context, dir string) ([]string, error) {
	d, err := cleanDir(dir)
	if err != nil {
		return nil, err
	}
	start := "."
	if d != "" {
		start = d
	}

	var files []string
	err = fs.WalkDir(l.root.FS(), start, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return files, nil
}

// URL returns the public URL of name.
func (l *Local) URL(_ context.Context, name string) (string, error) {
	if l.baseURL == "" {
		return "", ErrNoURL
	}
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return l.baseURL + "/" + escapePath(clean), nil
}

func localPath(name string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.FromSlash(clean), nil
}

func localError(err, fallback error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return errors.Join(ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return errors.Join(ErrAccessDenied, err)
	}
	return errors.Join(fallback, err)
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
