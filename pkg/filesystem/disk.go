package filesystem

import (
	"context"
	"io"
	"path"
	"slices"
	"strings"
	"time"
)

// Disk is a named storage location.
type Disk interface {
	Exists(ctx context.Context, name string) (bool, error)
	Get(ctx context.Context, name string) ([]byte, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Put(ctx context.Context, name string, r io.Reader, opts ...PutOption) error
	Delete(ctx context.Context, names ...string) error
	Copy(ctx context.Context, from, to string) error
	Move(ctx context.Context, from, to string) error
	Stat(ctx context.Context, name string) (*FileInfo, error)
	Files(ctx context.Context, dir string) ([]string, error)
	URL(ctx context.Context, name string) (string, error)
}

// FileInfo describes a stored file.
type FileInfo struct {
	Name         string
	ContentType  string
	Visibility   Visibility
	Size         int64
	LastModified time.Time
}

// Visibility controls public access to a stored file.
type Visibility string

const (
	Private Visibility = "private"
	Public  Visibility = "public"
)

// PutOption configures Put.
type PutOption func(*putOptions)

type putOptions struct {
	contentType string
	visibility  Visibility
}

// WithContentType sets the stored content type instead of detecting it.
func WithContentType(ct string) PutOption {
	return func(o *putOptions) { o.contentType = ct }
}

// WithVisibility overrides the disk default visibility.
func WithVisibility(v Visibility) PutOption {
	return func(o *putOptions) { o.visibility = v }
}

func applyPut(def Visibility, opts []PutOption) putOptions {
	o := putOptions{visibility: def}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// cleanName normalises a slash separated file name and rejects names
// escaping the disk root.
func cleanName(name string) (string, error) {
	if name == "" || strings.Contains(name, "\\") || slices.Contains(strings.Split(name, "/"), "..") {
		return "", ErrInvalidPath
	}
	clean := strings.TrimPrefix(path.Clean("/"+name), "/")
	if clean == "" {
		return "", ErrInvalidPath
	}
	return clean, nil
}

// cleanDir is cleanName allowing the root, returned as "".
func cleanDir(dir string) (string, error) {
	if strings.Trim(dir, "/.") == "" && !strings.Contains(dir, "..") {
		return "", nil
	}
	return cleanName(dir)
}
