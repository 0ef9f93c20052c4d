package filesystem

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/BenRutlandWeb/atomic-framework/pkg/validation"
)

// FileRule checks an uploaded file and returns a failure message, or "".
type FileRule func(fh *multipart.FileHeader, contentType string) string

// MaxSize rejects files larger than n bytes.
func MaxSize(n int64) FileRule {
	return func(fh *multipart.FileHeader, _ string) string {
		if fh.Size > n {
			return fmt.Sprintf(":attribute may not be greater than %d bytes", n)
		}
		return ""
	}
}

// AllowedTypes accepts only content types matching patterns such as "image/*".
func AllowedTypes(patterns ...string) FileRule {
	return func(_ *multipart.FileHeader, ct string) string {
		if !MatchesMIME(ct, patterns...) {
			return fmt.Sprintf(":attribute must be a file of type %s", strings.Join(patterns, ", "))
		}
		return ""
	}
}

// ImageOnly accepts images.
func ImageOnly() FileRule { return AllowedTypes("image/*") }

// PutFile stores an uploaded file in dir under a random name keeping the
// sniffed extension and returns the stored name. Rule failures are returned
// as a *validation.Error for field.
func PutFile(ctx context.Context, disk Disk, field string, fh *multipart.FileHeader, dir string, rules ...FileRule) (string, error) {
	if fh == nil || fh.Size == 0 {
		return "", ErrEmptyFile
	}

	f, err := fh.Open()
	if err != nil {
		return "", errors.Join(ErrWriteFailed, err)
	}
	defer f.Close()

	ct, body := DetectMIME(f)

	var failures validation.FieldErrors
	for _, rule := range rules {
		if msg := rule(fh, ct); msg != "" {
			failures = append(failures, validation.FieldError{
				Field:   field,
				Rule:    "file",
				Message: strings.ReplaceAll(msg, ":attribute", field),
			})
		}
	}
	if len(failures) > 0 {
		return "", &validation.Error{Fields: failures}
	}

	ext := ExtFromMIME(ct)
	if ext == "" {
		ext = path.Ext(fh.Filename)
	}
	d, err := cleanDir(dir)
	if err != nil {
		return "", err
	}
	name := path.Join(d, uuid.NewString()+ext)

	if err := disk.Put(ctx, name, body, WithContentType(ct)); err != nil {
		return "", err
	}
	return name, nil
}

