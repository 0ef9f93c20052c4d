package filesystem

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	ErrInvalidConfig = errors.New("filesystem: invalid configuration")
	ErrUnknownDisk   = errors.New("filesystem: unknown disk")
	ErrUnknownDriver = errors.New("filesystem: unknown driver")
	ErrInvalidPath   = errors.New("filesystem: invalid path")
	ErrNotFound      = errors.New("filesystem: file not found")
	ErrAccessDenied  = errors.New("filesystem: access denied")
	ErrEmptyFile     = errors.New("filesystem: file is empty")
	ErrWriteFailed   = errors.New("filesystem: write failed")
	ErrDeleteFailed  = errors.New("filesystem: delete failed")
	ErrPresignFailed = errors.New("filesystem: presign failed")
	ErrNoURL         = errors.New("filesystem: disk has no public url")
)

// wrapS3Error maps S3 API errors onto the package sentinels.
func wrapS3Error(err error, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}
	var notFound *types.NoSuchKey
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", fallback, err)
}
