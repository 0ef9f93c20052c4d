package filesystem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// DefaultURLExpiry is the lifetime of presigned URLs of private files.
const DefaultURLExpiry = 15 * time.Minute

// S3Config configures an S3 compatible disk.
type S3Config struct {
	Bucket     string        `mapstructure:"bucket"`
	Key        string        `mapstructure:"key"`
	Secret     string        `mapstructure:"secret"`
	Region     string        `mapstructure:"region"`
	Endpoint   string        `mapstructure:"endpoint"`
	URL        string        `mapstructure:"url"`
	Visibility Visibility    `mapstructure:"visibility"`
	URLExpiry  time.Duration `mapstructure:"url_expiry"`
	PathStyle  bool          `mapstructure:"use_path_style_endpoint"`
}

// S3 stores files in a bucket.
type S3 struct {
	client    *s3.Client
	presigner *s3.PresignClient
	cfg       S3Config
}

// NewS3 creates an S3 disk.
func NewS3(cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" || cfg.Key == "" || cfg.Secret == "" {
		return nil, ErrInvalidConfig
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Visibility == "" {
		cfg.Visibility = Private
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = DefaultURLExpiry
	}

	client := s3.New(s3.Options{}, func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, "")
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		}
	})

	return &S3{client: client, presigner: s3.NewPresignClient(client), cfg: cfg}, nil
}

// Exists reports whether the object exists.
func (d *S3) Exists(ctx context.Context, name string) (bool, error) {
	_, err := d.Stat(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Get downloads the object.
func (d *S3) Get(ctx context.Context, name string) ([]byte, error) {
	body, err := d.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

// Open streams the object.
func (d *S3) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrNotFound)
	}
	return out.Body, nil
}

// Put uploads r. Non seekable readers are buffered because the SDK needs
// to hash the payload.
func (d *S3) Put(ctx context.Context, name string, r io.Reader, opts ...PutOption) error {
	key, err := cleanName(name)
	if err != nil {
		return err
	}
	o := applyPut(d.cfg.Visibility, opts)

	if rs, ok := r.(io.ReadSeeker); ok && o.contentType == "" {
		o.contentType, _ = DetectMIME(rs)
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return errors.Join(ErrWriteFailed, err)
		}
	} else if o.contentType == "" {
		o.contentType, r = DetectMIME(r)
	}
	body, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return errors.Join(ErrWriteFailed, err)
		}
		body = bytes.NewReader(data)
	}

	acl := types.ObjectCannedACLPrivate
	if o.visibility == Public {
		acl = types.ObjectCannedACLPublicRead
	}

	_, err = d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(o.contentType),
		ACL:         acl,
	})
	if err != nil {
		return wrapS3Error(err, ErrWriteFailed)
	}
	return nil
}

// Delete removes the objects.
func (d *S3) Delete(ctx context.Context, names ...string) error {
	var errs error
	for _, name := range names {
		key, err := cleanName(name)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		_, err = d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(d.cfg.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			errs = errors.Join(errs, wrapS3Error(err, ErrDeleteFailed))
		}
	}
	return errs
}

// Copy duplicates the object inside the bucket.
func (d *S3) Copy(ctx context.Context, from, to string) error {
	src, err := cleanName(from)
	if err != nil {
		return err
	}
	dst, err := cleanName(to)
	if err != nil {
		return err
	}
	_, err = d.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(d.cfg.Bucket),
		Key:        aws.String(dst),
		CopySource: aws.String(url.PathEscape(d.cfg.Bucket) + "/" + escapePath(src)),
	})
	if err != nil {
		return wrapS3Error(err, ErrWriteFailed)
	}
	return nil
}

// Move copies then deletes.
func (d *S3) Move(ctx context.Context, from, to string) error {
	if err := d.Copy(ctx, from, to); err != nil {
		return err
	}
	return d.Delete(ctx, from)
}

// Stat reads the object metadata.
func (d *S3) Stat(ctx context.Context, name string) (*FileInfo, error) {
	key, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	out, err := d.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(d.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrNotFound)
	}
	return &FileInfo{
		Name:         key,
		ContentType:  aws.ToString(out.ContentType),
		Visibility:   d.cfg.Visibility,
		Size:         aws.ToInt64(out.ContentLength),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

// Files lists the keys under dir.
func (d *S3) Files(ctx context.Context, dir string) ([]string, error) {
	prefix, err := cleanDir(dir)
	if err != nil {
		return nil, err
	}
	if prefix != "" {
		prefix += "/"
	}

	var keys []string
	pages := s3.NewListObjectsV2Paginator(d.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(d.cfg.Bucket),
		Prefix: aws.String(prefix),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, wrapS3Error(err, ErrNotFound)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// URL returns the public URL of public disks and a presigned URL otherwise.
func (d *S3) URL(ctx context.Context, name string) (string, error) {
	key, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if d.cfg.Visibility == Public {
		return d.publicURL(key), nil
	}
	return d.TemporaryURL(ctx, name, d.cfg.URLExpiry)
}

// TemporaryURL presigns a download URL valid for expiry.
func (d *S3) TemporaryURL(ctx context.Context, name string, expiry time.Duration) (string, error) {
	key, err := cleanName(name)
	if err != nil {
		return "", err
	}
	req, err := d.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.cfg.Bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) { o.Expires = expiry })
	if err != nil {
		return "", wrapS3Error(err, ErrPresignFailed)
	}
	return req.URL, nil
}

func (d *S3) publicURL(key string) string {
	key = escapePath(key)
	switch {
	case d.cfg.URL != "":
		return strings.TrimSuffix(d.cfg.URL, "/") + "/" + key
	case d.cfg.Endpoint != "" && d.cfg.PathStyle:
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(d.cfg.Endpoint, "/"), d.cfg.Bucket, key)
	case d.cfg.Endpoint != "":
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(d.cfg.Endpoint, "/"), key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", d.cfg.Bucket, d.cfg.Region, key)
}
