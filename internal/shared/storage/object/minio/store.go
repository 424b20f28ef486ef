package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"sbom-storage/internal/shared/storage/object"
	"sbom-storage/internal/shared/telemetry"
)

// Options configures the MinIO client.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Store implements object.ObjectStorage on any S3-compatible server through minio-go.
type Store struct {
	client *minio.Client
	bucket string
	region string
}

// New creates a new MinIO storage client. No network call is made until the
// first operation.
func New(opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	mc, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new client: %w", err)
	}

	return &Store{client: mc, bucket: opts.Bucket, region: opts.Region}, nil
}

// Upload buffers the content and puts it at key, replacing any existing object.
func (s *Store) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := object.ValidateKey(key); err != nil {
		return err
	}

	telemetry.Info("storage.upload", map[string]any{"backend": "minio", "bucket": s.bucket, "key": key})

	// A *bytes.Reader lets minio-go seek back and resend the body on retry.
	data, err := object.ReadAll(r, size)
	if err != nil {
		return object.Translate(object.FailureUnknown, s.bucket, key, 0, err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		failure, status := classify(err)
		// A bodyless 404 on PUT is reported as NoSuchKey, but an object write
		// can only miss its bucket.
		if failure == object.FailureObjectNotFound {
			failure = object.FailureBucketNotFound
		}
		return s.fail(key, failure, status, err)
	}

	telemetry.Info("storage.upload.done", map[string]any{"backend": "minio", "bucket": s.bucket, "key": key, "bytes": len(data)})
	return nil
}

// Download returns a stream over the object at key. GetObject is lazy in
// minio-go, so the object is stat'ed first to surface a missing key here
// instead of on the caller's first Read.
func (s *Store) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := object.ValidateKey(key); err != nil {
		return nil, err
	}

	telemetry.Info("storage.download", map[string]any{"backend": "minio", "bucket": s.bucket, "key": key})

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.translate(key, err)
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		failure, status := classify(err)
		if failure == object.FailureObjectNotFound && s.bucketMissing(ctx) {
			failure = object.FailureBucketNotFound
		}
		return nil, s.fail(key, failure, status, err)
	}

	telemetry.Info("storage.download.done", map[string]any{"backend": "minio", "bucket": s.bucket, "key": key, "bytes": info.Size})
	return obj, nil
}

// EnsureBucket creates the bucket if it does not already exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return s.translate("", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return s.translate("", err)
	}
	telemetry.Info("storage.bucket.created", map[string]any{"backend": "minio", "bucket": s.bucket})
	return nil
}

// bucketMissing disambiguates a 404 from Stat. HEAD responses carry no error
// body, so minio-go labels them NoSuchKey unless the server sends
// x-minio-error-code.
func (s *Store) bucketMissing(ctx context.Context) bool {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	return err == nil && !exists
}

func (s *Store) translate(key string, err error) error {
	failure, status := classify(err)
	return s.fail(key, failure, status, err)
}

func (s *Store) fail(key string, failure object.Failure, status int, err error) error {
	telemetry.Error("storage.minio.failed", map[string]any{
		"bucket":  s.bucket,
		"key":     key,
		"failure": failure.String(),
		"status":  status,
		"err":     err,
	})
	return object.Translate(failure, s.bucket, key, status, err)
}

func classify(err error) (object.Failure, int) {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchBucket":
		return object.FailureBucketNotFound, resp.StatusCode
	case "NoSuchKey", "NoSuchObject":
		return object.FailureObjectNotFound, resp.StatusCode
	}
	if resp.StatusCode != 0 {
		return object.FailureFromStatus(resp.StatusCode), resp.StatusCode
	}
	if resp.Code != "" {
		return object.FailureBackend, 0
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return object.FailureUnreachable, 0
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return object.FailureUnreachable, 0
	}
	return object.FailureUnknown, 0
}

var (
	_ object.ObjectStorage     = (*Store)(nil)
	_ object.BucketInitializer = (*Store)(nil)
)
