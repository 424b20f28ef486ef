package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"sbom-storage/internal/shared/storage/object"
	"sbom-storage/internal/shared/telemetry"
)

const defaultRegion = "us-east-1"

// API is the subset of the S3 client used by Store.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// Options configures the S3 client. Endpoint targets S3-compatible services
// such as MinIO; leave it empty for AWS.
type Options struct {
	Region       string
	Bucket       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// Store implements object.ObjectStorage using Amazon S3.
type Store struct {
	client API
	bucket string
	region string
}

// New creates a new S3-backed object store.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(opts.Region)
	if region == "" {
		region = defaultRegion
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return NewWithClient(client, opts.Bucket, region), nil
}

// NewWithClient builds a Store around an existing client.
func NewWithClient(client API, bucket, region string) *Store {
	return &Store{client: client, bucket: bucket, region: region}
}

// Upload buffers the content and writes it to bucket/key, replacing any
// existing object.
func (s *Store) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := object.ValidateKey(key); err != nil {
		return err
	}

	telemetry.Info("storage.upload", map[string]any{"backend": "s3", "bucket": s.bucket, "key": key})

	// The SDK retryer rewinds seekable bodies only; a raw stream fails on retry.
	data, err := object.ReadAll(r, size)
	if err != nil {
		return object.Translate(object.FailureUnknown, s.bucket, key, 0, err)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return s.translate(key, err)
	}

	telemetry.Info("storage.upload.done", map[string]any{"backend": "s3", "bucket": s.bucket, "key": key, "bytes": len(data)})
	return nil
}

// Download opens the object at key. The caller must close the returned body.
func (s *Store) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := object.ValidateKey(key); err != nil {
		return nil, err
	}

	telemetry.Info("storage.download", map[string]any{"backend": "s3", "bucket": s.bucket, "key": key})

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.translate(key, err)
	}

	telemetry.Info("storage.download.done", map[string]any{"backend": "s3", "bucket": s.bucket, "key": key, "bytes": aws.ToInt64(out.ContentLength)})
	return out.Body, nil
}

// EnsureBucket creates the configured bucket when it does not exist yet.
func (s *Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	if !isMissingBucket(err) {
		return s.translate("", err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	if s.region != "" && s.region != defaultRegion {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(s.region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		return s.translate("", err)
	}
	telemetry.Info("storage.bucket.created", map[string]any{"backend": "s3", "bucket": s.bucket})
	return nil
}

func (s *Store) translate(key string, err error) error {
	failure, status := classify(err)
	telemetry.Error("storage.s3.failed", map[string]any{
		"bucket":  s.bucket,
		"key":     key,
		"failure": failure.String(),
		"status":  status,
		"err":     err,
	})
	return object.Translate(failure, s.bucket, key, status, err)
}

// classify reduces an SDK error to a backend-neutral failure and the HTTP
// status the service answered with, if any.
func classify(err error) (object.Failure, int) {
	var noBucket *s3types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return object.FailureBucketNotFound, http.StatusNotFound
	}
	var noKey *s3types.NoSuchKey
	if errors.As(err, &noKey) {
		return object.FailureObjectNotFound, http.StatusNotFound
	}

	status := 0
	var respErr interface{ HTTPStatusCode() int }
	if errors.As(err, &respErr) {
		status = respErr.HTTPStatusCode()
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			return object.FailureBucketNotFound, status
		case "NoSuchKey":
			return object.FailureObjectNotFound, status
		}
	}

	if status != 0 {
		return object.FailureFromStatus(status), status
	}
	if apiErr != nil {
		return object.FailureBackend, 0
	}

	var sendErr *smithyhttp.RequestSendError
	if errors.As(err, &sendErr) {
		return object.FailureUnreachable, 0
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return object.FailureUnreachable, 0
	}
	return object.FailureUnknown, 0
}

func isMissingBucket(err error) bool {
	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	failure, status := classify(err)
	return failure == object.FailureBucketNotFound || status == http.StatusNotFound
}

var (
	_ object.ObjectStorage     = (*Store)(nil)
	_ object.BucketInitializer = (*Store)(nil)
)
