package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"sbom-storage/internal/shared/storage/object"
	"sbom-storage/internal/shared/telemetry"
)

// Store implements ObjectStorage using the local filesystem. The bucket is a
// directory under baseDir; keys map to relative paths inside it.
type Store struct {
	root   string
	bucket string
}

// New creates a new local object store rooted at baseDir/bucket.
func New(baseDir, bucket string) *Store {
	return &Store{root: filepath.Join(baseDir, bucket), bucket: bucket}
}

// Upload writes the reader to disk at key, truncating any existing file.
func (s *Store) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := object.ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return object.Translate(object.FailureUnknown, s.bucket, key, 0, err)
	}
	if err := s.checkBucket(key); err != nil {
		return err
	}

	data, err := object.ReadAll(r, size)
	if err != nil {
		return object.Translate(object.FailureUnknown, s.bucket, key, 0, err)
	}

	fullPath := s.path(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return s.translate(key, fmt.Errorf("mkdir: %w", err))
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return s.translate(key, fmt.Errorf("write file: %w", err))
	}

	telemetry.Info("storage.upload.done", map[string]any{
		"backend":      "local",
		"bucket":       s.bucket,
		"key":          key,
		"bytes":        len(data),
		"content_type": contentType,
	})
	return nil
}

// Download opens a stored object for reading.
func (s *Store) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := object.ValidateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, object.Translate(object.FailureUnknown, s.bucket, key, 0, err)
	}
	if err := s.checkBucket(key); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path(key))
	if err != nil {
		return nil, s.translate(key, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, s.translate(key, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, object.Translate(object.FailureObjectNotFound, s.bucket, key, 0, fs.ErrNotExist)
	}
	return f, nil
}

// EnsureBucket creates the bucket directory.
func (s *Store) EnsureBucket(context.Context) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return s.translate("", fmt.Errorf("mkdir: %w", err))
	}
	return nil
}

func (s *Store) checkBucket(key string) error {
	info, err := os.Stat(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return object.Translate(object.FailureBucketNotFound, s.bucket, key, 0, err)
		}
		return s.translate(key, err)
	}
	if !info.IsDir() {
		return object.Translate(object.FailureBucketNotFound, s.bucket, key, 0, fmt.Errorf("%s is not a directory", s.root))
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *Store) translate(key string, err error) error {
	failure := object.FailureUnknown
	switch {
	case errors.Is(err, fs.ErrNotExist):
		failure = object.FailureObjectNotFound
	case errors.Is(err, fs.ErrPermission):
		failure = object.FailureForbidden
	}
	return object.Translate(failure, s.bucket, key, 0, err)
}

var (
	_ object.ObjectStorage     = (*Store)(nil)
	_ object.BucketInitializer = (*Store)(nil)
)
