package object

import (
	"context"
	"io"
)

// ObjectStorage defines the contract every storage backend must satisfy.
//
// Keys are validated by the implementation (see ValidateKey). Upload overwrites
// any object already stored under the same key. The reader returned by Download
// belongs to the caller, who must close it on every path.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}

// BucketInitializer is implemented by backends that can create their bucket on startup.
type BucketInitializer interface {
	EnsureBucket(ctx context.Context) error
}

const (
	OpUpload   = "upload"
	OpDownload = "download"
)
