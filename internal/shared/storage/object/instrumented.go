package object

import (
	"context"
	"io"
	"time"

	"sbom-storage/internal/shared/metrics"
)

// Instrumented decorates an ObjectStorage with Prometheus metrics.
type Instrumented struct {
	next    ObjectStorage
	backend string
}

// Instrument wraps next so every call is counted and timed under backend.
func Instrument(next ObjectStorage, backend string) *Instrumented {
	return &Instrumented{next: next, backend: backend}
}

func (s *Instrumented) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	counter := &countingReader{r: r}
	start := time.Now()
	err := s.next.Upload(ctx, key, counter, size, contentType)
	metrics.ObserveStorageOperation(s.backend, OpUpload, outcome(err), time.Since(start))
	if err == nil {
		metrics.AddUploadBytes(s.backend, counter.n)
	}
	return err
}

func (s *Instrumented) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	start := time.Now()
	rc, err := s.next.Download(ctx, key)
	metrics.ObserveStorageOperation(s.backend, OpDownload, outcome(err), time.Since(start))
	return rc, err
}

// EnsureBucket forwards to the wrapped store when it supports bucket creation.
func (s *Instrumented) EnsureBucket(ctx context.Context) error {
	if init, ok := s.next.(BucketInitializer); ok {
		return init.EnsureBucket(ctx)
	}
	return nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	kind, _ := KindOf(err)
	return kind.String()
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	if c.r == nil {
		return 0, io.EOF
	}
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

var (
	_ ObjectStorage     = (*Instrumented)(nil)
	_ BucketInitializer = (*Instrumented)(nil)
)
