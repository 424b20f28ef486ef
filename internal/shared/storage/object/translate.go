package object

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// Failure is the backend-neutral category an adapter assigns to an SDK error
// before it is translated into the taxonomy.
type Failure int

const (
	FailureUnknown Failure = iota
	FailureBackend
	FailureBucketNotFound
	FailureObjectNotFound
	FailureForbidden
	FailureRateLimited
	FailureUnavailable
	FailureUnreachable
)

func (f Failure) String() string {
	switch f {
	case FailureBackend:
		return "backend"
	case FailureBucketNotFound:
		return "bucket_not_found"
	case FailureObjectNotFound:
		return "object_not_found"
	case FailureForbidden:
		return "forbidden"
	case FailureRateLimited:
		return "rate_limited"
	case FailureUnavailable:
		return "unavailable"
	case FailureUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// FailureFromStatus categorizes an HTTP status reported by the backend.
func FailureFromStatus(status int) Failure {
	switch status {
	case http.StatusForbidden:
		return FailureForbidden
	case http.StatusTooManyRequests:
		return FailureRateLimited
	case http.StatusServiceUnavailable:
		return FailureUnavailable
	default:
		return FailureBackend
	}
}

// Translate maps a categorized backend failure to the storage taxonomy. It is
// pure: adapters decide the category, this function decides kind and message.
func Translate(f Failure, bucket, key string, status int, cause error) *Error {
	var e *Error
	switch f {
	case FailureBucketNotFound:
		e = newError(KindStorage, cause, "storage bucket not found: %s", bucket)
	case FailureObjectNotFound:
		e = newError(KindFileNotFound, cause, "file not found: %s", key)
	case FailureForbidden:
		e = newError(KindAccessDenied, cause, "access denied to storage bucket: %s", bucket)
	case FailureRateLimited:
		e = newError(KindUnavailable, cause, "storage rate limit exceeded")
	case FailureUnavailable:
		e = newError(KindUnavailable, cause, "storage unavailable")
	case FailureUnreachable:
		e = newError(KindUnavailable, cause, "unable to connect to storage bucket: %s", bucket)
	case FailureBackend:
		e = newError(KindStorage, cause, "storage error for: %s", key)
	default:
		e = newError(KindStorage, cause, "unexpected error for: %s", key)
	}
	e.Bucket = bucket
	e.Key = key
	e.StatusCode = status
	return e
}

// maxPrealloc bounds how much a declared size may pre-allocate.
const maxPrealloc = 64 << 20

// ReadAll materializes r into memory so the backend client receives a
// seekable body its retryer can rewind. size is a capacity hint; pass -1 when
// unknown. Payloads are expected to be manifest sized.
func ReadAll(r io.Reader, size int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	if size > 0 && size <= maxPrealloc {
		buf.Grow(int(size))
	}
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("read upload content: %w", err)
	}
	return buf.Bytes(), nil
}
