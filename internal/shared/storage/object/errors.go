package object

import (
	"errors"
	"fmt"
)

// Kind enumerates the storage failure modes exposed to callers.
type Kind int

const (
	// KindStorage is the catch-all storage failure.
	KindStorage Kind = iota
	KindKeyInvalid
	KindFileNotFound
	KindAccessDenied
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindKeyInvalid:
		return "key_invalid"
	case KindFileNotFound:
		return "file_not_found"
	case KindAccessDenied:
		return "access_denied"
	case KindUnavailable:
		return "unavailable"
	default:
		return "storage_error"
	}
}

// Error is the backend-independent storage error. Backend types never leak
// through it; the underlying failure is kept as Err for diagnostics only.
type Error struct {
	Kind       Kind
	Message    string
	Key        string
	Bucket     string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrFileNotFound)
// works regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrStorage      = &Error{Kind: KindStorage, Message: "storage error"}
	ErrKeyInvalid   = &Error{Kind: KindKeyInvalid, Message: "invalid storage key"}
	ErrFileNotFound = &Error{Kind: KindFileNotFound, Message: "file not found"}
	ErrAccessDenied = &Error{Kind: KindAccessDenied, Message: "access denied"}
	ErrUnavailable  = &Error{Kind: KindUnavailable, Message: "storage unavailable"}
)

// KindOf reports the taxonomy kind carried anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return KindStorage, false
}

func newError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}
