package object

import "strings"

// ValidateKey rejects blank keys and keys containing "..". No other
// normalization is applied; filenames are used verbatim.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		e := newError(KindKeyInvalid, nil, "invalid storage key %q: key cannot be empty", key)
		e.Key = key
		return e
	}
	if strings.Contains(key, "..") {
		e := newError(KindKeyInvalid, nil, "invalid storage key %q: path traversal not allowed", key)
		e.Key = key
		return e
	}
	return nil
}
