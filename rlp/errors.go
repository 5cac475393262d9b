package rlp

import "fmt"

// MalformedEncodingError is returned by the decoder on truncated input,
// non-minimal length headers, or any other input that isn't valid canonical
// RLP. It is returned as a pointer so callers can match on it with errors.As.
type MalformedEncodingError struct {
	reason string
}

func (e *MalformedEncodingError) Error() string {
	return fmt.Sprintf("rlp: malformed encoding: %s", e.reason)
}

func errf(format string, args ...interface{}) error {
	return &MalformedEncodingError{reason: fmt.Sprintf(format, args...)}
}
