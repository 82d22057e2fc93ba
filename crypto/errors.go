package crypto

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKey indicates malformed or out-of-range key material: a private
	// scalar outside [1, n-1] or a public key that does not decode to a curve point.
	ErrInvalidKey = errors.New("invalid key")

	// ErrMalformedInput indicates undersized or unparseable byte input.
	ErrMalformedInput = errors.New("malformed input")

	// ErrAuthentication indicates the AEAD tag did not verify. Tag mismatch and
	// ciphertext corruption are reported identically.
	ErrAuthentication = errors.New("message authentication failed")
)

// Error records the operation that failed along with its cause.
type Error struct {
	Op  string // operation that caused the error
	Err error  // underlying error
}

func (e *Error) Error() string {
	return fmt.Sprintf("crypto %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError wraps err with the operation name. Extra detail, if any, is
// attached to the sentinel so errors.Is keeps working.
func newError(op string, sentinel error, detail string) *Error {
	if detail == "" {
		return &Error{Op: op, Err: sentinel}
	}
	return &Error{Op: op, Err: fmt.Errorf("%w: %s", sentinel, detail)}
}
