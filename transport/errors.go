package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrNoKeyPair indicates the local contact has no key pair to decrypt with.
	ErrNoKeyPair = errors.New("local contact has no key pair")

	// ErrClosed indicates the transport has been closed.
	ErrClosed = errors.New("transport closed")
)

// Error represents a transport error with the peer address involved.
type Error struct {
	Op   string // operation that caused the error
	Addr string // address if relevant
	Err  error  // underlying error
}

func (e *Error) Error() string {
	if e.Addr != "" {
		return fmt.Sprintf("transport %s %s: %v", e.Op, e.Addr, e.Err)
	}
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, addr string, err error) *Error {
	return &Error{
		Op:   op,
		Addr: addr,
		Err:  err,
	}
}
