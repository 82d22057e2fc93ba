package envelope

import (
	"errors"
	"fmt"

	"github.com/opd-ai/kadseal/crypto"
)

var (
	// ErrMalformedInput indicates an envelope or message too short or missing
	// the fields a hook needs. It is the same sentinel the crypto package uses.
	ErrMalformedInput = crypto.ErrMalformedInput

	// ErrEncryption indicates the outbound envelope could not be built, for
	// example because the destination public key is malformed.
	ErrEncryption = errors.New("encryption failed")

	// ErrDecryption indicates the envelope could not be opened. The cause is
	// deliberately not exposed.
	ErrDecryption = errors.New("decryption failed")

	// ErrExpiredMessage indicates a timestamp or nonce outside the replay
	// window, or an envelope already seen by the nonce cache.
	ErrExpiredMessage = errors.New("message time invalid")

	// ErrSignatureInvalid indicates a message signature that does not verify
	// against the source contact's public key.
	ErrSignatureInvalid = errors.New("signature invalid")

	// ErrIdentityMismatch indicates a contact whose node id does not match the
	// id derived from its public key.
	ErrIdentityMismatch = errors.New("node id does not match public key")
)

// Error represents a hook failure with the hook that produced it.
type Error struct {
	Op   string // hook name
	Peer string // node id of the peer, if known
	Err  error  // underlying error
}

func (e *Error) Error() string {
	if e.Peer != "" {
		return fmt.Sprintf("envelope %s %s: %v", e.Op, e.Peer, e.Err)
	}
	return fmt.Sprintf("envelope %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, peer string, err error) *Error {
	return &Error{Op: op, Peer: peer, Err: err}
}

// wrapCause keeps both the hook sentinel and the underlying cause visible to
// errors.Is.
func wrapCause(sentinel, cause error) error {
	return fmt.Errorf("%w: %w", sentinel, cause)
}
