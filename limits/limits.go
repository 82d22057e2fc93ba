// Package limits provides the wire size constants of the encrypted envelope
// and the validators the transport applies before sending.
package limits

import (
	"errors"
	"fmt"
)

const (
	// IVSize is the envelope IV: a 4-byte timestamp and 12 random bytes.
	IVSize = 16

	// BodyHeaderSize is the sender public key (33 bytes) plus the GCM tag
	// (16 bytes) that prefix every ciphertext.
	BodyHeaderSize = 33 + 16

	// EnvelopeOverhead is the number of bytes an envelope adds to a payload.
	EnvelopeOverhead = IVSize + BodyHeaderSize

	// MaxDatagramAdvisory is the datagram size above which IP fragmentation
	// becomes likely. Exceeding it is logged, not rejected.
	MaxDatagramAdvisory = 512

	// MaxUDPPayload is the largest payload a single IPv4 UDP datagram can carry.
	MaxUDPPayload = 65507

	// MaxPlaintextPayload is the largest payload that still fits one datagram
	// once sealed.
	MaxPlaintextPayload = MaxUDPPayload - EnvelopeOverhead
)

var (
	// ErrMessageEmpty indicates an empty message was provided
	ErrMessageEmpty = errors.New("empty message")

	// ErrMessageTooLarge indicates message exceeds maximum size
	ErrMessageTooLarge = errors.New("message too large")
)

// ValidateMessageSize validates a message against the specified maximum size.
// Returns an error with context including the actual and maximum sizes.
func ValidateMessageSize(message []byte, maxSize int) error {
	if len(message) == 0 {
		return ErrMessageEmpty
	}
	if len(message) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrMessageTooLarge, len(message), maxSize)
	}
	return nil
}

// ValidatePlaintextPayload checks that a payload is non-empty and fits one
// datagram after sealing.
func ValidatePlaintextPayload(payload []byte) error {
	if len(payload) == 0 {
		return ErrMessageEmpty
	}
	if len(payload) > MaxPlaintextPayload {
		return fmt.Errorf("%w: plaintext size %d exceeds limit %d", ErrMessageTooLarge, len(payload), MaxPlaintextPayload)
	}
	return nil
}

// ValidateDatagram checks a sealed envelope against the UDP payload limit.
func ValidateDatagram(datagram []byte) error {
	return ValidateMessageSize(datagram, MaxUDPPayload)
}

// ExceedsAdvisory reports whether a datagram of size n risks fragmentation.
func ExceedsAdvisory(n int) bool {
	return n > MaxDatagramAdvisory
}

// SealedSize returns the on-wire size of a payload of n bytes.
func SealedSize(n int) int {
	return n + EnvelopeOverhead
}
