package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// IVSize is the size of the envelope IV: a 4-byte big-endian Unix
	// timestamp followed by 12 random bytes.
	IVSize = 16

	// TagSize is the size of the AES-GCM authentication tag.
	TagSize = 16

	// BodyHeaderSize is the fixed prefix of an AEAD body: sender public key
	// followed by the authentication tag.
	BodyHeaderSize = PublicKeySize + TagSize

	ivTimestampSize = 4
)

// IV is the per-message initialisation vector. The full 16 bytes are used as
// the GCM nonce.
type IV [IVSize]byte

// randReader is the entropy source for IVs; tests replace it to exercise
// RNG failure.
var randReader io.Reader = rand.Reader

// GenerateIV builds an IV from now (rounded to the nearest second) and 12
// bytes from a cryptographically secure source. A failing random source is
// returned as an error; the IV must never be built from partial randomness.
func GenerateIV(now time.Time) (IV, error) {
	var iv IV
	binary.BigEndian.PutUint32(iv[:ivTimestampSize], uint32(now.Round(time.Second).Unix()))
	if _, err := io.ReadFull(randReader, iv[ivTimestampSize:]); err != nil {
		return IV{}, fmt.Errorf("failed to read IV randomness: %w", err)
	}
	return iv, nil
}

// Timestamp returns the Unix time embedded in the first four bytes of the IV.
func (iv IV) Timestamp() time.Time {
	return time.Unix(int64(binary.BigEndian.Uint32(iv[:ivTimestampSize])), 0)
}

// newGCM builds AES-256-GCM with a 16-byte nonce, keyed by the raw shared secret.
func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCMWithNonceSize(block, IVSize)
}

// AEADEncrypt encrypts plaintext for the holder of peerPublicKey.
//
// The result is senderPublicKey(33) || tag(16) || ciphertext. The output is
// deterministic for a given (key pair, peer, iv, plaintext); callers must
// never reuse an IV with the same pair of keys.
func (kp *KeyPair) AEADEncrypt(peerPublicKey []byte, iv IV, plaintext []byte) ([]byte, error) {
	secret, err := kp.SharedSecret(peerPublicKey)
	if err != nil {
		return nil, err
	}
	defer ZeroBytes(secret)

	gcm, err := newGCM(secret)
	if err != nil {
		return nil, &Error{Op: "encrypt", Err: err}
	}

	// Seal appends the tag after the ciphertext; the body carries it first.
	sealed := gcm.Seal(nil, iv[:], plaintext, nil)
	ctLen := len(sealed) - TagSize

	body := make([]byte, BodyHeaderSize+ctLen)
	copy(body[:PublicKeySize], kp.public[:])
	copy(body[PublicKeySize:BodyHeaderSize], sealed[ctLen:])
	copy(body[BodyHeaderSize:], sealed[:ctLen])

	logrus.WithFields(logrus.Fields{
		"function":       "AEADEncrypt",
		"plaintext_size": len(plaintext),
		"body_size":      len(body),
	}).Debug("Sealed envelope body")

	return body, nil
}
