package crypto

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/sirupsen/logrus"
)

// SharedSecretSize is the size of the raw ECDH secret: the x-coordinate of
// the shared point.
const SharedSecretSize = 32

// parsePublicKey decodes a compressed public key and checks it lies on the curve.
func parsePublicKey(op string, pub []byte) (*secp256k1.PublicKey, error) {
	if len(pub) != PublicKeySize {
		return nil, newError(op, ErrInvalidKey,
			fmt.Sprintf("expected %d-byte compressed key, got %d bytes", PublicKeySize, len(pub)))
	}
	key, err := secp256k1.ParsePubKey(pub)
	if err != nil {
		return nil, newError(op, ErrInvalidKey, err.Error())
	}
	return key, nil
}

// SharedSecret computes the ECDH secret between this key pair and a peer's
// compressed public key. The result is the 32-byte x-coordinate of
// d * peerPublicKey, used directly as AES-256 key material.
func (kp *KeyPair) SharedSecret(peerPublicKey []byte) ([]byte, error) {
	pub, err := parsePublicKey("shared secret", peerPublicKey)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "SharedSecret",
			"error":    err.Error(),
		}).Debug("Rejected peer public key")
		return nil, err
	}

	secret := secp256k1.GenerateSharedSecret(kp.private, pub)

	logrus.WithFields(logrus.Fields{
		"function":        "SharedSecret",
		"peer_key_prefix": fmt.Sprintf("%x", peerPublicKey[:8]),
	}).Debug("Computed shared secret")

	return secret, nil
}
