package crypto

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/sirupsen/logrus"
)

const (
	// PrivateKeySize is the size of a secp256k1 private scalar in bytes.
	PrivateKeySize = secp256k1.PrivKeyBytesLen

	// PublicKeySize is the size of a compressed secp256k1 public key in bytes.
	PublicKeySize = secp256k1.PubKeyBytesLenCompressed
)

// KeyPair is a secp256k1 identity key pair. The public key is always derived
// from the private scalar and cannot be set independently.
//
// A KeyPair is immutable after construction and safe for concurrent use,
// except for Wipe which must only be called once no other goroutine uses it.
type KeyPair struct {
	private *secp256k1.PrivateKey
	public  [PublicKeySize]byte
}

// GenerateKeyPair creates a key pair from a fresh random scalar.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	return newKeyPair(priv), nil
}

// FromPrivateKey creates a key pair from an existing 32-byte private scalar.
// The scalar must lie in [1, n-1] where n is the curve order.
func FromPrivateKey(scalar []byte) (*KeyPair, error) {
	if len(scalar) != PrivateKeySize {
		return nil, newError("load private key", ErrInvalidKey,
			fmt.Sprintf("expected %d bytes, got %d", PrivateKeySize, len(scalar)))
	}

	var d secp256k1.ModNScalar
	if overflow := d.SetByteSlice(scalar); overflow {
		return nil, newError("load private key", ErrInvalidKey, "scalar exceeds curve order")
	}
	if d.IsZero() {
		return nil, newError("load private key", ErrInvalidKey, "scalar is zero")
	}

	return newKeyPair(secp256k1.NewPrivateKey(&d)), nil
}

// FromPrivateKeyHex is FromPrivateKey for a hex-encoded scalar.
func FromPrivateKeyHex(s string) (*KeyPair, error) {
	scalar, err := hex.DecodeString(s)
	if err != nil {
		return nil, newError("load private key", ErrInvalidKey, "not hex")
	}
	defer ZeroBytes(scalar)
	return FromPrivateKey(scalar)
}

func newKeyPair(priv *secp256k1.PrivateKey) *KeyPair {
	kp := &KeyPair{private: priv}
	copy(kp.public[:], priv.PubKey().SerializeCompressed())

	logrus.WithFields(logrus.Fields{
		"function":   "newKeyPair",
		"public_key": fmt.Sprintf("%x", kp.public[:8]),
	}).Debug("Key pair ready")

	return kp
}

// PublicKey returns the compressed public key: a parity prefix byte followed
// by the 32-byte x-coordinate.
func (kp *KeyPair) PublicKey() []byte {
	out := make([]byte, PublicKeySize)
	copy(out, kp.public[:])
	return out
}

// PublicKeyHex returns the compressed public key as lowercase hex.
func (kp *KeyPair) PublicKeyHex() string {
	return hex.EncodeToString(kp.public[:])
}

// PrivateKey returns a copy of the 32-byte private scalar. Callers should
// wipe the returned slice once it has been persisted.
func (kp *KeyPair) PrivateKey() []byte {
	return kp.private.Serialize()
}

// NodeID returns the node identifier bound to this key pair's public key.
func (kp *KeyPair) NodeID() NodeID {
	id, _ := DeriveNodeID(kp.public[:])
	return id
}

// Wipe zeroes the private scalar. The key pair is unusable afterwards.
func (kp *KeyPair) Wipe() {
	if kp == nil || kp.private == nil {
		return
	}
	kp.private.Zero()
}
