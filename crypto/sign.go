package crypto

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	sha256 "github.com/minio/sha256-simd"
)

// SignContract produces a DER-encoded ECDSA signature over SHA-256(data).
// Nonces are derived deterministically per RFC 6979.
func (kp *KeyPair) SignContract(data []byte) ([]byte, error) {
	if kp == nil || kp.private == nil {
		return nil, newError("sign", ErrInvalidKey, "nil key pair")
	}
	digest := sha256.Sum256(data)
	return ecdsa.Sign(kp.private, digest[:]).Serialize(), nil
}

// VerifyContract checks a DER signature over SHA-256(data) against the
// signer's compressed public key. A well-formed signature that does not match
// yields false with a nil error; only undecodable signature or key bytes
// produce ErrMalformedInput.
func (kp *KeyPair) VerifyContract(data, peerPublicKey, signature []byte) (bool, error) {
	pub, err := parsePublicKey("verify", peerPublicKey)
	if err != nil {
		return false, newError("verify", ErrMalformedInput, "undecodable public key")
	}

	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false, newError("verify", ErrMalformedInput, "undecodable signature")
	}

	digest := sha256.Sum256(data)
	return sig.Verify(digest[:], pub), nil
}
