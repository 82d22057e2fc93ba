package crypto

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// AEADDecrypt opens an envelope body produced by AEADEncrypt. The body is
// split into senderPublicKey(33) || tag(16) || ciphertext and the shared
// secret is derived from the embedded sender key.
//
// No plaintext is returned unless the tag verifies.
func (kp *KeyPair) AEADDecrypt(iv IV, body []byte) ([]byte, error) {
	if len(body) < BodyHeaderSize {
		return nil, newError("decrypt", ErrMalformedInput,
			fmt.Sprintf("body is %d bytes, need at least %d", len(body), BodyHeaderSize))
	}

	senderKey := body[:PublicKeySize]
	tag := body[PublicKeySize:BodyHeaderSize]
	ciphertext := body[BodyHeaderSize:]

	secret, err := kp.SharedSecret(senderKey)
	if err != nil {
		return nil, err
	}
	defer ZeroBytes(secret)

	gcm, err := newGCM(secret)
	if err != nil {
		return nil, &Error{Op: "decrypt", Err: err}
	}

	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, iv[:], sealed, nil)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":   "AEADDecrypt",
			"body_size":  len(body),
			"sender_key": fmt.Sprintf("%x", senderKey[:8]),
		}).Debug("Authentication tag mismatch")
		return nil, newError("decrypt", ErrAuthentication, "")
	}

	return plaintext, nil
}
