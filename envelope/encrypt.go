package envelope

import (
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/kadseal/crypto"
)

// Contact is the peer identity a hook needs. *dht.Contact implements it.
type Contact interface {
	PublicKey() []byte
	NodeID() crypto.NodeID
}

// Completion is invoked once per hook call with the outcome. It may be nil.
type Completion func(error)

// EncryptFunc seals plaintext for dest. On failure the returned bytes are nil
// and nothing must be transmitted.
type EncryptFunc func(plaintext []byte, dest Contact, done Completion) ([]byte, error)

// DecryptFunc opens a wire envelope. On failure the returned bytes are nil and
// the datagram should be dropped.
type DecryptFunc func(wire []byte, done Completion) ([]byte, error)

func complete(done Completion, err error) error {
	if done != nil {
		done(err)
	}
	return err
}

func peerName(c Contact) string {
	if c == nil {
		return ""
	}
	return c.NodeID().String()
}

// Encrypt returns the outbound hook. With a nil kp every call generates an
// ephemeral sender key pair that is wiped once the envelope is built; the
// recipient then learns nothing about the sender from the envelope itself.
//
// The wire form is IV(16) followed by senderPub(33), tag(16) and ciphertext.
func Encrypt(kp *crypto.KeyPair, opts *Options) EncryptFunc {
	return func(plaintext []byte, dest Contact, done Completion) ([]byte, error) {
		log := opts.logger("Encrypt")

		if dest == nil {
			return nil, complete(done, newError("encrypt", "", ErrEncryption))
		}
		peer := peerName(dest)

		sender := kp
		if sender == nil {
			ephemeral, err := crypto.GenerateKeyPair()
			if err != nil {
				return nil, complete(done, newError("encrypt", peer, wrapCause(ErrEncryption, err)))
			}
			defer ephemeral.Wipe()
			sender = ephemeral
		}

		iv, err := crypto.GenerateIV(opts.now())
		if err != nil {
			log.WithError(err, "rng").Error("IV generation failed")
			return nil, complete(done, newError("encrypt", peer, wrapCause(ErrEncryption, err)))
		}

		body, err := sender.AEADEncrypt(dest.PublicKey(), iv, plaintext)
		if err != nil {
			log.WithField("peer", peer).WithError(err, "aead").Debug("Envelope encryption failed")
			return nil, complete(done, newError("encrypt", peer, wrapCause(ErrEncryption, err)))
		}

		wire := make([]byte, 0, crypto.IVSize+len(body))
		wire = append(wire, iv[:]...)
		wire = append(wire, body...)

		log.WithFields(logrus.Fields{
			"peer":      peer,
			"ephemeral": kp == nil,
			"size":      len(wire),
		}).Debug("Envelope sealed")

		complete(done, nil)
		return wire, nil
	}
}

// Decrypt returns the inbound hook bound to the recipient's key pair.
//
// The IV timestamp must lie within [ts-W, ts+W] of the current time, both
// bounds inclusive, compared in milliseconds; otherwise ErrExpiredMessage is
// returned without attempting decryption. Every failure to open the envelope
// is reported as ErrDecryption; the underlying cause is logged at debug level
// only.
func Decrypt(kp *crypto.KeyPair, opts *Options) DecryptFunc {
	return func(wire []byte, done Completion) ([]byte, error) {
		log := opts.logger("Decrypt")

		if len(wire) < crypto.IVSize {
			return nil, complete(done, newError("decrypt", "", ErrMalformedInput))
		}

		var iv crypto.IV
		copy(iv[:], wire[:crypto.IVSize])

		if !withinWindow(iv.Timestamp().UnixMilli(), opts.now().UnixMilli(), opts.window().Milliseconds()) {
			log.WithFields(logrus.Fields{
				"timestamp": iv.Timestamp().Unix(),
				"window":    opts.window().String(),
			}).Debug("Envelope outside replay window")
			return nil, complete(done, newError("decrypt", "", ErrExpiredMessage))
		}

		if kp == nil {
			return nil, complete(done, newError("decrypt", "", ErrDecryption))
		}

		plaintext, err := kp.AEADDecrypt(iv, wire[crypto.IVSize:])
		if err != nil {
			log.WithError(err, "aead").Debug("Envelope rejected")
			return nil, complete(done, newError("decrypt", "", ErrDecryption))
		}

		if cache := opts.nonceCache(); cache != nil && !cache.CheckAndStore(iv) {
			crypto.ZeroBytes(plaintext)
			return nil, complete(done, newError("decrypt", "", ErrExpiredMessage))
		}

		complete(done, nil)
		return plaintext, nil
	}
}

// withinWindow reports whether now lies in [ts-window, ts+window].
func withinWindow(tsMillis, nowMillis, windowMillis int64) bool {
	return nowMillis <= tsMillis+windowMillis && nowMillis >= tsMillis-windowMillis
}
