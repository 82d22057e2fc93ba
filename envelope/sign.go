package envelope

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/kadseal/crypto"
)

// Keys added to a message's security fields by Sign.
const (
	NonceField     = "nonce"
	SignatureField = "signature"
)

// Message is the shape the signature hooks operate on. SecurityFields returns
// the request parameters for a request and the result for a response; the
// hooks read and write the nonce and signature keys of that map in place, so
// it must be non-nil.
type Message interface {
	MessageID() string
	SecurityFields() map[string]interface{}
}

// SignFunc stamps msg with a nonce and signature before it is serialized.
type SignFunc func(msg Message, dest Contact, done Completion) error

// VerifyFunc checks the nonce and signature of a received msg against the
// source contact's public key.
type VerifyFunc func(msg Message, source Contact, done Completion) error

// contract is the signed data: the message id followed by the decimal nonce.
func contract(id string, nonce int64) []byte {
	return []byte(id + strconv.FormatInt(nonce, 10))
}

// Sign returns the pre-serialize hook. The nonce is the current time in
// milliseconds; the signature is the lowercase hex DER encoding of an ECDSA
// signature over the contract.
func Sign(kp *crypto.KeyPair, opts *Options) SignFunc {
	return func(msg Message, dest Contact, done Completion) error {
		fields := securityFields(msg)
		if fields == nil {
			return complete(done, newError("sign", peerName(dest), ErrMalformedInput))
		}

		nonce := opts.now().UnixMilli()
		sig, err := kp.SignContract(contract(msg.MessageID(), nonce))
		if err != nil {
			return complete(done, newError("sign", peerName(dest), err))
		}

		fields[NonceField] = nonce
		fields[SignatureField] = hex.EncodeToString(sig)

		opts.logger("Sign").WithFields(logrus.Fields{
			"message_id": msg.MessageID(),
			"nonce":      nonce,
		}).Debug("Message signed")

		return complete(done, nil)
	}
}

// Verify returns the post-receive hook. A message is rejected as expired when
// now > nonce+W. There is no lower bound: a nonce dated in the future is
// accepted, unlike the symmetric window Decrypt applies to envelopes.
//
// Verification only needs the source's public key, so kp may be nil.
func Verify(kp *crypto.KeyPair, opts *Options) VerifyFunc {
	return func(msg Message, source Contact, done Completion) error {
		log := opts.logger("Verify")
		peer := peerName(source)

		fields := securityFields(msg)
		if fields == nil || source == nil {
			return complete(done, newError("verify", peer, ErrMalformedInput))
		}

		nonce, ok := nonceValue(fields[NonceField])
		if !ok {
			return complete(done, newError("verify", peer, fmt.Errorf("%w: missing nonce", ErrMalformedInput)))
		}
		sigHex, ok := fields[SignatureField].(string)
		if !ok {
			return complete(done, newError("verify", peer, fmt.Errorf("%w: missing signature", ErrMalformedInput)))
		}
		sig, err := hex.DecodeString(sigHex)
		if err != nil {
			return complete(done, newError("verify", peer, fmt.Errorf("%w: signature is not hex", ErrMalformedInput)))
		}

		if opts.now().UnixMilli() > nonce+opts.window().Milliseconds() {
			log.WithFields(logrus.Fields{
				"peer":  peer,
				"nonce": nonce,
			}).Debug("Message nonce expired")
			return complete(done, newError("verify", peer, ErrExpiredMessage))
		}

		valid, err := kp.VerifyContract(contract(msg.MessageID(), nonce), source.PublicKey(), sig)
		if err != nil {
			return complete(done, newError("verify", peer, err))
		}
		if !valid {
			log.WithFields(logrus.Fields{
				"peer":       peer,
				"message_id": msg.MessageID(),
			}).Debug("Signature rejected")
			return complete(done, newError("verify", peer, ErrSignatureInvalid))
		}

		return complete(done, nil)
	}
}

func securityFields(msg Message) map[string]interface{} {
	if msg == nil {
		return nil
	}
	return msg.SecurityFields()
}

// nonceValue accepts the integer forms a nonce takes before and after a JSON
// round trip.
func nonceValue(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}
