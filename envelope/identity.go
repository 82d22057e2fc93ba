package envelope

import (
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/kadseal/crypto"
)

// VerifyIdentity checks that c's node id is the one derived from its public
// key. The payload is not inspected; the parameter keeps the signature of a
// post-receive hook.
func VerifyIdentity(payload []byte, c Contact, done Completion) error {
	if c == nil {
		return complete(done, newError("identity", "", ErrMalformedInput))
	}

	derived, err := crypto.DeriveNodeID(c.PublicKey())
	if err != nil {
		return complete(done, newError("identity", c.NodeID().String(), ErrIdentityMismatch))
	}
	if !derived.Equal(c.NodeID()) {
		logrus.WithFields(logrus.Fields{
			"function": "VerifyIdentity",
			"claimed":  c.NodeID().String(),
			"derived":  derived.String(),
		}).Warn("Contact node id does not match public key")
		return complete(done, newError("identity", c.NodeID().String(), ErrIdentityMismatch))
	}

	return complete(done, nil)
}
