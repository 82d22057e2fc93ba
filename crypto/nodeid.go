package crypto

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	sha256 "github.com/minio/sha256-simd"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // RIPEMD-160 is fixed by the node id format
)

// NodeIDSize is the size of a node identifier in bytes.
const NodeIDSize = ripemd160.Size

// NodeID is the routing identifier of a DHT participant:
// RIPEMD160(SHA256(compressed public key)).
type NodeID [NodeIDSize]byte

// DeriveNodeID computes the node identifier bound to a compressed public key.
// The key must be 33 bytes with an 0x02 or 0x03 prefix.
func DeriveNodeID(publicKey []byte) (NodeID, error) {
	if len(publicKey) != PublicKeySize {
		return NodeID{}, newError("derive node id", ErrMalformedInput,
			fmt.Sprintf("public key is %d bytes, want %d", len(publicKey), PublicKeySize))
	}
	if publicKey[0] != 0x02 && publicKey[0] != 0x03 {
		return NodeID{}, newError("derive node id", ErrMalformedInput, "not a compressed public key")
	}

	pubhash := sha256.Sum256(publicKey)
	ripe := ripemd160.New()
	ripe.Write(pubhash[:])

	var id NodeID
	copy(id[:], ripe.Sum(nil))
	return id, nil
}

// DeriveNodeIDHex is DeriveNodeID for a hex-encoded public key.
func DeriveNodeIDHex(publicKeyHex string) (NodeID, error) {
	pub, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return NodeID{}, newError("derive node id", ErrMalformedInput, "public key is not hex")
	}
	return DeriveNodeID(pub)
}

// ParseNodeID parses the lowercase (or uppercase) hex form of a node id.
func ParseNodeID(s string) (NodeID, error) {
	if len(s) != NodeIDSize*2 {
		return NodeID{}, newError("parse node id", ErrMalformedInput,
			fmt.Sprintf("expected %d hex characters, got %d", NodeIDSize*2, len(s)))
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return NodeID{}, newError("parse node id", ErrMalformedInput, "not hex")
	}
	var id NodeID
	copy(id[:], data)
	return id, nil
}

// String returns the lowercase hex form used by routing-table code.
func (id NodeID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether the id is unset.
func (id NodeID) IsZero() bool {
	return id == NodeID{}
}

// Equal compares two ids in constant time.
func (id NodeID) Equal(other NodeID) bool {
	return subtle.ConstantTimeCompare(id[:], other[:]) == 1
}

// MarshalText implements encoding.TextMarshaler.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *NodeID) UnmarshalText(text []byte) error {
	parsed, err := ParseNodeID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
