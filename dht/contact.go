package dht

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/opd-ai/kadseal/crypto"
)

// ErrInvalidContact indicates a contact record that cannot be decoded.
var ErrInvalidContact = errors.New("invalid contact")

// AddressPortContact is the transport-level part of a contact: where to send
// datagrams. It carries no identity.
type AddressPortContact struct {
	Address string `json:"address"`
	Port    uint16 `json:"port"`
}

// String returns the address in host:port form.
func (c AddressPortContact) String() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(int(c.Port)))
}

// Equal reports whether both contacts name the same endpoint.
func (c AddressPortContact) Equal(other AddressPortContact) bool {
	return c.Address == other.Address && c.Port == other.Port
}

// UDPAddr resolves the contact to a UDP address.
func (c AddressPortContact) UDPAddr() (*net.UDPAddr, error) {
	return net.ResolveUDPAddr("udp", c.String())
}

// Record is the serialized form of a Contact as exchanged between peers.
// Keys are lowercase hex. A NodeID present in a record is only a claim; see
// Contact.Verified.
type Record struct {
	Address   string `json:"address"`
	Port      uint16 `json:"port"`
	PublicKey string `json:"pubkey"`
	NodeID    string `json:"nodeID,omitempty"`
}

// Contact decorates an AddressPortContact with the peer's public key and the
// node identifier bound to it. The contact for the local node also holds its
// KeyPair, which never appears in any serialized form.
//
//	peer, err := dht.NewContact("127.0.0.1", 1337, pubkey)
//	fmt.Println(peer.NodeID()) // RIPEMD160(SHA256(pubkey))
type Contact struct {
	AddressPortContact

	publicKey []byte
	nodeID    crypto.NodeID
	keyPair   *crypto.KeyPair
}

// NewContact creates a contact for a remote peer from its compressed public key.
func NewContact(address string, port uint16, publicKey []byte) (*Contact, error) {
	id, err := crypto.DeriveNodeID(publicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContact, err)
	}

	return &Contact{
		AddressPortContact: AddressPortContact{Address: address, Port: port},
		publicKey:          append([]byte(nil), publicKey...),
		nodeID:             id,
	}, nil
}

// NewSelfContact creates the local node's contact. Its public key and node
// id are derived from kp.
func NewSelfContact(address string, port uint16, kp *crypto.KeyPair) (*Contact, error) {
	if kp == nil {
		return nil, fmt.Errorf("%w: nil key pair", ErrInvalidContact)
	}

	return &Contact{
		AddressPortContact: AddressPortContact{Address: address, Port: port},
		publicKey:          kp.PublicKey(),
		nodeID:             kp.NodeID(),
		keyPair:            kp,
	}, nil
}

// ContactFromRecord decodes a contact received from the network. A node id
// carried by the record is kept as the claimed id so VerifyIdentity can
// compare it against the id derived from the public key; without one the id
// is derived.
func ContactFromRecord(r Record) (*Contact, error) {
	pub, err := hex.DecodeString(r.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: public key is not hex", ErrInvalidContact)
	}

	c, err := NewContact(r.Address, r.Port, pub)
	if err != nil {
		return nil, err
	}

	if r.NodeID != "" {
		claimed, err := crypto.ParseNodeID(r.NodeID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidContact, err)
		}
		c.nodeID = claimed
	}

	return c, nil
}

// PublicKey returns a copy of the contact's compressed public key.
func (c *Contact) PublicKey() []byte {
	return append([]byte(nil), c.publicKey...)
}

// NodeID returns the contact's node identifier. For contacts decoded from a
// record this is the claimed id; use Verified to check it.
func (c *Contact) NodeID() crypto.NodeID {
	return c.nodeID
}

// DerivedNodeID recomputes the identifier from the public key.
func (c *Contact) DerivedNodeID() crypto.NodeID {
	id, _ := crypto.DeriveNodeID(c.publicKey)
	return id
}

// Verified reports whether the contact's node id matches its public key.
func (c *Contact) Verified() bool {
	return c.DerivedNodeID().Equal(c.nodeID)
}

// KeyPair returns the key pair of the local node's contact, or nil for peers.
func (c *Contact) KeyPair() *crypto.KeyPair {
	return c.keyPair
}

// IsSelf reports whether the contact owns a key pair.
func (c *Contact) IsSelf() bool {
	return c.keyPair != nil
}

// WithAddress returns a copy of the contact pointing at a different endpoint,
// such as the port actually bound by a transport.
func (c *Contact) WithAddress(address string, port uint16) *Contact {
	cp := *c
	cp.AddressPortContact = AddressPortContact{Address: address, Port: port}
	return &cp
}

// Equal reports whether both contacts share an endpoint and public key.
func (c *Contact) Equal(other *Contact) bool {
	if other == nil {
		return false
	}
	return c.AddressPortContact.Equal(other.AddressPortContact) &&
		bytes.Equal(c.publicKey, other.publicKey)
}

// Distance returns the XOR distance between two contacts' node ids.
func (c *Contact) Distance(other *Contact) crypto.NodeID {
	var result crypto.NodeID
	for i := range result {
		result[i] = c.nodeID[i] ^ other.nodeID[i]
	}
	return result
}

// Record returns the serializable form of the contact.
func (c *Contact) Record() Record {
	return Record{
		Address:   c.Address,
		Port:      c.Port,
		PublicKey: hex.EncodeToString(c.publicKey),
		NodeID:    c.nodeID.String(),
	}
}

// String returns a short human-readable description.
func (c *Contact) String() string {
	return fmt.Sprintf("%s@%s", c.nodeID, c.AddressPortContact.String())
}

// MarshalJSON encodes the contact as a Record. The key pair is never included.
func (c *Contact) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Record())
}

// UnmarshalJSON decodes a Record into the contact.
func (c *Contact) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContact, err)
	}
	decoded, err := ContactFromRecord(r)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}
