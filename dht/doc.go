// Package dht defines the identity-bearing contact records exchanged between
// DHT peers.
//
// # Contacts
//
// A Contact decorates an AddressPortContact (address and port only) with the
// peer's compressed secp256k1 public key and the node identifier bound to it:
//
//	nodeID = RIPEMD160(SHA256(pubkey))
//
// Peer contacts hold only a public key. The local node's contact also holds
// its crypto.KeyPair:
//
//	kp, _ := crypto.GenerateKeyPair()
//	self, err := dht.NewSelfContact("0.0.0.0", 1337, kp)
//
// # Identity Claims
//
// Contacts decoded from the network with ContactFromRecord keep any node id
// carried on the wire as a claim. The claim is never trusted on its own:
// Contact.Verified (and envelope.VerifyIdentity) compare it against the id
// derived from the public key.
//
// # Serialization
//
// Contacts marshal to JSON as:
//
//	{"address":"127.0.0.1","port":1337,"pubkey":"02...","nodeID":"71..."}
//
// The key pair of a self contact is never serialized.
//
// Routing, bootstrap and request bookkeeping live outside this package; the
// XOR metric is exposed through Contact.Distance for routing-table code.
package dht
