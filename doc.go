// Package kadseal secures the messages exchanged between nodes of a
// Kademlia-style distributed hash table.
//
// Each node owns a long-lived secp256k1 identity. Its node identifier is
// RIPEMD160(SHA256(compressed public key)), so a peer can check that a
// claimed identifier belongs to a claimed key. Datagrams between nodes are
// sealed with ECDH and AES-256-GCM behind a timestamped IV and rejected when
// stale.
//
// # Getting Started
//
// Create a node, register a handler and send to a peer contact:
//
//	options := kadseal.NewOptions()
//	options.Address = "127.0.0.1"
//	options.DataDir = "/var/lib/kadseal"
//	options.Passphrase = os.Getenv("KADSEAL_PASSPHRASE")
//
//	node, err := kadseal.New(options)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	node.OnMessage(func(msg *rpc.Message, from *dht.Contact) {
//	    fmt.Printf("%s from %s\n", msg.Method, from.NodeID())
//	})
//
//	err = node.SendMessage(rpc.NewRequest("PING", nil), peer)
//
// # Subsystems
//
//   - crypto: key pairs, ECDH, AEAD bodies, ECDSA contracts, node ids, key store
//   - dht: contacts with identity binding
//   - envelope: encrypt/decrypt and sign/verify hooks with the replay window
//   - rpc: structured messages and the JSON codec that runs the hooks
//   - transport: encrypted UDP with drop-on-error semantics and metrics
//   - limits: wire size constants
//
// # Identity Persistence
//
// With DataDir set the identity scalar is stored encrypted under a
// PBKDF2-derived key and reused across restarts. Without it a fresh identity
// is generated for the life of the node.
//
// # Signatures
//
// SignMessages enables the signature scheme on structured messages: every
// outbound message gets a millisecond nonce and a DER signature over its id
// and nonce, and inbound messages must verify against the sender contact's
// public key. Both peers must enable it.
package kadseal
