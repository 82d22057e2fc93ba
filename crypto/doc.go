// Package crypto implements the cryptographic primitives of the kadseal
// envelope layer.
//
// Every node owns a long-lived secp256k1 [KeyPair]. Its compressed public key
// determines the node's routing identifier, and the pair is used to derive
// ECDH secrets, seal and open AES-256-GCM envelope bodies, and (in the
// signature scheme) sign and verify contracts with ECDSA.
//
// # Key Pairs
//
//	kp, err := crypto.GenerateKeyPair()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("node id:", kp.NodeID())
//
//	// Restore a persisted identity.
//	kp, err = crypto.FromPrivateKeyHex("3d9828d83318d5b1c8a92b50967bd956155d22197ae9d79ff7e4f0c3209db617")
//
// # Identity Binding
//
// A [NodeID] is RIPEMD160(SHA256(compressed public key)) and is rendered as
// lowercase hex:
//
//	id, err := crypto.DeriveNodeIDHex("028ac783dab2f134946ed5c6b85eadc48ce745721a01eb071d6faaadcdea7b32d5")
//	// id.String() == "7185386d2032f44b794ac5f9e9bd5914d7415498"
//
// # Envelope Bodies
//
// [KeyPair.AEADEncrypt] produces senderPublicKey(33) || tag(16) || ciphertext.
// The AES-256 key is the raw 32-byte ECDH x-coordinate and the full 16-byte
// [IV] is the GCM nonce, so the body interoperates with implementations that
// feed a 16-byte IV to aes-256-gcm directly.
//
//	iv, _ := crypto.GenerateIV(time.Now())
//	body, err := sender.AEADEncrypt(recipient.PublicKey(), iv, plaintext)
//	plaintext, err = recipient.AEADDecrypt(iv, body)
//
// # Errors
//
// Failures wrap one of [ErrInvalidKey], [ErrMalformedInput] or
// [ErrAuthentication] and can be tested with errors.Is.
//
// # Persistence and Replay
//
// [KeyStore] keeps identity scalars encrypted at rest. [NonceCache] remembers
// recently seen IVs for optional exact-replay rejection.
//
// # Thread Safety
//
// KeyPair values are immutable after construction. KeyStore and NonceCache
// are safe for concurrent use.
package crypto
