// Package envelope provides the hooks a transport calls around every message:
// Encrypt and Decrypt implement the AEAD envelope, Sign and Verify the
// alternative signature scheme, and VerifyIdentity the node id binding check.
//
// # AEAD Envelope
//
// Encrypt seals a payload for a destination contact using ECDH on secp256k1
// and AES-256-GCM. The wire layout is
//
//	IV[16]   = timestamp_be32[4] || random[12]
//	BODY     = senderPub[33] || tag[16] || ciphertext[n]
//	datagram = IV || BODY
//
// Decrypt rejects envelopes whose IV timestamp is more than the replay window
// away from the current time before it attempts decryption. All decryption
// failures are reported as ErrDecryption regardless of cause.
//
//	opts := envelope.NewOptions()
//	seal := envelope.Encrypt(nil, opts) // ephemeral sender key per call
//	open := envelope.Decrypt(self.KeyPair(), opts)
//
//	wire, err := seal(payload, peer, nil)
//	if err != nil {
//	    return err // never transmit
//	}
//
// The window stops delayed replays only. Setting Options.NonceCache also
// rejects an identical envelope seen again inside the window.
//
// # Signatures
//
// Sign writes a millisecond nonce and a hex DER signature over the message id
// followed by the nonce into the message's parameters (requests) or result
// (responses). Verify rejects a message once now > nonce+W; it applies no
// lower bound.
//
// # Concurrency
//
// Hooks hold no state beyond their key pair and Options and may be called
// concurrently. The optional NonceCache synchronizes internally.
package envelope
