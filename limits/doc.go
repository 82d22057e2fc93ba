// Package limits centralizes the size constants of the encrypted datagram
// format and the checks applied to outbound payloads.
//
// # Envelope Sizes
//
// A sealed datagram is the payload plus a fixed overhead:
//
//	IV(16) || senderPub(33) || tag(16) || ciphertext(n)
//
// so SealedSize(n) == n + EnvelopeOverhead (65 bytes).
//
// # Advisory Limit
//
// Datagrams above MaxDatagramAdvisory (512 bytes) risk IP fragmentation.
// The transport logs a warning for them but still sends; fragmentation is a
// soft concern, not a protocol error:
//
//	if limits.ExceedsAdvisory(len(datagram)) {
//	    logger.Warn("outbound message risks fragmentation")
//	}
//
// MaxUDPPayload is the hard limit: payloads that cannot fit a single UDP
// datagram once sealed are rejected with ErrMessageTooLarge.
package limits
