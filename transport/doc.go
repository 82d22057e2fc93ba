// Package transport carries sealed envelopes between DHT peers over UDP.
//
// # Encrypted UDP
//
// EncryptedUDP applies the envelope hooks at the two points a datagram
// transport touches payloads: Send seals each payload for the destination
// contact before writing it, and the read loop opens each datagram before
// handing the plaintext to the registered Handler.
//
//	kp, _ := crypto.GenerateKeyPair()
//	self, _ := dht.NewSelfContact("0.0.0.0", 1337, kp)
//
//	tr, err := transport.NewEncryptedUDP(self, transport.NewOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tr.Close()
//
//	tr.RegisterHandler(func(payload []byte, addr net.Addr) {
//	    // payload is already decrypted and fresh
//	})
//	err = tr.Send(payload, peer)
//
// By default each datagram is sealed with a fresh ephemeral sender key, so
// the envelope alone does not authenticate the sender. Set
// Options.StaticSenderKey to seal with the local key pair instead.
//
// # Failure Handling
//
// Send never writes to the socket when sealing fails. Inbound datagrams that
// are malformed, stale or fail authentication are dropped and counted; the
// read loop keeps running.
//
// Datagrams larger than limits.MaxDatagramAdvisory (512 bytes) are still
// sent, with a warning, since IP fragmentation is a soft concern.
//
// # Metrics
//
// The transport exports Prometheus counters on Options.Registerer:
//
//	kadseal_transport_datagrams_total{direction="in|out",result="..."}
//	kadseal_transport_bytes_total{direction="in|out"}
//
// Results are ok, oversize, seal_error, open_error, expired and io_error.
package transport
