package transport

import (
	"net"

	"github.com/opd-ai/kadseal/dht"
)

// Handler processes a decrypted payload received from addr. Handlers run on
// their own goroutine and must not retain payload after returning unless
// they copy it.
type Handler func(payload []byte, addr net.Addr)

// Transport defines the interface for encrypted datagram transports.
type Transport interface {
	// Send seals payload for the contact and transmits it.
	Send(payload []byte, to *dht.Contact) error

	// RegisterHandler sets the handler for decrypted inbound payloads.
	RegisterHandler(handler Handler)

	// LocalAddr returns the local address the transport is listening on.
	LocalAddr() net.Addr

	// Close shuts down the transport.
	Close() error
}
