package transport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/kadseal/envelope"
)

// Options configures an EncryptedUDP transport.
type Options struct {
	// Envelope configures the encrypt and decrypt hooks.
	Envelope *envelope.Options

	// StaticSenderKey seals outbound datagrams with the local key pair
	// instead of a fresh ephemeral key per datagram.
	StaticSenderKey bool

	// Registerer receives the transport metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer

	// Logger receives transport diagnostics. Nil uses the standard logger.
	Logger *logrus.Entry

	// ReadTimeout bounds each socket read so Close is noticed promptly.
	ReadTimeout time.Duration
}

// NewOptions returns the default transport options.
func NewOptions() *Options {
	return &Options{
		Envelope:    envelope.NewOptions(),
		ReadTimeout: 100 * time.Millisecond,
	}
}
