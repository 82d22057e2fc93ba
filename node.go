package kadseal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/kadseal/crypto"
	"github.com/opd-ai/kadseal/dht"
	"github.com/opd-ai/kadseal/envelope"
	"github.com/opd-ai/kadseal/rpc"
	"github.com/opd-ai/kadseal/transport"
)

// ContactField is the message field that carries the sender's contact record.
const ContactField = "contact"

// ErrNoContact indicates an inbound message without a usable sender contact.
var ErrNoContact = errors.New("message carries no sender contact")

// Options contains node configuration.
type Options struct {
	// Address and Port to bind. Port 0 picks a free port.
	Address string
	Port    uint16

	// DataDir holds the encrypted identity. Empty means an in-memory identity
	// that is lost on Close.
	DataDir    string
	Passphrase string
	KeyName    string

	// ReplayWindow bounds message freshness for envelopes and signatures.
	ReplayWindow time.Duration

	// ReplayCache additionally rejects exact replays inside the window.
	ReplayCache bool

	// StaticSenderKey seals datagrams with the identity key instead of an
	// ephemeral key.
	StaticSenderKey bool

	// SignMessages adds and checks ECDSA signatures on structured messages.
	SignMessages bool

	Registerer prometheus.Registerer
	Logger     *logrus.Entry
}

// NewOptions returns the default node options.
func NewOptions() *Options {
	return &Options{
		Address:      "0.0.0.0",
		Port:         0,
		KeyName:      "identity",
		ReplayWindow: envelope.DefaultReplayWindow,
	}
}

// MessageHandler receives verified structured messages and the contact that
// sent them.
type MessageHandler func(msg *rpc.Message, from *dht.Contact)

// Node ties an identity, its contact and an encrypted transport together.
type Node struct {
	options   *Options
	keyPair   *crypto.KeyPair
	transport *transport.EncryptedUDP
	codec     *rpc.Codec
	logger    *logrus.Entry

	closeOnce sync.Once
}

// New loads or creates the node identity and starts listening.
func New(options *Options) (*Node, error) {
	if options == nil {
		options = NewOptions()
	}
	logger := options.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	kp, err := loadIdentity(options)
	if err != nil {
		return nil, err
	}

	self, err := dht.NewSelfContact(options.Address, options.Port, kp)
	if err != nil {
		kp.Wipe()
		return nil, err
	}

	envOpts := envelope.NewOptions()
	if options.ReplayWindow > 0 {
		envOpts.ReplayWindow = options.ReplayWindow
	}
	envOpts.Logger = logger
	if options.ReplayCache {
		envOpts.NonceCache = crypto.NewNonceCache(0, 2*envOpts.ReplayWindow)
	}

	trOpts := transport.NewOptions()
	trOpts.Envelope = envOpts
	trOpts.StaticSenderKey = options.StaticSenderKey
	trOpts.Registerer = options.Registerer
	trOpts.Logger = logger

	tr, err := transport.NewEncryptedUDP(self, trOpts)
	if err != nil {
		kp.Wipe()
		return nil, err
	}

	codec := rpc.NewCodec(logger)
	codec.PostReceive(rpc.IdentityHook())
	if options.SignMessages {
		codec.PreSerialize(rpc.SignHook(envelope.Sign(kp, envOpts)))
		codec.PostReceive(rpc.VerifyHook(envelope.Verify(kp, envOpts)))
	}

	n := &Node{
		options:   options,
		keyPair:   kp,
		transport: tr,
		codec:     codec,
		logger:    logger.WithField("package", "kadseal"),
	}

	n.logger.WithFields(logrus.Fields{
		"function": "New",
		"node_id":  tr.Self().NodeID().String(),
		"addr":     tr.LocalAddr().String(),
	}).Info("Node started")

	return n, nil
}

func loadIdentity(options *Options) (*crypto.KeyPair, error) {
	if options.DataDir == "" {
		return crypto.GenerateKeyPair()
	}

	ks, err := crypto.NewKeyStore(options.DataDir, []byte(options.Passphrase))
	if err != nil {
		return nil, fmt.Errorf("failed to open key store: %w", err)
	}
	defer ks.Close()

	kp, err := ks.LoadOrGenerateKeyPair(options.KeyName)
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}
	return kp, nil
}

// Self returns the local contact, with the bound port.
func (n *Node) Self() *dht.Contact {
	return n.transport.Self()
}

// NodeID returns the local node identifier.
func (n *Node) NodeID() crypto.NodeID {
	return n.keyPair.NodeID()
}

// LocalAddr returns the bound UDP address.
func (n *Node) LocalAddr() net.Addr {
	return n.transport.LocalAddr()
}

// Send seals payload for the contact and transmits it.
func (n *Node) Send(payload []byte, to *dht.Contact) error {
	return n.transport.Send(payload, to)
}

// OnReceive sets the handler for raw decrypted payloads. It replaces any
// handler set by OnMessage.
func (n *Node) OnReceive(handler transport.Handler) {
	n.transport.RegisterHandler(handler)
}

// SendMessage attaches the local contact to msg, runs the pre-serialize hooks
// and sends the result.
func (n *Node) SendMessage(msg *rpc.Message, to *dht.Contact) error {
	msg.SecurityFields()[ContactField] = n.Self().Record()

	data, err := n.codec.Serialize(msg, to)
	if err != nil {
		return err
	}
	return n.Send(data, to)
}

// OnMessage sets the handler for structured messages. Messages that fail to
// parse, carry no contact or fail a post-receive hook are dropped. It
// replaces any handler set by OnReceive.
func (n *Node) OnMessage(handler MessageHandler) {
	n.transport.RegisterHandler(func(payload []byte, addr net.Addr) {
		msg, from, err := n.parseMessage(payload)
		if err != nil {
			n.logger.WithFields(logrus.Fields{
				"function": "OnMessage",
				"from":     addr.String(),
				"error":    err.Error(),
			}).Debug("Dropping inbound message")
			return
		}
		handler(msg, from)
	})
}

// parseMessage extracts the sender contact, then decodes msg with the codec
// hooks checked against that contact.
func (n *Node) parseMessage(payload []byte) (*rpc.Message, *dht.Contact, error) {
	var probe struct {
		Method string                     `json:"method"`
		Params map[string]json.RawMessage `json:"params"`
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", rpc.ErrInvalidMessage, err)
	}

	fields := probe.Result
	if probe.Method != "" {
		fields = probe.Params
	}
	raw, ok := fields[ContactField]
	if !ok {
		return nil, nil, ErrNoContact
	}

	var from dht.Contact
	if err := json.Unmarshal(raw, &from); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNoContact, err)
	}

	msg, err := n.codec.Parse(payload, &from)
	if err != nil {
		return nil, nil, err
	}
	return msg, &from, nil
}

// Close stops the transport and wipes the in-memory private key.
func (n *Node) Close() error {
	var err error
	n.closeOnce.Do(func() {
		err = n.transport.Close()
		n.keyPair.Wipe()
		n.logger.WithField("function", "Close").Info("Node stopped")
	})
	return err
}
