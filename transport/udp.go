package transport

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/kadseal/crypto"
	"github.com/opd-ai/kadseal/dht"
	"github.com/opd-ai/kadseal/envelope"
	"github.com/opd-ai/kadseal/limits"
)

// EncryptedUDP sends and receives sealed envelopes over UDP. Every outbound
// payload passes through envelope.Encrypt before it reaches the socket and
// every inbound datagram through envelope.Decrypt before it reaches the
// handler. Datagrams that fail either hook are dropped, logged and counted;
// they never stop the read loop.
type EncryptedUDP struct {
	self        *dht.Contact
	conn        net.PacketConn
	encrypt     envelope.EncryptFunc
	decrypt     envelope.DecryptFunc
	handler     Handler
	metrics     *metrics
	logger      *logrus.Entry
	readTimeout time.Duration

	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewEncryptedUDP binds a UDP socket on the self contact's address and starts
// the read loop. The contact must own a key pair. Port 0 binds an ephemeral
// port; Self reports the bound address.
func NewEncryptedUDP(self *dht.Contact, opts *Options) (*EncryptedUDP, error) {
	if self == nil || self.KeyPair() == nil {
		return nil, newError("listen", "", ErrNoKeyPair)
	}
	if opts == nil {
		opts = NewOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 100 * time.Millisecond
	}

	conn, err := net.ListenPacket("udp", self.AddressPortContact.String())
	if err != nil {
		return nil, newError("listen", self.AddressPortContact.String(), err)
	}

	var sender *crypto.KeyPair
	if opts.StaticSenderKey {
		sender = self.KeyPair()
	}

	bound := self
	if udpAddr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		bound = self.WithAddress(self.Address, uint16(udpAddr.Port))
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &EncryptedUDP{
		self:        bound,
		conn:        conn,
		encrypt:     envelope.Encrypt(sender, opts.Envelope),
		decrypt:     envelope.Decrypt(self.KeyPair(), opts.Envelope),
		metrics:     newMetrics(opts.Registerer),
		logger:      logger.WithField("package", "transport"),
		readTimeout: readTimeout,
		ctx:         ctx,
		cancel:      cancel,
	}

	t.logger.WithFields(logrus.Fields{
		"function":   "NewEncryptedUDP",
		"local_addr": conn.LocalAddr().String(),
		"node_id":    bound.NodeID().String(),
		"ephemeral":  !opts.StaticSenderKey,
	}).Info("Encrypted UDP transport listening")

	t.wg.Add(1)
	go t.processPackets()

	return t, nil
}

// Self returns the local contact with the address actually bound.
func (t *EncryptedUDP) Self() *dht.Contact {
	return t.self
}

// RegisterHandler sets the handler for decrypted inbound payloads.
func (t *EncryptedUDP) RegisterHandler(handler Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.handler = handler
}

// Send seals payload for the contact and writes it to the socket. Nothing is
// transmitted if sealing fails. Datagrams above limits.MaxDatagramAdvisory
// are sent with a warning.
func (t *EncryptedUDP) Send(payload []byte, to *dht.Contact) error {
	if t.ctx.Err() != nil {
		return newError("send", "", ErrClosed)
	}
	if to == nil {
		return newError("send", "", envelope.ErrEncryption)
	}
	dest := to.AddressPortContact.String()

	if err := limits.ValidatePlaintextPayload(payload); err != nil {
		return newError("send", dest, err)
	}

	wire, err := t.encrypt(payload, to, nil)
	if err != nil {
		t.metrics.observe(directionOut, resultSealError, 0)
		t.logger.WithFields(logrus.Fields{
			"function": "Send",
			"to":       dest,
			"error":    err.Error(),
		}).Warn("Dropping outbound message: encryption failed")
		return newError("send", dest, err)
	}

	result := resultOK
	if limits.ExceedsAdvisory(len(wire)) {
		result = resultOversize
		t.logger.WithFields(logrus.Fields{
			"function": "Send",
			"to":       dest,
			"size":     len(wire),
			"limit":    limits.MaxDatagramAdvisory,
		}).Warn("Outbound message exceeds advisory size and risks fragmentation")
	}

	addr, err := to.UDPAddr()
	if err != nil {
		t.metrics.observe(directionOut, resultIOError, 0)
		return newError("send", dest, err)
	}

	if _, err := t.conn.WriteTo(wire, addr); err != nil {
		t.metrics.observe(directionOut, resultIOError, 0)
		return newError("send", dest, err)
	}

	t.metrics.observe(directionOut, result, len(wire))
	return nil
}

// Close stops the read loop and closes the socket.
func (t *EncryptedUDP) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.cancel()
		err = t.conn.Close()
		t.wg.Wait()
	})
	return err
}

// LocalAddr returns the local address the transport is listening on.
func (t *EncryptedUDP) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

// processPackets handles incoming datagrams until the transport is closed.
func (t *EncryptedUDP) processPackets() {
	defer t.wg.Done()
	buffer := make([]byte, limits.MaxUDPPayload)

	for {
		select {
		case <-t.ctx.Done():
			return
		default:
			if !t.processIncomingPacket(buffer) {
				return
			}
		}
	}
}

// processIncomingPacket reads, opens and dispatches one datagram. It returns
// false once the socket is closed.
func (t *EncryptedUDP) processIncomingPacket(buffer []byte) bool {
	data, addr, err := t.readPacketData(buffer)
	if err != nil {
		return t.handleReadError(err)
	}

	payload, err := t.decrypt(data, nil)
	if err != nil {
		result := resultOpenError
		if errors.Is(err, envelope.ErrExpiredMessage) {
			result = resultExpired
		}
		t.metrics.observe(directionIn, result, len(data))
		t.logger.WithFields(logrus.Fields{
			"function": "processIncomingPacket",
			"from":     addr.String(),
			"size":     len(data),
			"error":    err.Error(),
		}).Debug("Dropping inbound datagram")
		return true
	}

	t.metrics.observe(directionIn, resultOK, len(data))
	t.dispatch(payload, addr)
	return true
}

// readPacketData reads one datagram with a deadline so Close is noticed.
func (t *EncryptedUDP) readPacketData(buffer []byte) ([]byte, net.Addr, error) {
	_ = t.conn.SetReadDeadline(time.Now().Add(t.readTimeout))

	n, addr, err := t.conn.ReadFrom(buffer)
	if err != nil {
		return nil, nil, err
	}
	return buffer[:n], addr, nil
}

// handleReadError reports whether the read loop should continue.
func (t *EncryptedUDP) handleReadError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, net.ErrClosed) || t.ctx.Err() != nil {
		return false
	}
	t.metrics.observe(directionIn, resultIOError, 0)
	t.logger.WithFields(logrus.Fields{
		"function": "handleReadError",
		"error":    err.Error(),
	}).Warn("UDP read failed")
	return true
}

func (t *EncryptedUDP) dispatch(payload []byte, addr net.Addr) {
	t.mu.RLock()
	handler := t.handler
	t.mu.RUnlock()

	if handler != nil {
		go handler(payload, addr)
	}
}

// String describes the transport for logs.
func (t *EncryptedUDP) String() string {
	return "encrypted-udp:" + t.self.NodeID().String() + "@" + strconv.Itoa(int(t.self.Port))
}
