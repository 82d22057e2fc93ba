package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/kadseal/envelope"
)

// PreSerializeHook runs on an outbound message before it is encoded.
type PreSerializeHook func(msg *Message, to envelope.Contact) error

// PostReceiveHook runs on an inbound message after it is decoded. A hook
// error causes the message to be dropped.
type PostReceiveHook func(msg *Message, from envelope.Contact) error

// SignHook adapts envelope.Sign to a pre-serialize hook.
func SignHook(sign envelope.SignFunc) PreSerializeHook {
	return func(msg *Message, to envelope.Contact) error {
		return sign(msg, to, nil)
	}
}

// VerifyHook adapts envelope.Verify to a post-receive hook.
func VerifyHook(verify envelope.VerifyFunc) PostReceiveHook {
	return func(msg *Message, from envelope.Contact) error {
		return verify(msg, from, nil)
	}
}

// IdentityHook rejects messages from contacts whose node id does not match
// their public key.
func IdentityHook() PostReceiveHook {
	return func(_ *Message, from envelope.Contact) error {
		return envelope.VerifyIdentity(nil, from, nil)
	}
}

// Codec encodes messages as JSON and runs the registered hooks in order.
type Codec struct {
	mu     sync.RWMutex
	pre    []PreSerializeHook
	post   []PostReceiveHook
	logger *logrus.Entry
}

// NewCodec creates a codec with no hooks. A nil logger uses the standard logger.
func NewCodec(logger *logrus.Entry) *Codec {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Codec{logger: logger.WithField("package", "rpc")}
}

// PreSerialize appends hooks run by Serialize.
func (c *Codec) PreSerialize(hooks ...PreSerializeHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pre = append(c.pre, hooks...)
}

// PostReceive appends hooks run by Parse.
func (c *Codec) PostReceive(hooks ...PostReceiveHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.post = append(c.post, hooks...)
}

// Serialize runs the pre-serialize hooks on msg, which they may modify in
// place, and encodes it.
func (c *Codec) Serialize(msg *Message, to envelope.Contact) ([]byte, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	hooks := c.pre
	c.mu.RUnlock()

	for i, hook := range hooks {
		if err := hook(msg, to); err != nil {
			c.logger.WithFields(logrus.Fields{
				"function":   "Serialize",
				"hook":       i,
				"message_id": msg.ID,
				"error":      err.Error(),
			}).Warn("Pre-serialize hook failed")
			return nil, fmt.Errorf("pre-serialize hook %d: %w", i, err)
		}
	}

	return json.Marshal(msg)
}

// Parse decodes data and runs the post-receive hooks. Numbers are decoded as
// json.Number so integer nonces survive intact.
func (c *Codec) Parse(data []byte, from envelope.Contact) (*Message, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var msg Message
	if err := dec.Decode(&msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	hooks := c.post
	c.mu.RUnlock()

	for i, hook := range hooks {
		if err := hook(&msg, from); err != nil {
			c.logger.WithFields(logrus.Fields{
				"function":   "Parse",
				"hook":       i,
				"message_id": msg.ID,
				"error":      err.Error(),
			}).Warn("Post-receive hook rejected message")
			return nil, fmt.Errorf("post-receive hook %d: %w", i, err)
		}
	}

	return &msg, nil
}
