// Package rpc defines the structured request/response messages exchanged
// between DHT peers and a JSON codec that runs security hooks around
// serialization.
//
// Example:
//
//	msg := rpc.NewRequest("PING", map[string]interface{}{"contact": self.Record()})
//	codec := rpc.NewCodec(nil)
//	codec.PreSerialize(rpc.SignHook(envelope.Sign(kp, opts)))
//	data, err := codec.Serialize(msg, peer)
package rpc

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrInvalidMessage indicates a message without an id, or one that is
	// neither a request nor a response.
	ErrInvalidMessage = errors.New("invalid rpc message")
)

// Message is a request (Method set, Params carry the arguments) or a response
// (Result set, ID echoes the request).
type Message struct {
	ID     string                 `json:"id"`
	Method string                 `json:"method,omitempty"`
	Params map[string]interface{} `json:"params,omitempty"`
	Result map[string]interface{} `json:"result,omitempty"`
}

// NewRequest creates a request with a fresh random id.
func NewRequest(method string, params map[string]interface{}) *Message {
	if params == nil {
		params = make(map[string]interface{})
	}
	return &Message{
		ID:     uuid.New().String(),
		Method: method,
		Params: params,
	}
}

// NewResponse creates the response to the request with the given id.
func NewResponse(id string, result map[string]interface{}) *Message {
	if result == nil {
		result = make(map[string]interface{})
	}
	return &Message{
		ID:     id,
		Result: result,
	}
}

// IsRequest reports whether the message is a request.
func (m *Message) IsRequest() bool {
	return m.Method != ""
}

// MessageID returns the message id.
func (m *Message) MessageID() string {
	return m.ID
}

// SecurityFields returns the map that carries the nonce and signature: Params
// for a request, Result for a response. The map is created if absent.
func (m *Message) SecurityFields() map[string]interface{} {
	if m.IsRequest() {
		if m.Params == nil {
			m.Params = make(map[string]interface{})
		}
		return m.Params
	}
	if m.Result == nil {
		m.Result = make(map[string]interface{})
	}
	return m.Result
}

// Validate checks the message has an id and is either a request or a response.
func (m *Message) Validate() error {
	if m.ID == "" {
		return errors.Join(ErrInvalidMessage, errors.New("missing id"))
	}
	if m.IsRequest() && m.Result != nil {
		return errors.Join(ErrInvalidMessage, errors.New("request carries a result"))
	}
	if !m.IsRequest() && m.Result == nil {
		return errors.Join(ErrInvalidMessage, errors.New("neither method nor result"))
	}
	return nil
}
