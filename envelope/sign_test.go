package envelope

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/kadseal/crypto"
)

type testMessage struct {
	ID     string                 `json:"id"`
	Params map[string]interface{} `json:"params"`
}

func (m *testMessage) MessageID() string                      { return m.ID }
func (m *testMessage) SecurityFields() map[string]interface{} { return m.Params }

func newTestMessage() *testMessage {
	return &testMessage{
		ID:     "d2a4e1c0-8f2e-4a44-9d7e-2b9f3c1e0a11",
		Params: map[string]interface{}{"key": "value"},
	}
}

func TestSignWritesNonceAndSignature(t *testing.T) {
	opts, _ := newMockOptions()
	aliceKP, _ := newPeer(t)
	_, bob := newPeer(t)
	rec := &recorder{}

	msg := newTestMessage()
	require.NoError(t, Sign(aliceKP, opts)(msg, bob, rec.done))
	assert.Equal(t, []error{nil}, rec.calls)

	assert.Equal(t, baseTime.UnixMilli(), msg.Params[NonceField])
	sigHex, ok := msg.Params[SignatureField].(string)
	require.True(t, ok)
	assert.Regexp(t, "^30[0-9a-f]+$", sigHex)
	assert.Equal(t, "value", msg.Params["key"], "existing params must be kept")
}

func TestSignVerify(t *testing.T) {
	aliceKP, alice := newPeer(t)
	bobKP, bob := newPeer(t)
	_, carol := newPeer(t)

	t.Run("accepts signer key", func(t *testing.T) {
		opts, _ := newMockOptions()
		msg := newTestMessage()
		require.NoError(t, Sign(aliceKP, opts)(msg, bob, nil))
		assert.NoError(t, Verify(bobKP, opts)(msg, alice, nil))
	})

	t.Run("rejects other key", func(t *testing.T) {
		opts, _ := newMockOptions()
		msg := newTestMessage()
		require.NoError(t, Sign(aliceKP, opts)(msg, bob, nil))
		assert.ErrorIs(t, Verify(bobKP, opts)(msg, carol, nil), ErrSignatureInvalid)
	})

	t.Run("rejects altered id", func(t *testing.T) {
		opts, _ := newMockOptions()
		msg := newTestMessage()
		require.NoError(t, Sign(aliceKP, opts)(msg, bob, nil))
		msg.ID = "altered"
		rec := &recorder{}
		err := Verify(bobKP, opts)(msg, alice, rec.done)
		assert.ErrorIs(t, err, ErrSignatureInvalid)
		require.Len(t, rec.calls, 1)
		assert.ErrorIs(t, rec.calls[0], ErrSignatureInvalid)
	})

	t.Run("rejects altered nonce", func(t *testing.T) {
		opts, _ := newMockOptions()
		msg := newTestMessage()
		require.NoError(t, Sign(aliceKP, opts)(msg, bob, nil))
		msg.Params[NonceField] = msg.Params[NonceField].(int64) + 1
		assert.ErrorIs(t, Verify(bobKP, opts)(msg, alice, nil), ErrSignatureInvalid)
	})

	t.Run("nil verifying key pair", func(t *testing.T) {
		opts, _ := newMockOptions()
		msg := newTestMessage()
		require.NoError(t, Sign(aliceKP, opts)(msg, bob, nil))
		assert.NoError(t, Verify(nil, opts)(msg, alice, nil))
	})
}

func TestVerifyAfterJSONRoundTrip(t *testing.T) {
	opts, _ := newMockOptions()
	aliceKP, alice := newPeer(t)
	_, bob := newPeer(t)

	msg := newTestMessage()
	require.NoError(t, Sign(aliceKP, opts)(msg, bob, nil))
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	t.Run("float64 nonce", func(t *testing.T) {
		var decoded testMessage
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.NoError(t, Verify(nil, opts)(&decoded, alice, nil))
	})

	t.Run("json.Number nonce", func(t *testing.T) {
		var decoded testMessage
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		require.NoError(t, dec.Decode(&decoded))
		assert.NoError(t, Verify(nil, opts)(&decoded, alice, nil))
	})
}

func TestVerifyNonceWindowIsUpperBoundOnly(t *testing.T) {
	aliceKP, alice := newPeer(t)
	_, bob := newPeer(t)

	tests := []struct {
		name    string
		offset  time.Duration
		wantErr error
	}{
		{"at expiry", 10 * time.Second, nil},
		{"one millisecond late", 10*time.Second + time.Millisecond, ErrExpiredMessage},
		{"far future nonce accepted", -time.Hour, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, mock := newMockOptions()
			msg := newTestMessage()
			require.NoError(t, Sign(aliceKP, opts)(msg, bob, nil))

			mock.Set(baseTime.Add(tt.offset))
			err := Verify(nil, opts)(msg, alice, nil)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestVerifyMalformedFields(t *testing.T) {
	opts, _ := newMockOptions()
	aliceKP, alice := newPeer(t)
	_, bob := newPeer(t)

	signed := func() *testMessage {
		msg := newTestMessage()
		require.NoError(t, Sign(aliceKP, opts)(msg, bob, nil))
		return msg
	}

	tests := []struct {
		name   string
		mutate func(m *testMessage)
	}{
		{"missing nonce", func(m *testMessage) { delete(m.Params, NonceField) }},
		{"string nonce", func(m *testMessage) { m.Params[NonceField] = "123" }},
		{"fractional nonce", func(m *testMessage) { m.Params[NonceField] = 1.5 }},
		{"missing signature", func(m *testMessage) { delete(m.Params, SignatureField) }},
		{"signature not hex", func(m *testMessage) { m.Params[SignatureField] = "xyz" }},
		{"signature not DER", func(m *testMessage) { m.Params[SignatureField] = "3001" }},
		{"nil params", func(m *testMessage) { m.Params = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := signed()
			tt.mutate(msg)
			assert.ErrorIs(t, Verify(nil, opts)(msg, alice, nil), ErrMalformedInput)
		})
	}

	t.Run("undecodable source key", func(t *testing.T) {
		msg := signed()
		bad := stubContact{pub: []byte{0x02, 0x01}}
		assert.ErrorIs(t, Verify(nil, opts)(msg, bad, nil), ErrMalformedInput)
	})
}

func TestSignRequiresWritableFields(t *testing.T) {
	opts, _ := newMockOptions()
	kp, _ := newPeer(t)
	rec := &recorder{}

	err := Sign(kp, opts)(&testMessage{ID: "x"}, nil, rec.done)
	assert.ErrorIs(t, err, ErrMalformedInput)
	require.Len(t, rec.calls, 1)

	err = Sign(nil, opts)(newTestMessage(), nil, nil)
	assert.ErrorIs(t, err, crypto.ErrInvalidKey)
}
