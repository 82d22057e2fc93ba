package crypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPrivateKeyHex = "3d9828d83318d5b1c8a92b50967bd956155d22197ae9d79ff7e4f0c3209db617"
	testPublicKeyHex  = "02f12738f0f25862f8ddaaae6820d071a7c774ace005e6e5605fbcc6e9a9eb5971"
	testNodeIDHex     = "2a902b8de57560f0e35c4deaa7bcc4d77b9ae4d3"
)

func TestGenerateKeyPair(t *testing.T) {
	keyPair, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}

	pub := keyPair.PublicKey()
	if len(pub) != PublicKeySize {
		t.Fatalf("PublicKey() length = %d, want %d", len(pub), PublicKeySize)
	}
	if pub[0] != 0x02 && pub[0] != 0x03 {
		t.Errorf("PublicKey() prefix = %#x, want 0x02 or 0x03", pub[0])
	}

	keyPair2, _ := GenerateKeyPair()
	if bytes.Equal(pub, keyPair2.PublicKey()) {
		t.Error("Multiple GenerateKeyPair() calls produced identical public keys")
	}
}

func TestFromPrivateKey(t *testing.T) {
	curveOrder, _ := hex.DecodeString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	overOrder, _ := hex.DecodeString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364142")
	maxValid, _ := hex.DecodeString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364140")
	one := make([]byte, PrivateKeySize)
	one[PrivateKeySize-1] = 1

	cases := []struct {
		name      string
		scalar    []byte
		wantError bool
	}{
		{name: "one", scalar: one},
		{name: "n-1", scalar: maxValid},
		{name: "zero", scalar: make([]byte, PrivateKeySize), wantError: true},
		{name: "curve order", scalar: curveOrder, wantError: true},
		{name: "above curve order", scalar: overOrder, wantError: true},
		{name: "short", scalar: []byte{1, 2, 3}, wantError: true},
		{name: "long", scalar: make([]byte, 33), wantError: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kp, err := FromPrivateKey(tc.scalar)
			if tc.wantError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidKey), "want ErrInvalidKey, got %v", err)
				assert.Nil(t, kp)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.scalar, kp.PrivateKey())
		})
	}
}

func TestKnownKeyVector(t *testing.T) {
	kp, err := FromPrivateKeyHex(testPrivateKeyHex)
	require.NoError(t, err)

	assert.Equal(t, testPrivateKeyHex, hex.EncodeToString(kp.PrivateKey()))
	assert.Equal(t, testPublicKeyHex, kp.PublicKeyHex())
	assert.Equal(t, testNodeIDHex, kp.NodeID().String())
}

func TestFromPrivateKeyHexRejectsGarbage(t *testing.T) {
	_, err := FromPrivateKeyHex("not a key")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestPublicKeyIsCopy(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	pub := kp.PublicKey()
	pub[1] ^= 0xff
	assert.NotEqual(t, pub, kp.PublicKey(), "mutating the returned key must not affect the key pair")
}
