package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyContract(t *testing.T) {
	kp1, err := GenerateKeyPair()
	require.NoError(t, err)
	kp2, err := GenerateKeyPair()
	require.NoError(t, err)

	contract := []byte("test string")
	signature, err := kp1.SignContract(contract)
	require.NoError(t, err)

	t.Run("valid signature with signer key", func(t *testing.T) {
		ok, err := kp2.VerifyContract(contract, kp1.PublicKey(), signature)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong public key", func(t *testing.T) {
		ok, err := kp2.VerifyContract(contract, kp2.PublicKey(), signature)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("altered contract", func(t *testing.T) {
		ok, err := kp2.VerifyContract([]byte("test strinG"), kp1.PublicKey(), signature)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestSignContractDeterministic(t *testing.T) {
	kp, err := FromPrivateKeyHex(testPrivateKeyHex)
	require.NoError(t, err)

	first, err := kp.SignContract([]byte("contract"))
	require.NoError(t, err)
	second, err := kp.SignContract([]byte("contract"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, byte(0x30), first[0], "signature must be DER encoded")
}

func TestVerifyContractMalformed(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	signature, err := kp.SignContract([]byte("data"))
	require.NoError(t, err)

	_, err = kp.VerifyContract([]byte("data"), kp.PublicKey(), []byte{0x30, 0x01})
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = kp.VerifyContract([]byte("data"), []byte{0x02, 0x03}, signature)
	assert.ErrorIs(t, err, ErrMalformedInput)
}
