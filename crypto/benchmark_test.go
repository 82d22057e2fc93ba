package crypto

import (
	"testing"
	"time"
)

// BenchmarkGenerateKeyPair measures key pair generation performance
func BenchmarkGenerateKeyPair(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, err := GenerateKeyPair()
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkGenerateIV measures IV generation performance
func BenchmarkGenerateIV(b *testing.B) {
	now := time.Now()
	for i := 0; i < b.N; i++ {
		if _, err := GenerateIV(now); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkAEADEncrypt measures envelope body sealing, including ECDH
func BenchmarkAEADEncrypt(b *testing.B) {
	sender, err := GenerateKeyPair()
	if err != nil {
		b.Fatal(err)
	}
	recipient, err := GenerateKeyPair()
	if err != nil {
		b.Fatal(err)
	}
	iv, err := GenerateIV(time.Now())
	if err != nil {
		b.Fatal(err)
	}
	plaintext := make([]byte, 256)

	b.SetBytes(int64(len(plaintext)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := sender.AEADEncrypt(recipient.PublicKey(), iv, plaintext); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkAEADDecrypt measures envelope body opening, including ECDH
func BenchmarkAEADDecrypt(b *testing.B) {
	sender, err := GenerateKeyPair()
	if err != nil {
		b.Fatal(err)
	}
	recipient, err := GenerateKeyPair()
	if err != nil {
		b.Fatal(err)
	}
	iv, err := GenerateIV(time.Now())
	if err != nil {
		b.Fatal(err)
	}
	body, err := sender.AEADEncrypt(recipient.PublicKey(), iv, make([]byte, 256))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := recipient.AEADDecrypt(iv, body); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSignContract measures ECDSA signing
func BenchmarkSignContract(b *testing.B) {
	kp, err := GenerateKeyPair()
	if err != nil {
		b.Fatal(err)
	}
	contract := []byte("d2a4e1c0-8f2e-4a44-9d7e-2b9f3c1e0a111700000000000")

	for i := 0; i < b.N; i++ {
		if _, err := kp.SignContract(contract); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDeriveNodeID measures identity binding
func BenchmarkDeriveNodeID(b *testing.B) {
	kp, err := GenerateKeyPair()
	if err != nil {
		b.Fatal(err)
	}
	pub := kp.PublicKey()

	for i := 0; i < b.N; i++ {
		if _, err := DeriveNodeID(pub); err != nil {
			b.Fatal(err)
		}
	}
}
