package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	sha256 "github.com/minio/sha256-simd"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// PBKDF2Iterations is the number of iterations used to stretch the passphrase.
	PBKDF2Iterations = 100000
	// KeyFileVersion is the current on-disk format version.
	KeyFileVersion = 1
	// SaltSize is the size of the PBKDF2 salt.
	SaltSize = 32

	keyFileExt   = ".key"
	saltFileName = ".salt"
)

// ErrKeyNotFound is returned by LoadKeyPair when no key with that name is stored.
var ErrKeyNotFound = errors.New("key not found")

// KeyStore persists identity private scalars encrypted at rest with
// AES-256-GCM under a PBKDF2-derived key. Ephemeral key pairs are never
// written here.
//
// Files are laid out as [version:2][nonce:12][ciphertext+tag].
type KeyStore struct {
	encryptionKey [32]byte
	dataDir       string
	saltFile      string
	logger        *logrus.Entry
}

// NewKeyStore opens (creating if needed) a key store in dataDir. The
// passphrase slice is wiped once the storage key has been derived.
func NewKeyStore(dataDir string, passphrase []byte) (*KeyStore, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("passphrase cannot be empty")
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	ks := &KeyStore{
		dataDir:  dataDir,
		saltFile: filepath.Join(dataDir, saltFileName),
		logger: logrus.WithFields(logrus.Fields{
			"package":  "crypto",
			"data_dir": dataDir,
		}),
	}

	salt, err := ks.loadOrGenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize salt: %w", err)
	}

	derivedKey := pbkdf2.Key(passphrase, salt, PBKDF2Iterations, 32, sha256.New)
	copy(ks.encryptionKey[:], derivedKey)
	ZeroBytes(derivedKey)
	ZeroBytes(passphrase)

	return ks, nil
}

func (ks *KeyStore) loadOrGenerateSalt() ([]byte, error) {
	data, err := os.ReadFile(ks.saltFile)
	if err == nil {
		if len(data) != SaltSize {
			return nil, fmt.Errorf("invalid salt file size: got %d, want %d", len(data), SaltSize)
		}
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read salt file: %w", err)
	}

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	if err := os.WriteFile(ks.saltFile, salt, 0o600); err != nil {
		return nil, fmt.Errorf("failed to save salt: %w", err)
	}
	return salt, nil
}

func (ks *KeyStore) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(ks.encryptionKey[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

func (ks *KeyStore) path(name string) string {
	return filepath.Join(ks.dataDir, name+keyFileExt)
}

// StoreKeyPair writes the private scalar of kp under name, replacing any
// existing key atomically.
func (ks *KeyStore) StoreKeyPair(name string, kp *KeyPair) error {
	if name == "" {
		return fmt.Errorf("key name cannot be empty")
	}

	gcm, err := ks.gcm()
	if err != nil {
		return err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	scalar := kp.PrivateKey()
	defer ZeroBytes(scalar)
	sealed := gcm.Seal(nil, nonce, scalar, []byte(name))

	output := make([]byte, 2+len(nonce)+len(sealed))
	binary.BigEndian.PutUint16(output[0:2], KeyFileVersion)
	copy(output[2:], nonce)
	copy(output[2+len(nonce):], sealed)

	tmpFile := ks.path(name) + ".tmp"
	if err := os.WriteFile(tmpFile, output, 0o600); err != nil {
		return fmt.Errorf("failed to write temporary key file: %w", err)
	}
	if err := os.Rename(tmpFile, ks.path(name)); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename key file: %w", err)
	}

	ks.logger.WithFields(logrus.Fields{
		"key_name": name,
		"node_id":  kp.NodeID().String(),
	}).Info("Stored identity key")

	return nil
}

// LoadKeyPair reads and decrypts the key stored under name.
func (ks *KeyStore) LoadKeyPair(name string) (*KeyPair, error) {
	data, err := os.ReadFile(ks.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, name)
		}
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	gcm, err := ks.gcm()
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < 2+nonceSize+gcm.Overhead() {
		return nil, fmt.Errorf("key file too short: %d bytes", len(data))
	}
	if version := binary.BigEndian.Uint16(data[0:2]); version != KeyFileVersion {
		return nil, fmt.Errorf("unsupported key file version: %d (expected %d)", version, KeyFileVersion)
	}

	scalar, err := gcm.Open(nil, data[2:2+nonceSize], data[2+nonceSize:], []byte(name))
	if err != nil {
		return nil, fmt.Errorf("decryption failed (wrong passphrase or corrupted file): %w", err)
	}
	defer ZeroBytes(scalar)

	return FromPrivateKey(scalar)
}

// LoadOrGenerateKeyPair loads the key stored under name, generating and
// storing a fresh one if none exists.
func (ks *KeyStore) LoadOrGenerateKeyPair(name string) (*KeyPair, error) {
	kp, err := ks.LoadKeyPair(name)
	if err == nil {
		return kp, nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return nil, err
	}

	kp, err = GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	if err := ks.StoreKeyPair(name, kp); err != nil {
		return nil, err
	}
	return kp, nil
}

// Delete overwrites the key file with zeros and removes it.
func (ks *KeyStore) Delete(name string) error {
	path := ks.path(name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat key file: %w", err)
	}

	if err := os.WriteFile(path, make([]byte, info.Size()), 0o600); err != nil {
		ks.logger.WithError(err).Warn("Could not overwrite key file before removal")
	}
	return os.Remove(path)
}

// Close wipes the storage key. The store must not be used afterwards.
func (ks *KeyStore) Close() error {
	ZeroBytes(ks.encryptionKey[:])
	return nil
}
