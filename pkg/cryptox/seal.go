// Package cryptox seals small secrets for storage at rest. The session store
// uses it so the bearer token and user record never sit on disk in plaintext.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters for deriving the sealing key from master key material.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	keyLen       = 32 // AES-256
)

// The derivation salt is fixed per storage format version; per-encryption
// uniqueness comes from the GCM nonce.
var derivationSalt = []byte("gamehive-session-store-v1")

var (
	masterKeyOnce sync.Once
	masterKey     []byte
	masterKeyErr  error
	masterKeyPath string
)

// SetMasterKeyPath configures where to load the master key material from.
// Must be called before the first Seal/Open; later calls have no effect.
func SetMasterKeyPath(path string) {
	masterKeyPath = path
}

// loadMasterKey obtains key material from, in order of preference:
// 1. the file configured via SetMasterKeyPath
// 2. the GAMEHIVE_MASTER_KEY environment variable
// 3. an ephemeral random key (sealed values won't survive a restart)
func loadMasterKey() ([]byte, error) {
	var material []byte

	if masterKeyPath != "" {
		data, err := os.ReadFile(masterKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read master key file: %w", err)
		}
		material = data
	} else if envKey := os.Getenv("GAMEHIVE_MASTER_KEY"); envKey != "" {
		material = []byte(envKey)
	} else {
		material = make([]byte, keyLen)
		if _, err := rand.Read(material); err != nil {
			return nil, fmt.Errorf("failed to generate ephemeral master key: %w", err)
		}
	}

	// Stretch arbitrary key material into a uniform AES-256 key
	return argon2.IDKey(material, derivationSalt, argonTime, argonMemory, argonThreads, keyLen), nil
}

func getMasterKey() ([]byte, error) {
	masterKeyOnce.Do(func() {
		masterKey, masterKeyErr = loadMasterKey()
	})
	if masterKeyErr != nil {
		return nil, masterKeyErr
	}
	return masterKey, nil
}

// Seal encrypts plaintext using AES-256-GCM under the derived master key.
// Output format: [12-byte nonce][ciphertext][16-byte auth tag].
func Seal(plaintext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts data produced by Seal and verifies its authentication tag.
func Open(sealed []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(sealed) < nonceSize {
		return nil, fmt.Errorf("sealed value too short")
	}

	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}

	return plaintext, nil
}

func newGCM() (cipher.AEAD, error) {
	key, err := getMasterKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get master key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return gcm, nil
}

// ResetMasterKeyForTesting resets the master key singleton.
// This should ONLY be used in tests.
func ResetMasterKeyForTesting() {
	masterKeyOnce = sync.Once{}
	masterKey = nil
	masterKeyErr = nil
	masterKeyPath = ""
}
