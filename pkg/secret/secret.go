// Package secret encrypts small payloads with a symmetric key using
// NaCl secretbox. Sealed values are nonce-prefixed and base64 encoded
// so they can be stored in any text column.
package secret

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

var (
	// ErrInvalidKey indicates the configured key is not 32 bytes.
	ErrInvalidKey = errors.New("encryption key must be 32 bytes (64 hex characters)")

	// ErrDecryptFailed indicates the ciphertext was tampered with or
	// sealed under a different key.
	ErrDecryptFailed = errors.New("failed to decrypt value")
)

// Box seals and opens values under a fixed symmetric key.
type Box struct {
	key [keySize]byte
}

// NewBox creates a Box from a hex-encoded 32-byte key.
func NewBox(hexKey string) (*Box, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, ErrInvalidKey
	}
	if len(raw) != keySize {
		return nil, ErrInvalidKey
	}

	b := &Box{}
	copy(b.key[:], raw)
	return b, nil
}

// Seal encrypts plaintext and returns a base64 string safe for storage.
func (b *Box) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &b.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal.
func (b *Box) Open(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrDecryptFailed
	}
	if len(sealed) < nonceSize {
		return "", ErrDecryptFailed
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plaintext, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &b.key)
	if !ok {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}
