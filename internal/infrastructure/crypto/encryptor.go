// Package crypto implements field-level encryption for payout destinations.
//
// Values are sealed with AES-256-GCM using a key expanded from the configured
// secret via HKDF-SHA256. Ciphertext is base64(nonce || sealed) so it can be
// stored in a plain text column.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const keySize = 32

// ErrInvalidCiphertext is returned when a stored value cannot be opened
var ErrInvalidCiphertext = errors.New("crypto: invalid ciphertext")

// FieldEncryptor seals and opens short sensitive strings
type FieldEncryptor struct {
	aead cipher.AEAD
}

// NewFieldEncryptor derives an AES-256 key from the secret and prepares the
// AEAD. The secret can be any non-empty string; HKDF stretches it.
func NewFieldEncryptor(secret string) (*FieldEncryptor, error) {
	if secret == "" {
		return nil, errors.New("crypto: encryption secret cannot be empty")
	}

	key := make([]byte, keySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("payout-destination"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("crypto: key derivation failed: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: cipher init failed: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: gcm init failed: %w", err)
	}
	return &FieldEncryptor{aead: aead}, nil
}

// Encrypt seals the plaintext and returns a storable string
func (e *FieldEncryptor) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypto: nonce generation failed: %w", err)
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt
func (e *FieldEncryptor) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	ns := e.aead.NonceSize()
	if len(raw) < ns {
		return "", ErrInvalidCiphertext
	}
	plain, err := e.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plain), nil
}

// MaskDestination renders a payout destination safe for display and logs,
// keeping the leading four and trailing two characters, e.g. "2547***78".
func MaskDestination(destination string) string {
	d := strings.TrimSpace(destination)
	if len(d) <= 6 {
		return strings.Repeat("*", len(d))
	}
	return d[:4] + "***" + d[len(d)-2:]
}
