// Package phi encrypts patient contact fields at rest.
package phi

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// ciphertextPrefix marks stored values produced by AESEncryptor, so rows
// written before a key was configured still read back as plaintext.
const ciphertextPrefix = "enc:v1:"

// FieldEncryptor encrypts and decrypts single string fields.
type FieldEncryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(stored string) (string, error)
}

// AESEncryptor is an AES-256-GCM FieldEncryptor.
type AESEncryptor struct {
	aead cipher.AEAD
}

// NewAESEncryptor creates an encryptor from a 32-byte key.
func NewAESEncryptor(key []byte) (*AESEncryptor, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("phi encryptor: key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("phi encryptor: create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("phi encryptor: create GCM: %w", err)
	}

	return &AESEncryptor{aead: aead}, nil
}

// Encrypt returns the prefixed base64 of nonce||ciphertext.
func (e *AESEncryptor) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("phi encrypt: generate nonce: %w", err)
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return ciphertextPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Values without the prefix are returned unchanged.
func (e *AESEncryptor) Decrypt(stored string) (string, error) {
	encoded, ok := strings.CutPrefix(stored, ciphertextPrefix)
	if !ok {
		return stored, nil
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("phi decrypt: base64 decode: %w", err)
	}

	nonceSize := e.aead.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("phi decrypt: ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("phi decrypt: %w", err)
	}
	return string(plaintext), nil
}

// EncryptFields encrypts each field in place. A nil encryptor is a no-op.
func EncryptFields(enc FieldEncryptor, fields ...*string) error {
	if enc == nil {
		return nil
	}
	for _, f := range fields {
		out, err := enc.Encrypt(*f)
		if err != nil {
			return err
		}
		*f = out
	}
	return nil
}

// DecryptFields decrypts each field in place. A nil encryptor is a no-op.
func DecryptFields(enc FieldEncryptor, fields ...*string) error {
	if enc == nil {
		return nil
	}
	for _, f := range fields {
		out, err := enc.Decrypt(*f)
		if err != nil {
			return err
		}
		*f = out
	}
	return nil
}
