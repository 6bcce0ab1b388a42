package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// FieldCipher encrypts individual string fields with AES-256-GCM.
// A nil *FieldCipher passes values through unchanged.
type FieldCipher struct {
	gcm cipher.AEAD
}

// ParseEncryptionKey decodes a base64-encoded 32-byte key.
func ParseEncryptionKey(keyBase64 string) ([]byte, error) {
	if keyBase64 == "" {
		return nil, errors.New("ENCRYPTION_KEY not set")
	}

	keyBytes, err := base64.StdEncoding.DecodeString(keyBase64)
	if err != nil {
		return nil, errors.New("ENCRYPTION_KEY must be base64-encoded")
	}

	if len(keyBytes) != 32 {
		return nil, errors.New("ENCRYPTION_KEY must decode to exactly 32 bytes (256 bits)")
	}

	return keyBytes, nil
}

// NewFieldCipher builds a cipher from a base64 key as found in ENCRYPTION_KEY.
func NewFieldCipher(keyBase64 string) (*FieldCipher, error) {
	key, err := ParseEncryptionKey(keyBase64)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &FieldCipher{gcm: gcm}, nil
}

// Encrypt encrypts plaintext; the nonce is prepended to the ciphertext.
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	if c == nil || plaintext == "" {
		return plaintext, nil
	}

	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := c.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt.
func (c *FieldCipher) Decrypt(ciphertext string) (string, error) {
	if c == nil || ciphertext == "" {
		return ciphertext, nil
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}

	nonceSize := c.gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertextBytes := data[:nonceSize], data[nonceSize:]
	plaintext, err := c.gcm.Open(nil, nonce, ciphertextBytes, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}
