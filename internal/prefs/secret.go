// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prefs

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/gptchat-tui/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// EncryptedPrefix marks a value as encrypted (format: ENC:base64(nonce|ciphertext|tag))
const EncryptedPrefix = "ENC:"

const (
	keySize    = 32
	saltSize   = 32
	secretSize = 32

	// PBKDF2Iterations is the number of PBKDF2-SHA-256 iterations used to
	// derive the value key from the key file.
	PBKDF2Iterations = 600000
)

var (
	// ErrInvalidCiphertext indicates the ciphertext format is invalid
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	// ErrDecryptionFailed indicates decryption failed (wrong key or tampered data)
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
	// ErrInvalidKeyFile indicates the key file is malformed
	ErrInvalidKeyFile = errors.New("invalid key file")
)

// =============================================================================
// SECRET BOX
// =============================================================================

// SecretBox seals short strings with AES-256-GCM.
type SecretBox struct {
	aead cipher.AEAD
}

// OpenSecretBox loads the key file at path, creating it with fresh random
// material (mode 0600) if it does not exist.
func OpenSecretBox(path string) (*SecretBox, error) {
	material, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		material = make([]byte, secretSize+saltSize)
		if _, err := io.ReadFull(rand.Reader, material); err != nil {
			return nil, fmt.Errorf("failed to generate key material: %w", err)
		}
		if err := util.AtomicWriteFileWithDir(path, material, 0600, 0700); err != nil {
			return nil, fmt.Errorf("failed to save key file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	if len(material) != secretSize+saltSize {
		return nil, ErrInvalidKeyFile
	}
	return NewSecretBox(material[:secretSize], material[secretSize:])
}

// NewSecretBox derives a key from secret and salt with PBKDF2-SHA-256.
func NewSecretBox(secret, salt []byte) (*SecretBox, error) {
	key := pbkdf2.Key(secret, salt, PBKDF2Iterations, keySize, sha256.New)
	defer zeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}
	return &SecretBox{aead: gcm}, nil
}

// Seal encrypts plaintext and returns it base64-encoded with the ENC: prefix.
func (b *SecretBox) Seal(plaintext string) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := b.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal. Values without the ENC: prefix
// are returned as-is.
func (b *SecretBox) Open(value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, EncryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}
	ns := b.aead.NonceSize()
	if len(data) < ns {
		return "", ErrInvalidCiphertext
	}
	plain, err := b.aead.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plain), nil
}

// IsEncrypted checks if a string value is encrypted (has ENC: prefix).
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, EncryptedPrefix)
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// =============================================================================
// SECURE STORE
// =============================================================================

// SecureStore wraps a Store and transparently encrypts the listed keys.
type SecureStore struct {
	Store
	box    *SecretBox
	secret map[string]bool
}

// NewSecureStore returns a Store that seals values of secretKeys with box.
func NewSecureStore(inner Store, box *SecretBox, secretKeys ...string) *SecureStore {
	secret := make(map[string]bool, len(secretKeys))
	for _, k := range secretKeys {
		secret[k] = true
	}
	return &SecureStore{Store: inner, box: box, secret: secret}
}

// Get implements Store, decrypting secret keys.
func (s *SecureStore) Get(key string) (string, bool, error) {
	v, ok, err := s.Store.Get(key)
	if err != nil || !ok || !s.secret[key] {
		return v, ok, err
	}
	plain, err := s.box.Open(v)
	if err != nil {
		return "", false, fmt.Errorf("failed to decrypt %s: %w", key, err)
	}
	return plain, true, nil
}

// Put implements Store, encrypting secret keys.
func (s *SecureStore) Put(key, value string) error {
	if !s.secret[key] || value == "" {
		return s.Store.Put(key, value)
	}
	sealed, err := s.box.Seal(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt %s: %w", key, err)
	}
	return s.Store.Put(key, sealed)
}
