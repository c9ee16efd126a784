package config

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrUnsealFailed is returned when a sealed value fails authentication.
var ErrUnsealFailed = errors.New("failed to unseal value")

// Sealer encrypts stored API credentials with NaCl secretbox.
type Sealer struct {
	key [32]byte
}

// NewSealer creates a sealer from a 64-character hex key.
func NewSealer(hexKey string) (*Sealer, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, fmt.Errorf("invalid CREDENTIALS_KEY: %v", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("CREDENTIALS_KEY must be 32 bytes, got: %d", len(raw))
	}
	s := &Sealer{}
	copy(s.key[:], raw)
	return s, nil
}

// NewSealerFromEnv reads CREDENTIALS_KEY (required).
func NewSealerFromEnv() (*Sealer, error) {
	key := os.Getenv("CREDENTIALS_KEY")
	if key == "" {
		return nil, fmt.Errorf("CREDENTIALS_KEY is required but not set")
	}
	return NewSealer(key)
}

// Seal encrypts plaintext and returns base64(nonce || box).
func (s *Sealer) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(box), nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrUnsealFailed
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrUnsealFailed
	}
	return string(plain), nil
}
