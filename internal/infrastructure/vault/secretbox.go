// Package vault seals credential secrets with NaCl secretbox.
package vault

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
	prefix    = "sb1:"
)

// ErrSealedFormat is returned for values that were not produced by Seal
var ErrSealedFormat = errors.New("vault: malformed sealed value")

// ErrOpen is returned when a sealed value fails authentication
var ErrOpen = errors.New("vault: cannot open sealed value")

// Sealer encrypts and authenticates short secrets with a single key
type Sealer struct {
	key  [keySize]byte
	rand io.Reader
}

// NewSealer parses a hex-encoded 32-byte key
func NewSealer(hexKey string) (*Sealer, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, fmt.Errorf("vault: key is not hex: %w", err)
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("vault: key must be %d bytes, got %d", keySize, len(raw))
	}
	s := &Sealer{rand: rand.Reader}
	copy(s.key[:], raw)
	return s, nil
}

// Seal returns "sb1:" followed by base64(nonce || box)
func (s *Sealer) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(s.rand, nonce[:]); err != nil {
		return "", fmt.Errorf("vault: read nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return prefix + base64.StdEncoding.EncodeToString(box), nil
}

// Open reverses Seal
func (s *Sealer) Open(sealed string) (string, error) {
	encoded, ok := strings.CutPrefix(sealed, prefix)
	if !ok {
		return "", ErrSealedFormat
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrSealedFormat
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrOpen
	}
	return string(plain), nil
}
