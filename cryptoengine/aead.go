// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package cryptoengine

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// NonceSize and TagSize describe the AES-256-GCM framing used for every
// post-handshake message: nonce(12) || ciphertext || tag(16).
const (
	NonceSize = 12
	TagSize   = 16
)

// ErrDecryptFailed is returned for any AEAD open failure. It
// deliberately does not distinguish a wrong key from tampered
// ciphertext.
var ErrDecryptFailed = errors.New("cryptoengine: decrypt failed")

// SessionCipher wraps an AES-256-GCM AEAD bound to one session key.
type SessionCipher struct {
	key   []byte
	aead  cipher.AEAD
}

// NewSessionCipher constructs an AEAD over a 32-byte session key.
func NewSessionCipher(key []byte) (*SessionCipher, error) {
	if len(key) != SessionKeySize {
		return nil, fmt.Errorf("cryptoengine: session key must be %d bytes, got %d", SessionKeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm mode: %w", err)
	}
	owned := make([]byte, len(key))
	copy(owned, key)
	return &SessionCipher{key: owned, aead: aead}, nil
}

// Seal encrypts plaintext with a fresh random nonce, returning
// nonce || ciphertext || tag as one contiguous buffer.
func (c *SessionCipher) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	out := make([]byte, 0, NonceSize+len(plaintext)+TagSize)
	out = append(out, nonce...)
	out = c.aead.Seal(out, nonce, plaintext, nil)
	return out, nil
}

// Open splits the nonce from data and decrypts the remainder. Any
// failure — short input, wrong key, tampered ciphertext — collapses to
// ErrDecryptFailed.
func (c *SessionCipher) Open(data []byte) ([]byte, error) {
	if len(data) < NonceSize+TagSize {
		return nil, ErrDecryptFailed
	}
	nonce, ciphertext := data[:NonceSize], data[NonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

// Close zeroises the session key. The underlying AEAD instance must
// not be used afterward.
func (c *SessionCipher) Close() {
	Zeroize(c.key)
}
