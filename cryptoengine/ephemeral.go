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
	"crypto/ecdh"
	"crypto/rand"
	"errors"
	"fmt"
)

// EphemeralPublicKeySize is the length in bytes of an encoded X25519
// public key.
const EphemeralPublicKeySize = 32

// ErrEphemeralConsumed is returned when Derive is called more than once
// on the same keypair. An ephemeral private key is one-shot: it is
// consumed by its single key-agreement call and must never be reused.
var ErrEphemeralConsumed = errors.New("cryptoengine: ephemeral private key already consumed")

// ErrInvalidPeerPublicKey is returned when a peer-supplied ephemeral
// public key is not a valid 32-byte X25519 point.
var ErrInvalidPeerPublicKey = errors.New("cryptoengine: invalid ephemeral public key")

// Ephemeral is a single-use X25519 keypair generated fresh per session.
type Ephemeral struct {
	priv     *ecdh.PrivateKey
	consumed bool
}

// GenerateEphemeral creates a new ephemeral X25519 keypair.
func GenerateEphemeral() (*Ephemeral, error) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", err)
	}
	return &Ephemeral{priv: priv}, nil
}

// PublicBytes returns the 32-byte encoded public point.
func (e *Ephemeral) PublicBytes() []byte {
	return e.priv.PublicKey().Bytes()
}

// Derive computes the X25519 shared secret against peerPublic and
// stretches it into a 32-byte session key via HKDF-SHA256 bound to
// context. The private scalar is consumed by this call; a second call
// returns ErrEphemeralConsumed.
func (e *Ephemeral) Derive(peerPublic, context []byte) ([]byte, error) {
	if e.consumed {
		return nil, ErrEphemeralConsumed
	}
	e.consumed = true

	if len(peerPublic) != EphemeralPublicKeySize {
		return nil, ErrInvalidPeerPublicKey
	}
	peerKey, err := ecdh.X25519().NewPublicKey(peerPublic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeerPublicKey, err)
	}

	shared, err := e.priv.ECDH(peerKey)
	if err != nil {
		return nil, fmt.Errorf("compute shared secret: %w", err)
	}
	defer Zeroize(shared)

	return deriveSessionKey(shared, context)
}
