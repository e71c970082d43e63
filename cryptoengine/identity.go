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

// Package cryptoengine implements the cryptographic primitives of the
// secure session stack: long-lived RSA identity keys used only for
// fingerprinting, ephemeral X25519 keys for forward secrecy, HKDF-SHA256
// session key derivation, and AES-256-GCM transport encryption.
package cryptoengine

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
)

// IdentityKeyBits is the RSA modulus size for identity keypairs. The
// identity key is used exclusively to identify and fingerprint a peer;
// it never performs bulk or key-wrapping encryption.
const IdentityKeyBits = 2048

// pemBlockTypePrivate and pemBlockTypePublic are the PEM block type
// strings used for identity key encoding, matching PKCS#8 / SPKI.
const (
	pemBlockTypePrivate = "PRIVATE KEY"
	pemBlockTypePublic  = "PUBLIC KEY"
)

// Identity is a long-lived RSA-2048 keypair plus its derived fingerprint.
type Identity struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey

	publicPEM   []byte
	fingerprint string
}

// GenerateIdentity creates a fresh RSA-2048 identity keypair.
func GenerateIdentity() (*Identity, error) {
	priv, err := rsa.GenerateKey(rand.Reader, IdentityKeyBits)
	if err != nil {
		return nil, fmt.Errorf("generate identity key: %w", err)
	}
	return newIdentity(priv)
}

func newIdentity(priv *rsa.PrivateKey) (*Identity, error) {
	pubPEM, err := encodePublicPEM(&priv.PublicKey)
	if err != nil {
		return nil, err
	}
	return &Identity{
		private:     priv,
		public:      &priv.PublicKey,
		publicPEM:   pubPEM,
		fingerprint: fingerprintOfPEM(pubPEM),
	}, nil
}

// LoadIdentity parses a PKCS#8 PEM-encoded RSA private key.
func LoadIdentity(privatePEM []byte) (*Identity, error) {
	block, _ := pem.Decode(privatePEM)
	if block == nil || block.Type != pemBlockTypePrivate {
		return nil, errors.New("cryptoengine: expected PKCS#8 PRIVATE KEY PEM block")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse PKCS#8 private key: %w", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("cryptoengine: identity key must be RSA, got %T", key)
	}
	return newIdentity(rsaKey)
}

// PrivateKeyPEM serialises the private key as a PKCS#8 PEM block.
func (id *Identity) PrivateKeyPEM() ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(id.private)
	if err != nil {
		return nil, fmt.Errorf("marshal PKCS#8 private key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemBlockTypePrivate, Bytes: der}), nil
}

// PublicKeyPEM returns the canonical PKCS#8/SPKI PEM encoding of the
// public key, UTF-8 bytes, as framed directly on the wire during the
// handshake.
func (id *Identity) PublicKeyPEM() []byte {
	return id.publicPEM
}

// Fingerprint returns the 64-character lowercase-hex SHA-256 fingerprint
// of the canonical public-key PEM encoding.
func (id *Identity) Fingerprint() string {
	return id.fingerprint
}

func encodePublicPEM(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("marshal SPKI public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemBlockTypePublic, Bytes: der}), nil
}

// ParsePublicKeyPEM parses a peer's PKCS#8/SPKI PEM-encoded RSA public
// key, as received verbatim over the wire during the identity exchange.
func ParsePublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != pemBlockTypePublic {
		return nil, errors.New("cryptoengine: expected SPKI PUBLIC KEY PEM block")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse SPKI public key: %w", err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("cryptoengine: peer identity key must be RSA, got %T", pub)
	}
	return rsaPub, nil
}

// FingerprintOfPublicKeyPEM computes the peer fingerprint from the raw
// PEM bytes exactly as received on the wire, without re-encoding them —
// the fingerprint is over the PEM bytes themselves, not the DER.
func FingerprintOfPublicKeyPEM(pemBytes []byte) string {
	return fingerprintOfPEM(pemBytes)
}

func fingerprintOfPEM(pemBytes []byte) string {
	sum := sha256.Sum256(pemBytes)
	return hex.EncodeToString(sum[:])
}
