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
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// SessionKeyContext is the fixed HKDF info string for this protocol
// version. Changing it is a deliberate incompatible re-keying, which is
// exactly what makes it useful as a version-binding domain separator.
const SessionKeyContext = "p2p-messenger-v2-forward-secrecy"

// SessionKeySize is the length in bytes of a derived AEAD session key.
const SessionKeySize = 32

// deriveSessionKey runs HKDF-Extract-then-Expand (SHA-256, empty salt,
// context as info) over sharedSecret, producing exactly SessionKeySize
// bytes.
func deriveSessionKey(sharedSecret, context []byte) ([]byte, error) {
	reader := hkdf.New(sha256.New, sharedSecret, nil, context)
	key := make([]byte, SessionKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("hkdf expand: %w", err)
	}
	return key, nil
}
