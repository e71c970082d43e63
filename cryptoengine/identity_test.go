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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentityFingerprintStable(t *testing.T) {
	id, err := GenerateIdentity()
	require.NoError(t, err)
	require.Len(t, id.Fingerprint(), 64)

	reloaded, err := LoadIdentity(mustPrivatePEM(t, id))
	require.NoError(t, err)
	require.Equal(t, id.Fingerprint(), reloaded.Fingerprint())
	require.Equal(t, id.PublicKeyPEM(), reloaded.PublicKeyPEM())
}

func TestParsePublicKeyPEMRoundTrip(t *testing.T) {
	id, err := GenerateIdentity()
	require.NoError(t, err)

	pub, err := ParsePublicKeyPEM(id.PublicKeyPEM())
	require.NoError(t, err)
	require.Equal(t, id.public, pub)

	fp := FingerprintOfPublicKeyPEM(id.PublicKeyPEM())
	require.Equal(t, id.Fingerprint(), fp)
}

func TestParsePublicKeyPEMRejectsWrongBlockType(t *testing.T) {
	id, err := GenerateIdentity()
	require.NoError(t, err)
	priv, err := id.PrivateKeyPEM()
	require.NoError(t, err)

	_, err = ParsePublicKeyPEM(priv)
	require.Error(t, err)
}

func mustPrivatePEM(t *testing.T, id *Identity) []byte {
	t.Helper()
	pem, err := id.PrivateKeyPEM()
	require.NoError(t, err)
	return pem
}
