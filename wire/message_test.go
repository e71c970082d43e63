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

package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func encodeDecode(t *testing.T, m Message) Message {
	t.Helper()
	encoded, err := Encode(m)
	require.NoError(t, err)
	decoded, ok := Decode(encoded)
	require.True(t, ok)
	return decoded
}

func TestVersionRoundTrip(t *testing.T) {
	got := encodeDecode(t, Version(2))
	require.Equal(t, uint8(2), got.Version)
}

func TestEphemeralKeyRoundTrip(t *testing.T) {
	pub := make([]byte, 32)
	for i := range pub {
		pub[i] = byte(i)
	}
	got := encodeDecode(t, EphemeralKeyMsg(pub))
	require.Equal(t, pub, got.EphemeralKey)
}

func TestTextRoundTripIgnoringTimestamp(t *testing.T) {
	got := encodeDecode(t, Text("hello there", 12345))
	require.Equal(t, "hello there", got.Text)
	require.Equal(t, uint64(0), got.TimestampMs)
}

func TestFileMetaRoundTrip(t *testing.T) {
	got := encodeDecode(t, FileMeta("report.pdf", 200000))
	require.Equal(t, "report.pdf", got.FileName)
	require.Equal(t, uint64(200000), got.FileSize)
}

func TestFileChunkRoundTripIgnoringSeq(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	got := encodeDecode(t, FileChunk(99, data))
	require.Equal(t, data, got.FileChunkData)
	require.Equal(t, uint64(0), got.FileChunkSeq)
}

func TestFileEndPingTypingRoundTrip(t *testing.T) {
	require.Equal(t, TagFileEnd, encodeDecode(t, FileEnd()).Tag)
	require.Equal(t, TagPing, encodeDecode(t, Ping()).Tag)
	require.Equal(t, TagTypingStart, encodeDecode(t, TypingStart()).Tag)
	require.Equal(t, TagTypingStop, encodeDecode(t, TypingStop()).Tag)
}

func TestDecodeUnknownPrefix(t *testing.T) {
	_, ok := Decode([]byte("GARBAGE:nope"))
	require.False(t, ok)
}

func TestIsHandshakeOnly(t *testing.T) {
	require.True(t, IsHandshakeOnly(TagVersion))
	require.True(t, IsHandshakeOnly(TagEphemeralKey))
	require.False(t, IsHandshakeOnly(TagText))
	require.False(t, IsHandshakeOnly(TagPing))
}

func TestEncodeFileMetaRejectsPipeInName(t *testing.T) {
	_, err := Encode(FileMeta("bad|name.txt", 1))
	require.Error(t, err)
}
