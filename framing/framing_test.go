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

package framing

import (
	"bytes"
	"io"
	"net"
	"testing"

	"github.com/coldwire/coldwire/protoerr"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello frame")

	require.NoError(t, SendFrame(&buf, payload))
	got, err := RecvFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestRoundTripLargePayload(t *testing.T) {
	var buf bytes.Buffer
	payload := bytes.Repeat([]byte{0xAB}, 1024*1024)

	require.NoError(t, SendFrame(&buf, payload))
	got, err := RecvFrame(&buf)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestSendRejectsOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	payload := make([]byte, MaxPayloadSize+1)

	err := SendFrame(&buf, payload)
	require.Error(t, err)
	require.Equal(t, protoerr.FrameTooLarge, protoerr.KindOf(err))
	require.Equal(t, 0, buf.Len())
}

func TestRecvRejectsOversizedHeader(t *testing.T) {
	var buf bytes.Buffer
	var header [4]byte
	big := uint32(MaxPayloadSize + 1)
	header[0] = byte(big >> 24)
	header[1] = byte(big >> 16)
	header[2] = byte(big >> 8)
	header[3] = byte(big)
	buf.Write(header[:])

	_, err := RecvFrame(&buf)
	require.Error(t, err)
	require.Equal(t, protoerr.FrameTooLarge, protoerr.KindOf(err))
}

func TestMultipleFramesBackToBack(t *testing.T) {
	var buf bytes.Buffer
	messages := [][]byte{[]byte("one"), []byte("two"), []byte("three")}
	for _, m := range messages {
		require.NoError(t, SendFrame(&buf, m))
	}
	for _, want := range messages {
		got, err := RecvFrame(&buf)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestRecvEOFOnEmptyStream(t *testing.T) {
	_, err := RecvFrame(bytes.NewReader(nil))
	require.Error(t, err)
}

func TestRecvUnexpectedEOFMidPayload(t *testing.T) {
	var buf bytes.Buffer
	var header [4]byte
	header[3] = 10 // declares 10 bytes, supplies none
	buf.Write(header[:])

	_, err := RecvFrame(&buf)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestOverNetPipe(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	done := make(chan error, 1)
	go func() {
		done <- SendFrame(clientConn, []byte("over the wire"))
	}()

	got, err := RecvFrame(serverConn)
	require.NoError(t, err)
	require.Equal(t, []byte("over the wire"), got)
	require.NoError(t, <-done)
}
