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

package handshake

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/coldwire/coldwire/cryptoengine"
	"github.com/coldwire/coldwire/framing"
	"github.com/coldwire/coldwire/protoerr"
	"github.com/coldwire/coldwire/wire"
	"github.com/stretchr/testify/require"
)

func newIdentity(t *testing.T) *cryptoengine.Identity {
	t.Helper()
	id, err := cryptoengine.GenerateIdentity()
	require.NoError(t, err)
	return id
}

func runPair(t *testing.T, hostVerdict, clientVerdict <-chan bool) (hostResult, clientResult *Result, hostErr, clientErr error) {
	t.Helper()
	hostConn, clientConn := net.Pipe()
	defer hostConn.Close()
	defer clientConn.Close()

	hostID := newIdentity(t)
	clientID := newIdentity(t)

	type out struct {
		res *Result
		err error
	}
	hostCh := make(chan out, 1)
	clientCh := make(chan out, 1)

	go func() {
		r, err := Run(context.Background(), hostConn, Host, hostID, 0, nil, hostVerdict)
		if err != nil {
			hostConn.Close()
		}
		hostCh <- out{r, err}
	}()
	go func() {
		r, err := Run(context.Background(), clientConn, Client, clientID, 0, nil, clientVerdict)
		if err != nil {
			clientConn.Close()
		}
		clientCh <- out{r, err}
	}()

	ho := <-hostCh
	co := <-clientCh
	return ho.res, co.res, ho.err, co.err
}

func TestHandshakeHappyPath(t *testing.T) {
	accept := make(chan bool, 1)
	accept <- true
	acceptClient := make(chan bool, 1)
	acceptClient <- true

	hostRes, clientRes, hostErr, clientErr := runPair(t, accept, acceptClient)
	require.NoError(t, hostErr)
	require.NoError(t, clientErr)
	require.NotNil(t, hostRes)
	require.NotNil(t, clientRes)
	require.Len(t, hostRes.PeerFingerprint, 64)
	require.Len(t, clientRes.PeerFingerprint, 64)
}

func TestHandshakeFingerprintRejected(t *testing.T) {
	reject := make(chan bool, 1)
	reject <- false
	accept := make(chan bool, 1)
	accept <- true

	_, _, hostErr, clientErr := runPair(t, reject, accept)
	require.Error(t, hostErr)
	require.Equal(t, protoerr.FingerprintRejected, protoerr.KindOf(hostErr))
	// client's peer (host) hung up after rejecting, so client also fails
	require.Error(t, clientErr)
}

func TestHandshakeTimeoutWithNoVerdict(t *testing.T) {
	never := make(chan bool)

	hostConn, clientConn := net.Pipe()
	defer hostConn.Close()
	defer clientConn.Close()

	hostID := newIdentity(t)
	clientID := newIdentity(t)

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := runHostWithDeadline(ctx, hostConn, hostID, never)
		done <- err
	}()
	go func() {
		accept := make(chan bool, 1)
		accept <- true
		_, _ = Run(context.Background(), clientConn, Client, clientID, 0, nil, accept)
	}()

	err := <-done
	require.Error(t, err)
	require.Equal(t, protoerr.HandshakeTimeout, protoerr.KindOf(err))
}

// runHostWithDeadline lets the test drive a short context deadline
// directly into Run's internal WithTimeout by racing it — Run always
// applies its own 15s ceiling, so this helper wraps it with an already
// short-lived parent context, which is what actually fires first.
func runHostWithDeadline(ctx context.Context, stream net.Conn, identity *cryptoengine.Identity, verdictRx <-chan bool) (*Result, error) {
	return Run(ctx, stream, Host, identity, 0, nil, verdictRx)
}

func TestHandshakeTimeoutOverride(t *testing.T) {
	never := make(chan bool)

	hostConn, clientConn := net.Pipe()
	defer hostConn.Close()
	defer clientConn.Close()

	hostID := newIdentity(t)
	clientID := newIdentity(t)

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		_, err := Run(context.Background(), hostConn, Host, hostID, 50*time.Millisecond, nil, never)
		done <- err
	}()
	go func() {
		accept := make(chan bool, 1)
		accept <- true
		_, _ = Run(context.Background(), clientConn, Client, clientID, 0, nil, accept)
	}()

	err := <-done
	require.Error(t, err)
	require.Equal(t, protoerr.HandshakeTimeout, protoerr.KindOf(err))
	require.Less(t, time.Since(start), Timeout, "custom timeout should fire well before the default budget")
}

func TestHandshakeVersionMismatch(t *testing.T) {
	hostConn, clientConn := net.Pipe()
	defer hostConn.Close()

	go func() {
		// Drain the host's Version(2) frame, then announce version 1.
		_, _ = framing.RecvFrame(clientConn)
		payload, _ := wire.Encode(wire.Version(1))
		_ = framing.SendFrame(clientConn, payload)
		clientConn.Close()
	}()

	hostID := newIdentity(t)
	verdict := make(chan bool, 1)
	_, err := Run(context.Background(), hostConn, Host, hostID, 0, nil, verdict)
	require.Error(t, err)
	require.Equal(t, protoerr.UnsupportedVersion, protoerr.KindOf(err))
}
