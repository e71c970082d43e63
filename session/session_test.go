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

package session

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/coldwire/coldwire/cryptoengine"
	"github.com/coldwire/coldwire/wire"
	"github.com/stretchr/testify/require"
)

func newTestIdentity(t *testing.T) *cryptoengine.Identity {
	t.Helper()
	id, err := cryptoengine.GenerateIdentity()
	require.NoError(t, err)
	return id
}

func waitForKind(t *testing.T, ch <-chan Event, kind EventKind, timeout time.Duration) Event {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-ch:
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %v", kind)
		}
	}
}

func TestSessionHappyPathTextExchange(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hostEvents := make(chan Event, 32)
	hostHandle, err := Listen(ctx, "127.0.0.1:0", Config{Identity: newTestIdentity(t)}, hostEvents)
	require.NoError(t, err)

	listening := waitForKind(t, hostEvents, EventListening, 2*time.Second)
	require.NotZero(t, listening.Port)

	clientEvents := make(chan Event, 32)
	clientHandle, err := Connect(ctx, "127.0.0.1:"+portString(listening.Port), Config{Identity: newTestIdentity(t)}, clientEvents)
	require.NoError(t, err)

	hostFP := waitForKind(t, hostEvents, EventPeerFingerprint, 2*time.Second)
	hostHandle.VerdictTx <- true
	clientFP := waitForKind(t, clientEvents, EventPeerFingerprint, 2*time.Second)
	clientHandle.VerdictTx <- true

	require.Len(t, hostFP.Fingerprint, 64)
	require.Len(t, clientFP.Fingerprint, 64)

	waitForKind(t, hostEvents, EventReady, 2*time.Second)
	waitForKind(t, clientEvents, EventReady, 2*time.Second)

	clientHandle.CmdTx <- wire.Text("hello", 0)
	recv := waitForKind(t, hostEvents, EventMessageReceived, 2*time.Second)
	require.Equal(t, wire.TagText, recv.Message.Tag)
	require.Equal(t, "hello", recv.Message.Text)
	require.NotZero(t, recv.Message.TimestampMs)

	hostHandle.CmdTx <- wire.Text("world", 0)
	recv2 := waitForKind(t, clientEvents, EventMessageReceived, 2*time.Second)
	require.Equal(t, "world", recv2.Message.Text)
}

func TestSessionFingerprintRejection(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hostEvents := make(chan Event, 32)
	hostHandle, err := Listen(ctx, "127.0.0.1:0", Config{Identity: newTestIdentity(t)}, hostEvents)
	require.NoError(t, err)
	listening := waitForKind(t, hostEvents, EventListening, 2*time.Second)

	clientEvents := make(chan Event, 32)
	clientHandle, err := Connect(ctx, "127.0.0.1:"+portString(listening.Port), Config{Identity: newTestIdentity(t)}, clientEvents)
	require.NoError(t, err)

	waitForKind(t, hostEvents, EventPeerFingerprint, 2*time.Second)
	hostHandle.VerdictTx <- false
	waitForKind(t, clientEvents, EventPeerFingerprint, 2*time.Second)
	clientHandle.VerdictTx <- true

	ev := waitForKind(t, hostEvents, EventError, 2*time.Second)
	require.Contains(t, ev.Reason, "FingerprintRejected")
}

func portString(p int) string {
	return strconv.Itoa(p)
}
