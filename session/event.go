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

import "github.com/coldwire/coldwire/wire"

// EventKind identifies a SessionEvent variant. The set is closed:
// adding a kind is a protocol-level decision, mirrored in SPEC_FULL.md.
type EventKind int

const (
	EventListening EventKind = iota
	EventConnected
	EventPeerFingerprint
	EventReady
	EventMessageReceived
	EventDisconnected
	EventError
	EventWarning
)

func (k EventKind) String() string {
	switch k {
	case EventListening:
		return "Listening"
	case EventConnected:
		return "Connected"
	case EventPeerFingerprint:
		return "PeerFingerprint"
	case EventReady:
		return "Ready"
	case EventMessageReceived:
		return "MessageReceived"
	case EventDisconnected:
		return "Disconnected"
	case EventError:
		return "Error"
	case EventWarning:
		return "Warning"
	default:
		return "Unknown"
	}
}

// Event is emitted upward by a running session. Exactly one field
// group is populated per Kind; the rest are zero.
type Event struct {
	Kind EventKind

	// Listening
	Port int

	// Connected
	PeerAddr string

	// PeerFingerprint
	Fingerprint string
	PeerDisplay string
	SessionID   string

	// MessageReceived
	Message wire.Message

	// Error / Warning / Disconnected(reason)
	Reason string
}
