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

// Package protoerr defines the closed error taxonomy the secure session
// stack surfaces upward. Every error that terminates a session or a
// handshake carries one of these kinds; nothing else is distinguished.
package protoerr

import (
	"errors"
	"fmt"
)

// Kind is one of the fixed set of error categories the core
// distinguishes. Adding a new kind is a protocol-level decision, not a
// per-package convenience.
type Kind string

const (
	TransportIo         Kind = "TransportIo"
	FrameTooLarge       Kind = "FrameTooLarge"
	UnsupportedVersion  Kind = "UnsupportedVersion"
	MalformedHandshake  Kind = "MalformedHandshake"
	FingerprintRejected Kind = "FingerprintRejected"
	HandshakeTimeout    Kind = "HandshakeTimeout"
	DecryptFailure      Kind = "DecryptFailure"
	FileTransferError   Kind = "FileTransferError"
	ProtocolViolation   Kind = "ProtocolViolation"
)

// Error wraps an underlying cause with one of the fixed Kinds. Its
// Error() string is the "kind followed by optional detail" format the
// reason string in a SessionEvent.Error must take.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
}

// New builds an *Error with no detail or wrapped cause.
func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

// Newf builds an *Error with a formatted detail string.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error around a causal error, preserving it for
// errors.Is/errors.As unwrapping.
func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf extracts the Kind from err if it (or something it wraps) is a
// *Error; otherwise it returns TransportIo as the conservative default
// for an error this taxonomy has no better name for.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return TransportIo
}
