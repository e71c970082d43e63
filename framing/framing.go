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

// Package framing implements length-prefixed packet I/O over any
// bidirectional byte stream. It is independent of cryptography and of
// any particular transport: the stream may be a net.Conn, a net.Pipe
// test double, or the websocket-backed duplex in the transport package.
package framing

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/coldwire/coldwire/protoerr"
)

// MaxPayloadSize is the largest payload a single frame may carry.
const MaxPayloadSize = 8 * 1024 * 1024 // 8 MiB

const headerSize = 4

// SendFrame writes a length-prefixed frame: a 4-byte big-endian length
// followed by payload. It rejects oversize payloads before writing
// anything.
func SendFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return protoerr.Newf(protoerr.FrameTooLarge, "payload %d bytes exceeds max %d", len(payload), MaxPayloadSize)
	}

	var header [headerSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))

	if _, err := w.Write(header[:]); err != nil {
		return protoerr.Wrap(protoerr.TransportIo, fmt.Errorf("write frame header: %w", err))
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return protoerr.Wrap(protoerr.TransportIo, fmt.Errorf("write frame payload: %w", err))
		}
	}
	if f, ok := w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return protoerr.Wrap(protoerr.TransportIo, fmt.Errorf("flush frame: %w", err))
		}
	}
	return nil
}

// RecvFrame reads exactly one frame: a 4-byte big-endian length,
// validated against MaxPayloadSize before any further read, then
// exactly that many payload bytes. It loops internally over partial
// reads and never buffers leftover bytes — the caller sees one frame
// per call.
func RecvFrame(r io.Reader) ([]byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return nil, protoerr.Wrap(protoerr.TransportIo, io.EOF)
		}
		return nil, protoerr.Wrap(protoerr.TransportIo, fmt.Errorf("read frame header: %w", err))
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > MaxPayloadSize {
		return nil, protoerr.Newf(protoerr.FrameTooLarge, "declared length %d exceeds max %d", length, MaxPayloadSize)
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, protoerr.Wrap(protoerr.TransportIo, fmt.Errorf("read frame payload: %w", err))
		}
	}
	return payload, nil
}
