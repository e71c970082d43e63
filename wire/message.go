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

// Package wire implements the ASCII-prefixed tagged-union encoding of
// every payload that can appear inside a post-handshake frame.
package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag identifies a WireMessage variant.
type Tag int

const (
	TagVersion Tag = iota
	TagEphemeralKey
	TagText
	TagFileMeta
	TagFileChunk
	TagFileEnd
	TagPing
	TagTypingStart
	TagTypingStop
)

const (
	prefixVersion      = "VERSION:"
	prefixEphemeralKey = "EPHEMERAL_KEY:"
	prefixText         = "TEXT:"
	prefixFileMeta     = "FILE_META|"
	prefixFileChunk    = "FILE_CHUNK:"
	prefixFileEnd      = "FILE_END:"
	prefixPing         = "PING"
	prefixTypingStart  = "TYPING_START"
	prefixTypingStop   = "TYPING_STOP"
)

// Message is the tagged union of every post-handshake (and, for
// Version/EphemeralKey, handshake-phase) wire payload.
type Message struct {
	Tag Tag

	Version      uint8
	EphemeralKey []byte

	// Text carries the sender-local millisecond timestamp. It is not
	// transmitted on the wire — Decode leaves TimestampMs zero, and the
	// session's read loop stamps it with local receipt time.
	Text        string
	TimestampMs uint64

	FileName string
	FileSize uint64

	// FileChunkSeq is never transmitted; it always decodes to zero.
	// Concurrent file transfers on one session are unsupported by this
	// wire format, so receivers must treat chunks as in-order appends
	// to whatever transfer is currently open.
	FileChunkSeq  uint64
	FileChunkData []byte
}

// Version constructs a Version message.
func Version(v uint8) Message { return Message{Tag: TagVersion, Version: v} }

// EphemeralKeyMsg constructs an EphemeralKey message.
func EphemeralKeyMsg(pub []byte) Message { return Message{Tag: TagEphemeralKey, EphemeralKey: pub} }

// Text constructs a Text message with a sender-local timestamp.
func Text(body string, timestampMs uint64) Message {
	return Message{Tag: TagText, Text: body, TimestampMs: timestampMs}
}

// FileMeta constructs a FileMeta message.
func FileMeta(name string, size uint64) Message {
	return Message{Tag: TagFileMeta, FileName: name, FileSize: size}
}

// FileChunk constructs a FileChunk message. seq is accepted for
// caller-side bookkeeping only; it is discarded by Encode.
func FileChunk(seq uint64, data []byte) Message {
	return Message{Tag: TagFileChunk, FileChunkSeq: seq, FileChunkData: data}
}

// FileEnd constructs a FileEnd message.
func FileEnd() Message { return Message{Tag: TagFileEnd} }

// Ping constructs a Ping message.
func Ping() Message { return Message{Tag: TagPing} }

// TypingStart constructs a TypingStart message.
func TypingStart() Message { return Message{Tag: TagTypingStart} }

// TypingStop constructs a TypingStop message.
func TypingStop() Message { return Message{Tag: TagTypingStop} }

// Encode renders m as its canonical ASCII-prefixed wire form.
func Encode(m Message) ([]byte, error) {
	switch m.Tag {
	case TagVersion:
		return []byte(prefixVersion + strconv.Itoa(int(m.Version))), nil
	case TagEphemeralKey:
		return append([]byte(prefixEphemeralKey), m.EphemeralKey...), nil
	case TagText:
		return append([]byte(prefixText), []byte(m.Text)...), nil
	case TagFileMeta:
		if strings.ContainsRune(m.FileName, '|') {
			return nil, fmt.Errorf("wire: file name must not contain '|': %q", m.FileName)
		}
		return []byte(prefixFileMeta + m.FileName + "|" + strconv.FormatUint(m.FileSize, 10)), nil
	case TagFileChunk:
		return append([]byte(prefixFileChunk), m.FileChunkData...), nil
	case TagFileEnd:
		return []byte(prefixFileEnd), nil
	case TagPing:
		return []byte(prefixPing), nil
	case TagTypingStart:
		return []byte(prefixTypingStart), nil
	case TagTypingStop:
		return []byte(prefixTypingStop), nil
	default:
		return nil, fmt.Errorf("wire: unknown tag %v", m.Tag)
	}
}

// Decode dispatches on the longest matching prefix. An unrecognised
// prefix returns (Message{}, false) rather than an error — the caller
// decides whether an unknown prefix is fatal.
func Decode(data []byte) (Message, bool) {
	s := string(data)

	switch {
	case strings.HasPrefix(s, prefixVersion):
		v, err := strconv.Atoi(strings.TrimPrefix(s, prefixVersion))
		if err != nil || v < 0 || v > 255 {
			return Message{}, false
		}
		return Version(uint8(v)), true

	case strings.HasPrefix(s, prefixEphemeralKey):
		return Message{Tag: TagEphemeralKey, EphemeralKey: data[len(prefixEphemeralKey):]}, true

	case strings.HasPrefix(s, prefixFileMeta):
		rest := s[len(prefixFileMeta):]
		idx := strings.LastIndex(rest, "|")
		if idx < 0 {
			return Message{}, false
		}
		name := rest[:idx]
		size, err := strconv.ParseUint(rest[idx+1:], 10, 64)
		if err != nil {
			return Message{}, false
		}
		return FileMeta(name, size), true

	case strings.HasPrefix(s, prefixFileChunk):
		return Message{Tag: TagFileChunk, FileChunkSeq: 0, FileChunkData: data[len(prefixFileChunk):]}, true

	case strings.HasPrefix(s, prefixFileEnd):
		return FileEnd(), true

	case strings.HasPrefix(s, prefixText):
		return Message{Tag: TagText, Text: s[len(prefixText):]}, true

	case s == prefixPing:
		return Ping(), true

	case s == prefixTypingStart:
		return TypingStart(), true

	case s == prefixTypingStop:
		return TypingStop(), true

	default:
		return Message{}, false
	}
}

// IsHandshakeOnly reports whether a tag is reserved for the handshake
// phase (Version, EphemeralKey) and therefore must never be accepted
// from the outbound command channel after Ready.
func IsHandshakeOnly(tag Tag) bool {
	return tag == TagVersion || tag == TagEphemeralKey
}
