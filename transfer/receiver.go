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

package transfer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/coldwire/coldwire/protoerr"
	"github.com/google/uuid"
)

// Incoming tracks one file transfer on the receive side, from FileMeta
// through FileEnd or abort.
type Incoming struct {
	tempPath     string
	file         *os.File
	expectedSize uint64
	receivedSize uint64
	sanitizedName string
	destDir      string
}

// StartIncoming opens a new temp file in tempDir under a
// UUID-prefixed name derived from the sanitised filename, and records
// the expected size announced in FileMeta.
func StartIncoming(tempDir, destDir, announcedName string, expectedSize uint64) (*Incoming, error) {
	sanitized := SanitizeFilename(announcedName)
	if sanitized == "" {
		sanitized = "unnamed"
	}

	tempName := fmt.Sprintf("tmp_%s_%s", uuid.NewString(), sanitized)
	tempPath := filepath.Join(tempDir, tempName)

	f, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return nil, protoerr.Wrap(protoerr.FileTransferError, fmt.Errorf("create temp file: %w", err))
	}

	return &Incoming{
		tempPath:      tempPath,
		file:          f,
		expectedSize:  expectedSize,
		sanitizedName: sanitized,
		destDir:       destDir,
	}, nil
}

// ReceivedSize reports bytes appended so far.
func (in *Incoming) ReceivedSize() uint64 { return in.receivedSize }

// ExpectedSize reports the size announced by FileMeta.
func (in *Incoming) ExpectedSize() uint64 { return in.expectedSize }

// AppendChunk writes chunk to the temp file, failing if it would push
// the received size past the expected size.
func (in *Incoming) AppendChunk(chunk []byte) error {
	if in.receivedSize+uint64(len(chunk)) > in.expectedSize {
		return protoerr.Newf(protoerr.FileTransferError, "received would exceed expected size %d", in.expectedSize)
	}
	if _, err := in.file.Write(chunk); err != nil {
		return protoerr.Wrap(protoerr.FileTransferError, fmt.Errorf("write chunk: %w", err))
	}
	in.receivedSize += uint64(len(chunk))
	return nil
}

// Finalize verifies the received size matches what was announced,
// fsyncs, and atomically renames the temp file into destDir under a
// collision-free name (appending _1, _2, ... before the extension).
// It returns the final destination path.
func (in *Incoming) Finalize() (string, error) {
	if in.receivedSize != in.expectedSize {
		in.abortCleanup()
		return "", protoerr.Newf(protoerr.FileTransferError,
			"size mismatch: received %d, expected %d", in.receivedSize, in.expectedSize)
	}

	if err := in.file.Sync(); err != nil {
		in.abortCleanup()
		return "", protoerr.Wrap(protoerr.FileTransferError, fmt.Errorf("fsync: %w", err))
	}
	if err := in.file.Close(); err != nil {
		in.abortCleanup()
		return "", protoerr.Wrap(protoerr.FileTransferError, fmt.Errorf("close temp file: %w", err))
	}

	dest := collisionFreeDestination(in.destDir, in.sanitizedName)
	if err := os.Rename(in.tempPath, dest); err != nil {
		_ = os.Remove(in.tempPath)
		return "", protoerr.Wrap(protoerr.FileTransferError, fmt.Errorf("rename into place: %w", err))
	}
	return dest, nil
}

// Abort discards the temp file. Called on protocol error or peer
// disconnect before FileEnd.
func (in *Incoming) Abort() {
	in.abortCleanup()
}

func (in *Incoming) abortCleanup() {
	_ = in.file.Close()
	_ = os.Remove(in.tempPath)
}

// collisionFreeDestination appends _1, _2, ... before the extension
// until an unused path is found.
func collisionFreeDestination(destDir, name string) string {
	candidate := filepath.Join(destDir, name)
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate = filepath.Join(destDir, fmt.Sprintf("%s_%d%s", base, n, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
