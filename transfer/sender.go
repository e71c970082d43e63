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
	"io"
	"os"

	"github.com/coldwire/coldwire/protoerr"
	"github.com/coldwire/coldwire/wire"
)

// ChunkSize is the maximum payload size of a single FileChunk, chosen
// to comfortably clear frame/AEAD overhead within the 8 MiB frame cap.
const ChunkSize = 64 * 1024

// ProgressFunc is called after each chunk is sent with bytes sent so
// far and the total file size.
type ProgressFunc func(sent, total uint64)

// SendFile streams path as FileMeta, a series of FileChunk messages of
// at most ChunkSize bytes, and a final FileEnd, passing each message
// to emit. emit is expected to AEAD-encrypt and frame the
// message; SendFile itself only produces the wire.Message values in
// order.
func SendFile(path string, emit func(wire.Message) error, progress ProgressFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return protoerr.Wrap(protoerr.FileTransferError, fmt.Errorf("open file: %w", err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return protoerr.Wrap(protoerr.FileTransferError, fmt.Errorf("stat file: %w", err))
	}
	size := uint64(info.Size())

	name := info.Name()
	if err := emit(wire.FileMeta(name, size)); err != nil {
		return err
	}

	buf := make([]byte, ChunkSize)
	var sent uint64
	var seq uint64
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if err := emit(wire.FileChunk(seq, chunk)); err != nil {
				return err
			}
			seq++
			sent += uint64(n)
			if progress != nil {
				progress(sent, size)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return protoerr.Wrap(protoerr.FileTransferError, fmt.Errorf("read file: %w", readErr))
		}
	}

	return emit(wire.FileEnd())
}
