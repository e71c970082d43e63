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
	"os"
	"path/filepath"
	"testing"

	"github.com/coldwire/coldwire/protoerr"
	"github.com/coldwire/coldwire/wire"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	require.Equal(t, "normal.txt", SanitizeFilename("normal.txt"))
	require.Equal(t, ".._.._.._etc_passwd", SanitizeFilename("../../../etc/passwd"))
	require.Equal(t, "file_with_bad_chars", SanitizeFilename(`file:with*bad?chars`))
}

func TestSanitizeFilenameCapsLength(t *testing.T) {
	long := make([]byte, 400)
	for i := range long {
		long[i] = 'a'
	}
	got := SanitizeFilename(string(long))
	require.LessOrEqual(t, len(got), maxFilenameLength)
}

func TestFileTransferRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	destDir := t.TempDir()

	srcPath := filepath.Join(tempDir, "source.bin")
	payload := make([]byte, 200000)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	require.NoError(t, os.WriteFile(srcPath, payload, 0o600))

	var incoming *Incoming
	emit := func(m wire.Message) error {
		switch m.Tag {
		case wire.TagFileMeta:
			var err error
			incoming, err = StartIncoming(tempDir, destDir, m.FileName, m.FileSize)
			return err
		case wire.TagFileChunk:
			return incoming.AppendChunk(m.FileChunkData)
		case wire.TagFileEnd:
			_, err := incoming.Finalize()
			return err
		}
		return nil
	}

	require.NoError(t, SendFile(srcPath, emit, nil))
	require.Equal(t, uint64(len(payload)), incoming.ReceivedSize())

	dest := filepath.Join(destDir, "source.bin")
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestFinalizeRejectsSizeMismatch(t *testing.T) {
	tempDir := t.TempDir()
	destDir := t.TempDir()

	in, err := StartIncoming(tempDir, destDir, "report.pdf", 10)
	require.NoError(t, err)
	require.NoError(t, in.AppendChunk([]byte("short")))

	_, err = in.Finalize()
	require.Error(t, err)
	require.Equal(t, protoerr.FileTransferError, protoerr.KindOf(err))

	entries, _ := os.ReadDir(tempDir)
	require.Empty(t, entries, "temp file must be discarded on size mismatch")
}

func TestAppendChunkRejectsOverflow(t *testing.T) {
	tempDir := t.TempDir()
	destDir := t.TempDir()

	in, err := StartIncoming(tempDir, destDir, "x.bin", 4)
	require.NoError(t, err)
	require.NoError(t, in.AppendChunk([]byte("1234")))

	err = in.AppendChunk([]byte("5"))
	require.Error(t, err)
	require.Equal(t, protoerr.FileTransferError, protoerr.KindOf(err))
	in.Abort()
}

func TestFinalizeCollisionAvoidance(t *testing.T) {
	tempDir := t.TempDir()
	destDir := t.TempDir()

	existing := filepath.Join(destDir, "dup.txt")
	require.NoError(t, os.WriteFile(existing, []byte("original"), 0o600))

	in, err := StartIncoming(tempDir, destDir, "dup.txt", 3)
	require.NoError(t, err)
	require.NoError(t, in.AppendChunk([]byte("new")))

	dest, err := in.Finalize()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(destDir, "dup_1.txt"), dest)

	original, err := os.ReadFile(existing)
	require.NoError(t, err)
	require.Equal(t, []byte("original"), original, "prior file at dest/N must be untouched")
}

func TestAbortRemovesTempFile(t *testing.T) {
	tempDir := t.TempDir()
	destDir := t.TempDir()

	in, err := StartIncoming(tempDir, destDir, "partial.bin", 100)
	require.NoError(t, err)
	require.NoError(t, in.AppendChunk([]byte("partial data")))
	in.Abort()

	entries, _ := os.ReadDir(tempDir)
	require.Empty(t, entries)
}
