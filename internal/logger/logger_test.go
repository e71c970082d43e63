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

package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogsAtOrAboveLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, WarnLevel)

	log.Info("should not appear")
	require.Empty(t, buf.String())

	log.Warn("should appear", String("session_id", "abc"))
	require.Contains(t, buf.String(), "should appear")
	require.Contains(t, buf.String(), "abc")
}

func TestWithAttachesFieldsToEveryRecord(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, DebugLevel).With(String("session_id", "s1"))

	log.Info("ready")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "s1", record["session_id"])
	require.Equal(t, "ready", record["msg"])
	require.Equal(t, "info", record["level"])
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, DebugLevel, ParseLevel("debug"))
	require.Equal(t, WarnLevel, ParseLevel("WARN"))
	require.Equal(t, ErrorLevel, ParseLevel("error"))
	require.Equal(t, InfoLevel, ParseLevel("nonsense"))
}
