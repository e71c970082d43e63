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

package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// wsDuplex adapts gorilla/websocket's message-oriented Conn to the
// byte-stream io.ReadWriteCloser contract framing requires, buffering
// partial reads across WebSocket message boundaries.
type wsDuplex struct {
	conn    *websocket.Conn
	reading []byte
}

// DialWebSocket dials a WebSocket endpoint and returns a duplex stream
// suitable for framing.SendFrame/RecvFrame.
func DialWebSocket(ctx context.Context, url string) (io.ReadWriteCloser, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: websocket dial %s: %w", url, err)
	}
	return &wsDuplex{conn: conn}, nil
}

// UpgradeWebSocket upgrades an incoming HTTP request to a WebSocket
// connection and returns the resulting duplex stream, for use by an
// HTTP handler that then hands the stream to a session.
func UpgradeWebSocket(w http.ResponseWriter, r *http.Request) (io.ReadWriteCloser, error) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  64 * 1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: websocket upgrade: %w", err)
	}
	return &wsDuplex{conn: conn}, nil
}

// Read satisfies io.Reader by draining one binary WebSocket message at
// a time into p, buffering any remainder for the next call.
func (d *wsDuplex) Read(p []byte) (int, error) {
	for len(d.reading) == 0 {
		_, msg, err := d.conn.ReadMessage()
		if err != nil {
			return 0, fmt.Errorf("transport: websocket read: %w", err)
		}
		d.reading = msg
	}
	n := copy(p, d.reading)
	d.reading = d.reading[n:]
	return n, nil
}

// Write sends p as one binary WebSocket message.
func (d *wsDuplex) Write(p []byte) (int, error) {
	if err := d.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, fmt.Errorf("transport: websocket write: %w", err)
	}
	return len(p), nil
}

// Flush is a no-op: gorilla/websocket writes each message immediately.
func (d *wsDuplex) Flush() error { return nil }

// Close closes the underlying WebSocket connection.
func (d *wsDuplex) Close() error {
	return d.conn.Close()
}
