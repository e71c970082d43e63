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

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/coldwire/coldwire/session"
	"github.com/coldwire/coldwire/transport"
)

// acceptWebSocketSession binds addr, emits Listening on eventsTx once
// bound, then upgrades the first incoming HTTP request into a
// WebSocket duplex and hands it to session.ListenStream as Host. Like
// session.Listen, it serves exactly one connection before it stops
// accepting more.
func acceptWebSocketSession(ctx context.Context, addr string, cfg session.Config, eventsTx chan<- session.Event) (session.Handle, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return session.Handle{}, fmt.Errorf("listen %s: %w", addr, err)
	}
	eventsTx <- session.Event{Kind: session.EventListening, Port: ln.Addr().(*net.TCPAddr).Port}

	mux := http.NewServeMux()
	srv := &http.Server{Handler: mux}

	handleCh := make(chan session.Handle, 1)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		stream, err := transport.UpgradeWebSocket(w, r)
		if err != nil {
			return
		}
		handleCh <- session.ListenStream(ctx, stream, r.RemoteAddr, cfg, eventsTx)
		go srv.Close()
	})

	go srv.Serve(ln)
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	return <-handleCh, nil
}

// dialWebSocketSession dials a WebSocket endpoint at ws://host:port/
// and hands the resulting duplex stream to session.ConnectStream as
// Client.
func dialWebSocketSession(ctx context.Context, host string, port int, cfg session.Config, eventsTx chan<- session.Event) (session.Handle, error) {
	url := fmt.Sprintf("ws://%s:%d/", host, port)
	stream, err := transport.DialWebSocket(ctx, url)
	if err != nil {
		return session.Handle{}, err
	}
	return session.ConnectStream(ctx, stream, url, cfg, eventsTx), nil
}
