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

// Package session drives one peer connection from accept/connect
// through the handshake and into the steady-state message loop: the
// length-prefixed, AEAD-protected multiplexing of outbound commands
// and inbound frames, plus the chunked file-transfer bookkeeping
// layered on top of it.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/coldwire/coldwire/cryptoengine"
	"github.com/coldwire/coldwire/framing"
	"github.com/coldwire/coldwire/handshake"
	"github.com/coldwire/coldwire/internal/logger"
	"github.com/coldwire/coldwire/internal/metrics"
	"github.com/coldwire/coldwire/protoerr"
	"github.com/coldwire/coldwire/transfer"
	"github.com/coldwire/coldwire/transport"
	"github.com/coldwire/coldwire/wire"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// CommandQueueSize bounds the outbound command channel. A bounded
// channel is what gives a slow peer real back-pressure against a
// file-sending goroutine (see SPEC_FULL.md §4.6).
const CommandQueueSize = 32

// Config supplies everything a session needs beyond the socket
// itself. The core never reads configuration or environment directly;
// callers (cmd/coldwire) are responsible for resolving these.
type Config struct {
	Identity *cryptoengine.Identity
	TempDir  string
	DestDir  string
	Logger   logger.Logger

	// HandshakeTimeout overrides handshake.Timeout for this session's
	// handshake budget. Zero falls back to the package default.
	HandshakeTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = logger.NewDefault()
	}
	if c.TempDir == "" {
		c.TempDir = "."
	}
	if c.DestDir == "" {
		c.DestDir = "."
	}
	return c
}

// Handle is what a caller holds onto for the lifetime of one session:
// a channel to push outbound WireMessages and a one-shot channel to
// deliver the fingerprint verdict.
type Handle struct {
	CmdTx    chan<- wire.Message
	VerdictTx chan<- bool
}

// Listen binds port, accepts exactly one connection, and runs a
// session as Host. It emits Listening as soon as the socket is bound,
// then runs the rest of the session in a background goroutine.
func Listen(ctx context.Context, addr string, cfg Config, eventsTx chan<- Event) (Handle, error) {
	cfg = cfg.withDefaults()

	ln, err := transport.ListenTCP(addr)
	if err != nil {
		return Handle{}, protoerr.Wrap(protoerr.TransportIo, err)
	}

	eventsTx <- Event{Kind: EventListening, Port: ln.Addr().(*net.TCPAddr).Port}

	cmdTx := make(chan wire.Message, CommandQueueSize)
	verdictTx := make(chan bool, 1)

	go func() {
		conn, err := ln.Accept()
		_ = ln.Close()
		if err != nil {
			eventsTx <- Event{Kind: EventError, Reason: err.Error()}
			return
		}
		peerAddr := conn.RemoteAddr().String()
		eventsTx <- Event{Kind: EventConnected, PeerAddr: peerAddr}
		run(ctx, conn, peerAddr, handshake.Host, cfg, eventsTx, cmdTx, verdictTx)
	}()

	return Handle{CmdTx: cmdTx, VerdictTx: verdictTx}, nil
}

// Connect dials host:port and runs a session as Client. It emits
// Connected immediately after TCP connect succeeds.
func Connect(ctx context.Context, addr string, cfg Config, eventsTx chan<- Event) (Handle, error) {
	cfg = cfg.withDefaults()

	conn, err := transport.DialTCP(ctx, addr)
	if err != nil {
		return Handle{}, protoerr.Wrap(protoerr.TransportIo, err)
	}
	peerAddr := conn.RemoteAddr().String()
	eventsTx <- Event{Kind: EventConnected, PeerAddr: peerAddr}

	cmdTx := make(chan wire.Message, CommandQueueSize)
	verdictTx := make(chan bool, 1)

	go run(ctx, conn, peerAddr, handshake.Client, cfg, eventsTx, cmdTx, verdictTx)

	return Handle{CmdTx: cmdTx, VerdictTx: verdictTx}, nil
}

// ListenStream runs a session as Host over an already-established
// duplex stream — a transport.UpgradeWebSocket result, a net.Conn
// handed off by some other acceptor, or any other io.ReadWriteCloser —
// for callers that don't go through transport.ListenTCP. It emits
// Connected immediately, since the stream already exists.
func ListenStream(ctx context.Context, stream io.ReadWriteCloser, peerAddr string, cfg Config, eventsTx chan<- Event) Handle {
	cfg = cfg.withDefaults()
	eventsTx <- Event{Kind: EventConnected, PeerAddr: peerAddr}

	cmdTx := make(chan wire.Message, CommandQueueSize)
	verdictTx := make(chan bool, 1)

	go run(ctx, stream, peerAddr, handshake.Host, cfg, eventsTx, cmdTx, verdictTx)

	return Handle{CmdTx: cmdTx, VerdictTx: verdictTx}
}

// ConnectStream runs a session as Client over an already-established
// duplex stream — a transport.DialWebSocket result or any other
// io.ReadWriteCloser — for callers that don't go through
// transport.DialTCP. It emits Connected immediately, since the stream
// already exists.
func ConnectStream(ctx context.Context, stream io.ReadWriteCloser, peerAddr string, cfg Config, eventsTx chan<- Event) Handle {
	cfg = cfg.withDefaults()
	eventsTx <- Event{Kind: EventConnected, PeerAddr: peerAddr}

	cmdTx := make(chan wire.Message, CommandQueueSize)
	verdictTx := make(chan bool, 1)

	go run(ctx, stream, peerAddr, handshake.Client, cfg, eventsTx, cmdTx, verdictTx)

	return Handle{CmdTx: cmdTx, VerdictTx: verdictTx}
}

func roleLabel(role handshake.Role) string {
	if role == handshake.Host {
		return "host"
	}
	return "client"
}

// run drives one connection end to end: handshake, then the message
// loop, then cleanup. Exactly one of Disconnected/Error is emitted
// before this returns. stream may be a raw TCP net.Conn or any other
// io.ReadWriteCloser duplex (e.g. a WebSocket adapter from the
// transport package) — the loop below never assumes more than that.
func run(ctx context.Context, stream io.ReadWriteCloser, peerAddr string, role handshake.Role, cfg Config, eventsTx chan<- Event, cmdTx <-chan wire.Message, verdictRx <-chan bool) {
	defer stream.Close()

	log := cfg.Logger.With(logger.String("role", roleLabel(role)), logger.String("peer", peerAddr))
	metrics.SessionsCreated.WithLabelValues(roleLabel(role)).Inc()
	metrics.SessionsActive.Inc()
	defer metrics.SessionsActive.Dec()

	metrics.HandshakesInitiated.WithLabelValues(roleLabel(role)).Inc()
	handshakeStart := time.Now()

	sessionID := uuid.NewString()
	var peerDisplay string

	onFingerprint := func(fp string, _ []byte) {
		peerDisplay = fp[:16]
		eventsTx <- Event{
			Kind:        EventPeerFingerprint,
			Fingerprint: fp,
			PeerDisplay: peerDisplay,
			SessionID:   sessionID,
		}
	}

	result, err := handshake.Run(ctx, stream, role, cfg.Identity, cfg.HandshakeTimeout, onFingerprint, verdictRx)
	metrics.HandshakeDuration.WithLabelValues("handshake").Observe(time.Since(handshakeStart).Seconds())
	if err != nil {
		kind := protoerr.KindOf(err)
		metrics.HandshakesFailed.WithLabelValues(string(kind)).Inc()
		metrics.HandshakesCompleted.WithLabelValues("rejected").Inc()
		log.Warn("handshake failed", logger.Err(err))
		eventsTx <- Event{Kind: EventError, Reason: err.Error()}
		return
	}
	metrics.HandshakesCompleted.WithLabelValues("accepted").Inc()
	log.Info("handshake complete", logger.String("fingerprint", result.PeerFingerprint))
	eventsTx <- Event{Kind: EventReady}

	reason, disconnected := messageLoop(ctx, stream, result.Cipher, cfg, eventsTx, cmdTx, log)
	if disconnected {
		metrics.SessionsClosed.Inc()
		eventsTx <- Event{Kind: EventDisconnected, Reason: reason}
	} else {
		metrics.SessionsDisconnected.WithLabelValues(reason).Inc()
		eventsTx <- Event{Kind: EventError, Reason: reason}
	}
}

// messageLoop runs the reader/writer goroutine pair for the lifetime
// of the connection. It returns a reason string and whether the
// termination was a clean disconnect (true) or an error (false).
func messageLoop(parent context.Context, stream io.ReadWriteCloser, cipher *cryptoengine.SessionCipher, cfg Config, eventsTx chan<- Event, cmdTx <-chan wire.Message, log logger.Logger) (string, bool) {
	defer cipher.Close()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)

	// Frame reads and writes do not observe ctx; closing the stream once
	// ctx ends is what unblocks a loop parked in a frame call.
	go func() {
		<-ctx.Done()
		_ = stream.Close()
	}()

	group.Go(func() error {
		return readLoop(ctx, stream, cipher, cfg, eventsTx, log)
	})
	group.Go(func() error {
		return writeLoop(ctx, stream, cipher, cmdTx, eventsTx, log)
	})

	err := group.Wait()
	if parent.Err() != nil {
		return "cancelled", true
	}
	if err == nil || err == io.EOF {
		return "peer_closed", true
	}
	kind := protoerr.KindOf(err)
	return string(kind), false
}

func readLoop(ctx context.Context, stream io.Reader, cipher *cryptoengine.SessionCipher, cfg Config, eventsTx chan<- Event, log logger.Logger) error {
	var incoming *transfer.Incoming
	defer func() {
		if incoming != nil {
			incoming.Abort()
		}
	}()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		sealed, err := framing.RecvFrame(stream)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.EOF
			}
			if protoerr.KindOf(err) != protoerr.TransportIo {
				metrics.FramesRejected.WithLabelValues("too_large").Inc()
			}
			return err
		}
		metrics.FramesTotal.WithLabelValues("received").Inc()
		metrics.FrameSizeBytes.WithLabelValues("received").Observe(float64(len(sealed)))

		plaintext, err := cipher.Open(sealed)
		if err != nil {
			return protoerr.Wrap(protoerr.DecryptFailure, err)
		}

		msg, ok := wire.Decode(plaintext)
		if !ok {
			eventsTx <- Event{Kind: EventWarning, Reason: "unrecognised frame prefix"}
			continue
		}

		if wire.IsHandshakeOnly(msg.Tag) {
			eventsTx <- Event{Kind: EventWarning, Reason: "handshake-only message received in message loop"}
			continue
		}

		if msg.Tag == wire.TagText {
			msg.TimestampMs = uint64(time.Now().UnixMilli())
		}

		switch msg.Tag {
		case wire.TagFileMeta:
			if incoming != nil {
				return protoerr.New(protoerr.ProtocolViolation)
			}
			in, err := transfer.StartIncoming(cfg.TempDir, cfg.DestDir, msg.FileName, msg.FileSize)
			if err != nil {
				return err
			}
			incoming = in

		case wire.TagFileChunk:
			if incoming == nil {
				return protoerr.New(protoerr.ProtocolViolation)
			}
			if err := incoming.AppendChunk(msg.FileChunkData); err != nil {
				incoming.Abort()
				incoming = nil
				metrics.FileTransfersTotal.WithLabelValues("receive", "size_mismatch").Inc()
				return err
			}

		case wire.TagFileEnd:
			if incoming == nil {
				return protoerr.New(protoerr.ProtocolViolation)
			}
			dest, err := incoming.Finalize()
			size := incoming.ExpectedSize()
			incoming = nil
			if err != nil {
				metrics.FileTransfersTotal.WithLabelValues("receive", "aborted").Inc()
				eventsTx <- Event{Kind: EventWarning, Reason: err.Error()}
			} else {
				metrics.FileTransfersTotal.WithLabelValues("receive", "completed").Inc()
				metrics.FileTransferBytes.WithLabelValues("receive").Observe(float64(size))
				log.Info("file received", logger.String("path", dest), logger.Uint64("size", size))
			}

		case wire.TagPing:
			log.Debug("ping received")
		}

		eventsTx <- Event{Kind: EventMessageReceived, Message: msg}
	}
}

func writeLoop(ctx context.Context, stream io.Writer, cipher *cryptoengine.SessionCipher, cmdTx <-chan wire.Message, eventsTx chan<- Event, log logger.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-cmdTx:
			if !ok {
				<-ctx.Done()
				return ctx.Err()
			}
			if wire.IsHandshakeOnly(msg.Tag) {
				eventsTx <- Event{Kind: EventWarning, Reason: "refusing to send handshake-only message post-handshake"}
				continue
			}

			plaintext, err := wire.Encode(msg)
			if err != nil {
				return protoerr.Wrap(protoerr.ProtocolViolation, fmt.Errorf("encode outbound message: %w", err))
			}
			sealed, err := cipher.Seal(plaintext)
			if err != nil {
				return protoerr.Wrap(protoerr.TransportIo, err)
			}
			if err := framing.SendFrame(stream, sealed); err != nil {
				return err
			}
			metrics.FramesTotal.WithLabelValues("sent").Inc()
			metrics.FrameSizeBytes.WithLabelValues("sent").Observe(float64(len(sealed)))

			if msg.Tag == wire.TagFileEnd {
				log.Debug("file end sent")
			}
		}
	}
}
