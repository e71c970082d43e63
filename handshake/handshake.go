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

// Package handshake drives the v2 handshake state machine to a shared
// AEAD session key and a user-verified peer fingerprint:
// version negotiation, identity exchange with a blocking fingerprint
// checkpoint, then ephemeral ECDH key agreement.
package handshake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/coldwire/coldwire/cryptoengine"
	"github.com/coldwire/coldwire/framing"
	"github.com/coldwire/coldwire/protoerr"
	"github.com/coldwire/coldwire/wire"
)

// Role identifies which side of the handshake a participant plays.
// Both roles drive the same state set; only who speaks first at each
// step differs.
type Role int

const (
	Host Role = iota
	Client
)

// ProtocolVersion is the only version this implementation speaks. A
// peer announcing a lower version is rejected.
const ProtocolVersion uint8 = 2

// Timeout is the full handshake budget, including the time spent
// waiting on the fingerprint verdict.
const Timeout = 15 * time.Second

// Result is everything the session supervisor needs once the
// handshake reaches Ready.
type Result struct {
	PeerFingerprint string
	PeerIdentityPEM []byte
	Cipher          *cryptoengine.SessionCipher
}

// FingerprintEmitter is called exactly once, with the peer's
// fingerprint, as soon as the identity exchange completes. The caller
// is expected to surface this upward (SessionEvent.PeerFingerprint)
// and collect the user's accept/reject verdict on verdictRx.
type FingerprintEmitter func(fingerprint string, peerIdentityPEM []byte)

// Run drives the handshake to completion over stream, blocking on
// verdictRx for the fingerprint-acceptance checkpoint. It never
// auto-accepts: if verdictRx yields false, is closed without a value,
// or the deadline elapses first, the handshake fails with
// FingerprintRejected or HandshakeTimeout respectively and no
// ephemeral key is ever sent. timeout overrides the default Timeout
// budget; a zero or negative value falls back to Timeout.
func Run(ctx context.Context, stream io.ReadWriter, role Role, identity *cryptoengine.Identity, timeout time.Duration, onFingerprint func(fingerprint string, peerIdentityPEM []byte), verdictRx <-chan bool) (*Result, error) {
	if timeout <= 0 {
		timeout = Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Frame reads and writes do not observe ctx, so the stream is closed
	// when the budget ends to cut off a peer that stalls mid-exchange.
	if closer, ok := stream.(io.Closer); ok {
		defer context.AfterFunc(ctx, func() { _ = closer.Close() })()
	}

	drive := runClient
	if role == Host {
		drive = runHost
	}
	result, err := drive(ctx, stream, identity, onFingerprint, verdictRx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, protoerr.New(protoerr.HandshakeTimeout)
	}
	return result, err
}

func runHost(ctx context.Context, stream io.ReadWriter, identity *cryptoengine.Identity, onFingerprint func(string, []byte), verdictRx <-chan bool) (*Result, error) {
	if err := sendVersion(stream); err != nil {
		return nil, err
	}
	if err := recvAndCheckVersion(stream); err != nil {
		return nil, err
	}
	if err := sendIdentity(stream, identity); err != nil {
		return nil, err
	}
	peerPEM, fingerprint, err := recvIdentity(stream)
	if err != nil {
		return nil, err
	}
	if err := awaitVerdict(ctx, fingerprint, peerPEM, onFingerprint, verdictRx); err != nil {
		return nil, err
	}
	eph, err := cryptoengine.GenerateEphemeral()
	if err != nil {
		return nil, protoerr.Wrap(protoerr.TransportIo, err)
	}
	if err := sendEphemeral(stream, eph); err != nil {
		return nil, err
	}
	peerEphPub, err := recvEphemeral(stream)
	if err != nil {
		return nil, err
	}
	return finish(eph, peerEphPub, fingerprint, peerPEM)
}

func runClient(ctx context.Context, stream io.ReadWriter, identity *cryptoengine.Identity, onFingerprint func(string, []byte), verdictRx <-chan bool) (*Result, error) {
	if err := recvAndCheckVersion(stream); err != nil {
		return nil, err
	}
	if err := sendVersion(stream); err != nil {
		return nil, err
	}
	peerPEM, fingerprint, err := recvIdentity(stream)
	if err != nil {
		return nil, err
	}
	if err := sendIdentity(stream, identity); err != nil {
		return nil, err
	}
	if err := awaitVerdict(ctx, fingerprint, peerPEM, onFingerprint, verdictRx); err != nil {
		return nil, err
	}
	peerEphPub, err := recvEphemeral(stream)
	if err != nil {
		return nil, err
	}
	eph, err := cryptoengine.GenerateEphemeral()
	if err != nil {
		return nil, protoerr.Wrap(protoerr.TransportIo, err)
	}
	if err := sendEphemeral(stream, eph); err != nil {
		return nil, err
	}
	return finish(eph, peerEphPub, fingerprint, peerPEM)
}

func finish(eph *cryptoengine.Ephemeral, peerEphPub []byte, fingerprint string, peerPEM []byte) (*Result, error) {
	key, err := eph.Derive(peerEphPub, []byte(cryptoengine.SessionKeyContext))
	if err != nil {
		return nil, protoerr.Wrap(protoerr.MalformedHandshake, err)
	}
	defer cryptoengine.Zeroize(key)

	cipher, err := cryptoengine.NewSessionCipher(key)
	if err != nil {
		return nil, protoerr.Wrap(protoerr.MalformedHandshake, err)
	}
	return &Result{PeerFingerprint: fingerprint, PeerIdentityPEM: peerPEM, Cipher: cipher}, nil
}

func sendVersion(stream io.Writer) error {
	payload, err := wire.Encode(wire.Version(ProtocolVersion))
	if err != nil {
		return protoerr.Wrap(protoerr.MalformedHandshake, err)
	}
	return framing.SendFrame(stream, payload)
}

func recvAndCheckVersion(stream io.Reader) error {
	payload, err := framing.RecvFrame(stream)
	if err != nil {
		return err
	}
	msg, ok := wire.Decode(payload)
	if !ok || msg.Tag != wire.TagVersion {
		return protoerr.New(protoerr.MalformedHandshake)
	}
	if msg.Version < ProtocolVersion {
		return protoerr.Newf(protoerr.UnsupportedVersion, "peer announced version %d", msg.Version)
	}
	return nil
}

// sendIdentity frames the identity's public key PEM directly — this is
// a pre-codec step, not a WireMessage.
func sendIdentity(stream io.Writer, identity *cryptoengine.Identity) error {
	return framing.SendFrame(stream, identity.PublicKeyPEM())
}

func recvIdentity(stream io.Reader) (peerPEM []byte, fingerprint string, err error) {
	peerPEM, err = framing.RecvFrame(stream)
	if err != nil {
		return nil, "", err
	}
	if _, err := cryptoengine.ParsePublicKeyPEM(peerPEM); err != nil {
		return nil, "", protoerr.Wrap(protoerr.MalformedHandshake, fmt.Errorf("parse peer identity: %w", err))
	}
	return peerPEM, cryptoengine.FingerprintOfPublicKeyPEM(peerPEM), nil
}

func awaitVerdict(ctx context.Context, fingerprint string, peerPEM []byte, onFingerprint func(string, []byte), verdictRx <-chan bool) error {
	if onFingerprint != nil {
		onFingerprint(fingerprint, peerPEM)
	}
	select {
	case accepted, ok := <-verdictRx:
		if !ok || !accepted {
			return protoerr.New(protoerr.FingerprintRejected)
		}
		return nil
	case <-ctx.Done():
		return protoerr.New(protoerr.HandshakeTimeout)
	}
}

func sendEphemeral(stream io.Writer, eph *cryptoengine.Ephemeral) error {
	payload, err := wire.Encode(wire.EphemeralKeyMsg(eph.PublicBytes()))
	if err != nil {
		return protoerr.Wrap(protoerr.MalformedHandshake, err)
	}
	return framing.SendFrame(stream, payload)
}

func recvEphemeral(stream io.Reader) ([]byte, error) {
	payload, err := framing.RecvFrame(stream)
	if err != nil {
		return nil, err
	}
	msg, ok := wire.Decode(payload)
	if !ok || msg.Tag != wire.TagEphemeralKey {
		return nil, protoerr.New(protoerr.MalformedHandshake)
	}
	if len(msg.EphemeralKey) != cryptoengine.EphemeralPublicKeySize {
		return nil, protoerr.Newf(protoerr.MalformedHandshake, "ephemeral key is %d bytes, want %d", len(msg.EphemeralKey), cryptoengine.EphemeralPublicKeySize)
	}
	return msg.EphemeralKey, nil
}
