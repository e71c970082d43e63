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
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/coldwire/coldwire/cryptoengine"
	"github.com/coldwire/coldwire/internal/config"
	"github.com/coldwire/coldwire/internal/logger"
	"github.com/coldwire/coldwire/session"
)

func loadIdentityFile(path string) (*cryptoengine.Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read identity file %s: %w", path, err)
	}
	return cryptoengine.LoadIdentity(data)
}

func loadAppConfig(configDir string) (config.Config, error) {
	if configDir == "" {
		return config.Load()
	}
	return config.Load(config.LoaderOptions{ConfigDir: configDir, Environment: config.Environment()})
}

// promptFingerprintVerdict reads a single accept/reject line from
// stdin. It never auto-accepts: if stdin is closed or unreadable
// before a line arrives, the verdict channel is simply never written,
// and the handshake times out per its own 15-second budget.
func promptFingerprintVerdict(fingerprint, display string, verdictTx chan<- bool) {
	fmt.Printf("peer fingerprint: %s (%s...)\n", fingerprint, display)
	fmt.Print("accept this peer? [y/N]: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	verdictTx <- answer == "y" || answer == "yes"
}

// runEventLoop drains events until Disconnected or Error, logging each
// one and prompting for the fingerprint verdict on handle.VerdictTx
// when it arrives. It returns once the session has terminated.
func runEventLoop(events <-chan session.Event, handle session.Handle, log logger.Logger) {
	for ev := range events {
		switch ev.Kind {
		case session.EventListening:
			log.Info("listening", logger.Int("port", ev.Port))
		case session.EventConnected:
			log.Info("connected", logger.String("peer", ev.PeerAddr))
		case session.EventPeerFingerprint:
			promptFingerprintVerdict(ev.Fingerprint, ev.PeerDisplay, handle.VerdictTx)
		case session.EventReady:
			log.Info("session ready")
		case session.EventMessageReceived:
			log.Info("message received", logger.Any("tag", ev.Message.Tag))
		case session.EventDisconnected:
			log.Info("disconnected", logger.String("reason", ev.Reason))
			return
		case session.EventError:
			log.Error("session error", logger.String("reason", ev.Reason))
			return
		case session.EventWarning:
			log.Warn("session warning", logger.String("reason", ev.Reason))
		}
	}
}
