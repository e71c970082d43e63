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
	"strconv"

	"github.com/coldwire/coldwire/internal/logger"
	"github.com/coldwire/coldwire/pkg/health"
	"github.com/coldwire/coldwire/session"
	"github.com/spf13/cobra"
)

var (
	connectHost      string
	connectPort      int
	connectIdentity  string
	connectConfigDir string
	connectWebSocket bool
)

var connectCmd = &cobra.Command{
	Use:     "connect",
	Short:   "Dial a peer and run a session",
	Example: `  coldwire connect --host 10.0.0.5 --port 4433 --identity ./identity/identity.pem`,
	RunE:    runConnect,
}

func init() {
	rootCmd.AddCommand(connectCmd)
	connectCmd.Flags().StringVar(&connectHost, "host", "", "peer host to dial (required)")
	connectCmd.Flags().IntVarP(&connectPort, "port", "p", 0, "peer port to dial (required)")
	connectCmd.Flags().StringVarP(&connectIdentity, "identity", "i", "", "path to identity.pem (required)")
	connectCmd.Flags().StringVarP(&connectConfigDir, "config", "c", "", "config directory (defaults to ./config)")
	connectCmd.Flags().BoolVar(&connectWebSocket, "ws", false, "dial the peer over a WebSocket connection instead of raw TCP")
	_ = connectCmd.MarkFlagRequired("host")
	_ = connectCmd.MarkFlagRequired("port")
	_ = connectCmd.MarkFlagRequired("identity")
}

func runConnect(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig(connectConfigDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cmd.OutOrStdout(), logger.ParseLevel(cfg.LogLevel))

	identity, err := loadIdentityFile(connectIdentity)
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}

	checker := health.NewChecker()
	metricsPort, _ := strconv.Atoi(cfg.MetricsAddr[1:])
	healthServer, err := health.StartHealthServer(metricsPort, checker, log)
	if err != nil {
		return fmt.Errorf("start health server: %w", err)
	}
	defer healthServer.Stop(context.Background())
	checker.SetUp(true)

	events := make(chan session.Event, 32)
	sessCfg := session.Config{
		Identity:         identity,
		TempDir:          cfg.TempDir,
		DestDir:          cfg.DestDir,
		Logger:           log,
		HandshakeTimeout: cfg.HandshakeTimeout,
	}

	var handle session.Handle
	if connectWebSocket {
		handle, err = dialWebSocketSession(cmd.Context(), connectHost, connectPort, sessCfg, events)
	} else {
		addr := fmt.Sprintf("%s:%d", connectHost, connectPort)
		handle, err = session.Connect(cmd.Context(), addr, sessCfg, events)
	}
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	runEventLoop(events, handle, log)
	return nil
}
