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
	listenPort      int
	listenIdentity  string
	listenConfigDir string
	listenWebSocket bool
)

var listenCmd = &cobra.Command{
	Use:     "listen",
	Short:   "Accept one peer connection and run a session",
	Example: `  coldwire listen --port 4433 --identity ./identity/identity.pem`,
	RunE:    runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)
	listenCmd.Flags().IntVarP(&listenPort, "port", "p", 0, "port to listen on (0 = OS-assigned)")
	listenCmd.Flags().StringVarP(&listenIdentity, "identity", "i", "", "path to identity.pem (required)")
	listenCmd.Flags().StringVarP(&listenConfigDir, "config", "c", "", "config directory (defaults to ./config)")
	listenCmd.Flags().BoolVar(&listenWebSocket, "ws", false, "accept the peer over a WebSocket upgrade instead of raw TCP")
	_ = listenCmd.MarkFlagRequired("identity")
}

func runListen(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig(listenConfigDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cmd.OutOrStdout(), logger.ParseLevel(cfg.LogLevel))

	identity, err := loadIdentityFile(listenIdentity)
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

	addr := fmt.Sprintf(":%d", listenPort)
	events := make(chan session.Event, 32)
	sessCfg := session.Config{
		Identity:         identity,
		TempDir:          cfg.TempDir,
		DestDir:          cfg.DestDir,
		Logger:           log,
		HandshakeTimeout: cfg.HandshakeTimeout,
	}

	var handle session.Handle
	if listenWebSocket {
		handle, err = acceptWebSocketSession(cmd.Context(), addr, sessCfg, events)
	} else {
		handle, err = session.Listen(cmd.Context(), addr, sessCfg, events)
	}
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	checker.SetUp(true)

	runEventLoop(events, handle, log)
	return nil
}
