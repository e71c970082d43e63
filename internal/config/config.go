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

// Package config loads the CLI/daemon wrapper's cascading YAML
// configuration. The core session stack never imports this package —
// it takes explicit constructor parameters — this is strictly for
// cmd/coldwire.
package config

import (
	"time"
)

// Config is the CLI/daemon wrapper's configuration. None of these
// fields are read by the core session stack directly.
type Config struct {
	ListenAddr       string        `yaml:"listen_addr"`
	TempDir          string        `yaml:"temp_dir"`
	DestDir          string        `yaml:"dest_dir"`
	LogLevel         string        `yaml:"log_level"`
	MetricsAddr      string        `yaml:"metrics_addr"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
}

// Default returns the built-in configuration defaults, applied before
// any YAML file or environment override.
func Default() Config {
	return Config{
		ListenAddr:       ":0",
		TempDir:          "./tmp",
		DestDir:          "./received",
		LogLevel:         "info",
		MetricsAddr:      ":9090",
		HandshakeTimeout: 15 * time.Second,
	}
}
