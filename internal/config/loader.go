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

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoaderOptions configures Load.
type LoaderOptions struct {
	// ConfigDir holds the environment/default YAML files (default: ./config).
	ConfigDir string
	// Environment overrides automatic environment detection.
	Environment string
	// SkipEnvSubstitution disables ${VAR} substitution in loaded strings.
	SkipEnvSubstitution bool
}

// DefaultLoaderOptions returns Load's defaults.
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{ConfigDir: "config"}
}

// Load loads a `.env` file if present, then cascades through
// `config/<env>.yaml` → `config/default.yaml` → built-in defaults,
// applying ${VAR} substitution unless disabled.
func Load(opts ...LoaderOptions) (Config, error) {
	_ = godotenv.Load() // optional; absence is not an error

	options := DefaultLoaderOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	env := options.Environment
	if env == "" {
		env = Environment()
	}

	cfg := Default()
	loaded := false

	envPath := filepath.Join(options.ConfigDir, env+".yaml")
	if mergeFromFile(&cfg, envPath) == nil {
		loaded = true
	}
	if !loaded {
		defaultPath := filepath.Join(options.ConfigDir, "default.yaml")
		_ = mergeFromFile(&cfg, defaultPath)
	}

	if !options.SkipEnvSubstitution {
		substituteInConfig(&cfg)
	}

	return cfg, nil
}

func mergeFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	applyOverlay(cfg, overlay)
	return nil
}

func applyOverlay(cfg *Config, overlay Config) {
	if overlay.ListenAddr != "" {
		cfg.ListenAddr = overlay.ListenAddr
	}
	if overlay.TempDir != "" {
		cfg.TempDir = overlay.TempDir
	}
	if overlay.DestDir != "" {
		cfg.DestDir = overlay.DestDir
	}
	if overlay.LogLevel != "" {
		cfg.LogLevel = overlay.LogLevel
	}
	if overlay.MetricsAddr != "" {
		cfg.MetricsAddr = overlay.MetricsAddr
	}
	if overlay.HandshakeTimeout != 0 {
		cfg.HandshakeTimeout = overlay.HandshakeTimeout
	}
}
