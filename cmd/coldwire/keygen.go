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
	"fmt"
	"os"
	"path/filepath"

	"github.com/coldwire/coldwire/cryptoengine"
	"github.com/spf13/cobra"
)

var keygenOutDir string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a new RSA-2048 identity keypair",
	Long: `Generate a fresh identity keypair used to identify and fingerprint this
peer. The identity key never encrypts session traffic — only ephemeral
X25519 keys derived per session do that.`,
	Example: `  coldwire keygen --out ./identity`,
	RunE:    runKeygen,
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVarP(&keygenOutDir, "out", "o", ".", "directory to write identity.pem / identity.pub.pem into")
}

func runKeygen(cmd *cobra.Command, args []string) error {
	identity, err := cryptoengine.GenerateIdentity()
	if err != nil {
		return fmt.Errorf("generate identity: %w", err)
	}

	if err := os.MkdirAll(keygenOutDir, 0o700); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	privPEM, err := identity.PrivateKeyPEM()
	if err != nil {
		return fmt.Errorf("encode private key: %w", err)
	}

	privPath := filepath.Join(keygenOutDir, "identity.pem")
	if err := os.WriteFile(privPath, privPEM, 0o600); err != nil {
		return fmt.Errorf("write private key: %w", err)
	}

	pubPath := filepath.Join(keygenOutDir, "identity.pub.pem")
	if err := os.WriteFile(pubPath, identity.PublicKeyPEM(), 0o644); err != nil {
		return fmt.Errorf("write public key: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "identity written to %s (private) and %s (public)\n", privPath, pubPath)
	fmt.Fprintf(cmd.OutOrStdout(), "fingerprint: %s\n", identity.Fingerprint())
	return nil
}
