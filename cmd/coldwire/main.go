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

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "coldwire",
	Short: "coldwire is a peer-to-peer end-to-end encrypted messenger",
	Long: `coldwire negotiates a mutually-authenticated, forward-secret session
directly between two peers and exchanges text, typing signals, and
chunked file transfers over it.

This binary wires the secure session core (framing, handshake,
cryptoengine, session, transfer) to a terminal front-end: it never
implements protocol logic itself, only configuration, logging, metrics,
and the fingerprint confirmation prompt.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	// Commands register themselves in their own files:
	// - keygen.go: keygenCmd
	// - listen.go: listenCmd
	// - connect.go: connectCmd
}
