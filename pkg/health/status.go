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

// Package health exposes liveness/readiness/metrics endpoints for
// cmd/coldwire. Unlike the blockchain-backed health checks this
// package is descended from, a coldwire peer has no external
// dependency to probe: readiness tracks only whether the local
// listener is up and whether the active session (if any) is still
// healthy.
package health

import "sync/atomic"

// Status is the coarse health state reported by /readyz.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// Checker tracks the minimal state needed to answer liveness and
// readiness probes for a single coldwire process: whether the
// transport side is up (listening, or successfully dialed out), and
// whether the current session (if any) is connected.
type Checker struct {
	up             atomic.Bool
	sessionHealthy atomic.Bool
}

// NewChecker returns a Checker with nothing up and no session yet.
func NewChecker() *Checker {
	return &Checker{}
}

// SetUp records whether the transport side (listener accepting, or
// outbound connection dialed) is currently operational.
func (c *Checker) SetUp(v bool) { c.up.Store(v) }

// SetSessionHealthy records whether the active session (if any) is
// connected and exchanging frames without error.
func (c *Checker) SetSessionHealthy(v bool) { c.sessionHealthy.Store(v) }

// CheckReadiness reports whether the process is ready to serve a
// peer: the transport side must be up. A session is optional — a
// freshly started listener with no peer yet is still ready.
func (c *Checker) CheckReadiness() (bool, Status) {
	if !c.up.Load() {
		return false, StatusDown
	}
	if !c.sessionHealthy.Load() {
		return true, StatusDegraded
	}
	return true, StatusHealthy
}
