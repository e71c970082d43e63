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

package health

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckerReadiness(t *testing.T) {
	c := NewChecker()

	ready, status := c.CheckReadiness()
	require.False(t, ready)
	require.Equal(t, StatusDown, status)

	c.SetUp(true)
	ready, status = c.CheckReadiness()
	require.True(t, ready)
	require.Equal(t, StatusDegraded, status)

	c.SetSessionHealthy(true)
	ready, status = c.CheckReadiness()
	require.True(t, ready)
	require.Equal(t, StatusHealthy, status)

	c.SetUp(false)
	ready, _ = c.CheckReadiness()
	require.False(t, ready)
}
