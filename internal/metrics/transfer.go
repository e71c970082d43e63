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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FileTransfersTotal counts completed file transfers, by direction
	// and outcome.
	FileTransfersTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "file_transfers",
			Name:      "total",
			Help:      "Total number of file transfers, labelled by direction and status",
		},
		[]string{"direction", "status"}, // direction: send, receive; status: completed, aborted, size_mismatch
	)

	// FileTransferBytes tracks bytes moved per completed transfer.
	FileTransferBytes = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "file_transfers",
			Name:      "bytes",
			Help:      "Size of files transferred in bytes",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 12), // 1KiB to ~4GiB
		},
		[]string{"direction"},
	)
)
