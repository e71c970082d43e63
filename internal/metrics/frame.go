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
	// FramesTotal counts length-prefixed frames crossing the wire, by
	// direction.
	FramesTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "frames",
			Name:      "total",
			Help:      "Total number of framed messages sent or received",
		},
		[]string{"direction"}, // sent, received
	)

	// FrameSizeBytes tracks the size of each frame's payload.
	FrameSizeBytes = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "frames",
			Name:      "size_bytes",
			Help:      "Size of frame payloads in bytes",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 14), // 64B to ~4GB-adjacent range, capped below MaxPayloadSize in practice
		},
		[]string{"direction"},
	)

	// FramesRejected counts frames dropped before or during decode.
	FramesRejected = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "frames",
			Name:      "rejected_total",
			Help:      "Total number of frames rejected, labelled by reason",
		},
		[]string{"reason"}, // too_large, truncated, malformed
	)
)
