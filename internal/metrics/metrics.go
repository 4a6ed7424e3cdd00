// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package metrics registers the Prometheus series this engine and its
// server collaborator expose. Shape adapted from packetd's
// controller/metrics.go: a single var block of promauto-registered
// collectors under one namespace, no manual registry plumbing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "httpreq"

var (
	// RequestsParsed counts every request the assembler has fully
	// completed.
	RequestsParsed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_parsed_total",
		Help:      "Total requests fully assembled.",
	})

	// ParseErrors counts assembler failures, labeled by herr.Kind name.
	ParseErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parse_errors_total",
		Help:      "Total assembler failures by error kind.",
	}, []string{"kind"})

	// ActiveConnections tracks connections currently being served.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_connections",
		Help:      "Connections currently being served.",
	})

	// RequestBodyBytes observes the size of assembled request bodies.
	RequestBodyBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_body_bytes",
		Help:      "Size in bytes of assembled request bodies.",
		Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
	})
)
