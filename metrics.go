/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package assetstore

import "github.com/prometheus/client_golang/prometheus"

// Container write paths, as counted by the datums_inserted metric.
const (
	insertPathAppend = "append"
	insertPathBulk   = "bulk"
)

// registryMetrics are the instance-scoped operation counters. They are
// not registered anywhere; the caller collects them through
// PrometheusCollectors.
type registryMetrics struct {
	resourcesInserted prometheus.Counter
	datumsInserted    *prometheus.CounterVec
	retrieves         prometheus.Counter
}

func newRegistryMetrics() *registryMetrics {
	return &registryMetrics{
		resourcesInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "assetstore",
			Subsystem: "registry",
			Name:      "resources_inserted_total",
			Help:      "Resources registered.",
		}),
		datumsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assetstore",
			Subsystem: "registry",
			Name:      "datums_inserted_total",
			Help:      "Datums written, by container write path.",
		}, []string{"path"}),
		retrieves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "assetstore",
			Subsystem: "registry",
			Name:      "retrieves_total",
			Help:      "Datum payloads materialized through handlers.",
		}),
	}
}

func (m *registryMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.resourcesInserted, m.datumsInserted, m.retrieves}
}
