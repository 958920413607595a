// Package metrics exposes Prometheus collectors for article generation and
// the model lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "codequest"

var (
	// GenerationTotal counts article generations by outcome
	// (ok, invalid, error).
	GenerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "article",
			Name:      "generation_total",
			Help:      "Total number of article generations",
		},
		[]string{"status"},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "article",
			Name:      "generation_duration_seconds",
			Help:      "Article generation duration in seconds, model call included",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	// ContentLength observes the length of cleaned articles in bytes.
	ContentLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "article",
			Name:      "content_bytes",
			Help:      "Length of cleaned article content in bytes",
			Buckets:   prometheus.ExponentialBuckets(64, 2, 8),
		},
	)

	AudienceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "article",
			Name:      "audience_total",
			Help:      "Articles generated per audience category",
		},
		[]string{"category"},
	)

	// ModelLoaded is 1 while the generator handle holds a loaded model.
	ModelLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "loaded",
			Help:      "Whether the model is currently loaded",
		},
	)

	ModelTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "model",
			Name:      "transitions_total",
			Help:      "Model load and unload attempts by outcome",
		},
		[]string{"transition", "status"},
	)
)
