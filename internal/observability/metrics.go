// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsGenerated counts successfully generated and persisted posts.
	PostsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "driftgram_posts_generated_total",
		Help: "Total number of posts generated and persisted",
	})

	// GenerationFailures counts generation failures by pipeline stage.
	GenerationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "driftgram_generation_failures_total",
		Help: "Total number of post generation failures by stage",
	}, []string{"stage"})

	// RemoteCallLatency records outbound remote API call latency by operation.
	RemoteCallLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "driftgram_remote_call_latency_seconds",
		Help:    "Remote generation API call latency in seconds",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"operation"})
)

// Generation pipeline stages used as the GenerationFailures label.
const (
	StagePrompt  = "prompt"
	StageCaption = "caption"
	StageImage   = "image"
	StageStore   = "store"
)
