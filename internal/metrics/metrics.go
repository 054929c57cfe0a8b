// Package metrics holds the pipeline's Prometheus collectors. Stages update
// them directly; the monitor serves them on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "framecast"

var (
	FramesCaptured = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "capture",
			Name:      "frames_total",
			Help:      "Total number of frames captured and queued for encoding",
		},
	)

	FramesEncoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "encode",
			Name:      "frames_total",
			Help:      "Total number of frames encoded and written to disk",
		},
		[]string{"format"},
	)

	EncodedSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "encode",
			Name:      "payload_bytes",
			Help:      "Size of encoded frames (bytes)",
			Buckets: []float64{
				16384, 65536, 262144, 524288, 1048576, 2097152, 4194304,
			},
		},
		[]string{"format"},
	)

	RetentionEvictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "encode",
			Name:      "retention_evictions_total",
			Help:      "Files removed from the on-disk window, by result",
		},
		[]string{"result"},
	)

	PayloadsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "payloads_sent_total",
			Help:      "Total number of payloads written to a connected client",
		},
	)

	PayloadsDiscarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "payloads_discarded_total",
			Help:      "Total number of payloads dropped while no client was connected",
		},
	)

	Sessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "sessions_total",
			Help:      "Client sessions, by how they ended",
		},
		[]string{"end"},
	)

	QueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Messages waiting in each channel",
		},
		[]string{"queue"},
	)

	StageLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_latency_seconds",
			Help:      "Per-frame processing time of each stage",
			Buckets: []float64{
				0.001, 0.002, 0.005, 0.010, 0.020, 0.050, 0.100, 0.250,
			},
		},
		[]string{"stage"},
	)

	CycleTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_seconds",
			Help:      "Time between successive capture releases",
			Buckets:   prometheus.LinearBuckets(0.05, 0.025, 8),
		},
	)
)

func init() {
	prometheus.MustRegister(
		FramesCaptured, FramesEncoded, EncodedSize, RetentionEvictions,
		PayloadsSent, PayloadsDiscarded, Sessions, QueueDepth,
		StageLatency, CycleTime,
	)
}

// ObserveLatency records d against the named stage.
func ObserveLatency(stage string, d time.Duration) {
	StageLatency.WithLabelValues(stage).Observe(d.Seconds())
}

// SetQueueDepth publishes the current length of a channel.
func SetQueueDepth(name string, n int) {
	QueueDepth.WithLabelValues(name).Set(float64(n))
}
