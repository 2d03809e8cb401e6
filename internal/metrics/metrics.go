package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks transcription service counters. Prometheus collectors feed the
// /metrics endpoint; the atomic mirrors back the JSON /stats snapshot without
// scraping our own registry.
type Metrics struct {
	registry *prometheus.Registry

	jobsCompleted prometheus.Counter
	jobsFailed    prometheus.Counter
	queueDepth    prometheus.GaugeFunc
	jobDuration   prometheus.Histogram

	completed atomic.Int64
	failed    atomic.Int64
	startedAt time.Time
}

// Snapshot is the JSON-friendly view served by /stats.
type Snapshot struct {
	QueueDepth    int     `json:"queue_depth"`
	Completed     int64   `json:"completed"`
	Failed        int64   `json:"failed"`
	ResultsCached int     `json:"results_cached"`
	UptimeSeconds float64 `json:"uptime_s"`
}

// New creates the metrics set. queueDepth is sampled from the queue at scrape
// time so the gauge never drifts from reality.
func New(queueDepth func() int) *Metrics {
	m := &Metrics{
		registry:  prometheus.NewRegistry(),
		startedAt: time.Now(),
	}

	m.jobsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ytscout",
		Subsystem: "transcription",
		Name:      "jobs_completed_total",
		Help:      "Transcription jobs that reached the done state.",
	})
	m.jobsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ytscout",
		Subsystem: "transcription",
		Name:      "jobs_failed_total",
		Help:      "Transcription jobs that reached the failed state.",
	})
	m.queueDepth = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "ytscout",
		Subsystem: "transcription",
		Name:      "queue_depth",
		Help:      "Pending jobs in the request queue.",
	}, func() float64 { return float64(queueDepth()) })
	m.jobDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ytscout",
		Subsystem: "transcription",
		Name:      "job_duration_seconds",
		Help:      "Wall time from dequeue to terminal state.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	m.registry.MustRegister(m.jobsCompleted, m.jobsFailed, m.queueDepth, m.jobDuration)
	return m
}

// Registry exposes the prometheus registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// JobCompleted records a successful job.
func (m *Metrics) JobCompleted(took time.Duration) {
	m.jobsCompleted.Inc()
	m.jobDuration.Observe(took.Seconds())
	m.completed.Add(1)
}

// JobFailed records a failed job.
func (m *Metrics) JobFailed(took time.Duration) {
	m.jobsFailed.Inc()
	m.jobDuration.Observe(took.Seconds())
	m.failed.Add(1)
}

// Snapshot captures the current counters for the JSON stats endpoint.
func (m *Metrics) Snapshot(queueDepth, resultsCached int) Snapshot {
	return Snapshot{
		QueueDepth:    queueDepth,
		Completed:     m.completed.Load(),
		Failed:        m.failed.Load(),
		ResultsCached: resultsCached,
		UptimeSeconds: time.Since(m.startedAt).Seconds(),
	}
}

// Uptime reports time since metrics creation (process start for our purposes).
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startedAt)
}
