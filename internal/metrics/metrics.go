// Package metrics records request, use-case and background-job counters in a
// Prometheus registry and keeps a small in-process snapshot for status output.
package metrics

import (
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nutritrack"

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

type Metrics struct {
	registry  *prometheus.Registry
	startTime time.Time

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	useCases     *prometheus.CounterVec
	remoteCalls  *prometheus.CounterVec
	cronRuns     *prometheus.CounterVec
	realtime     prometheus.Gauge

	requestsTotal     atomic.Int64
	requestsSuccess   atomic.Int64
	requestsFailed    atomic.Int64
	activeConnections atomic.Int64

	responseTimes     []time.Duration
	responseTimesLock sync.Mutex
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry:  reg,
		startTime: time.Now(),

		httpRequests: counter(reg, "http_requests_total",
			"Total number of API requests",
			"method", "route", "status"),
		httpLatency: histogram(reg, "http_request_duration_seconds",
			"Latency of API requests in seconds",
			prometheus.DefBuckets,
			"method", "route"),
		useCases: counter(reg, "usecase_executions_total",
			"Use-case executions by outcome",
			"usecase", "outcome"),
		remoteCalls: counter(reg, "remote_calls_total",
			"Calls to the remote backend by outcome",
			"operation", "outcome"),
		cronRuns: counter(reg, "cron_runs_total",
			"Background job runs by outcome",
			"job", "outcome"),
		realtime: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_connections",
			Help:      "Open progress WebSocket connections",
		}),

		responseTimes: make([]time.Duration, 0, 1000),
	}
}

func counter(reg prometheus.Registerer, name, help string, labelKeys ...string) *prometheus.CounterVec {
	return promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labelKeys,
	)
}

func histogram(reg prometheus.Registerer, name, help string, buckets []float64, labelKeys ...string) *prometheus.HistogramVec {
	return promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labelKeys,
	)
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordRequest records one finished HTTP request. route is the matched
// route pattern, not the raw path.
func (m *Metrics) RecordRequest(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())

	m.requestsTotal.Add(1)
	if status < 500 {
		m.requestsSuccess.Add(1)
	} else {
		m.requestsFailed.Add(1)
	}
	m.recordResponseTime(d)
}

func (m *Metrics) RecordUseCase(name string, ok bool) {
	m.useCases.WithLabelValues(name, outcome(ok)).Inc()
}

func (m *Metrics) RecordRemoteCall(operation string, ok bool) {
	m.remoteCalls.WithLabelValues(operation, outcome(ok)).Inc()
}

func (m *Metrics) RecordCronRun(job string, ok bool) {
	m.cronRuns.WithLabelValues(job, outcome(ok)).Inc()
}

func (m *Metrics) IncrementActiveConnections() {
	m.activeConnections.Add(1)
	m.realtime.Inc()
}

func (m *Metrics) DecrementActiveConnections() {
	m.activeConnections.Add(-1)
	m.realtime.Dec()
}

func outcome(ok bool) string {
	if ok {
		return OutcomeSuccess
	}
	return OutcomeError
}

func (m *Metrics) recordResponseTime(d time.Duration) {
	m.responseTimesLock.Lock()
	defer m.responseTimesLock.Unlock()

	m.responseTimes = append(m.responseTimes, d)
	if len(m.responseTimes) > 1000 {
		m.responseTimes = m.responseTimes[1:]
	}
}

type Snapshot struct {
	Uptime            time.Duration `json:"uptime"`
	RequestsTotal     int64         `json:"requests_total"`
	RequestsSuccess   int64         `json:"requests_success"`
	RequestsFailed    int64         `json:"requests_failed"`
	ActiveConnections int64         `json:"active_connections"`
	AvgResponseTime   time.Duration `json:"avg_response_time"`
	P99ResponseTime   time.Duration `json:"p99_response_time"`
	SuccessRate       float64       `json:"success_rate"`
}

func (m *Metrics) Snapshot() *Snapshot {
	s := &Snapshot{
		Uptime:            time.Since(m.startTime),
		RequestsTotal:     m.requestsTotal.Load(),
		RequestsSuccess:   m.requestsSuccess.Load(),
		RequestsFailed:    m.requestsFailed.Load(),
		ActiveConnections: m.activeConnections.Load(),
	}

	if s.RequestsTotal > 0 {
		s.SuccessRate = float64(s.RequestsSuccess) / float64(s.RequestsTotal) * 100
	}

	m.responseTimesLock.Lock()
	sorted := make([]time.Duration, len(m.responseTimes))
	copy(sorted, m.responseTimes)
	m.responseTimesLock.Unlock()

	if len(sorted) > 0 {
		var total time.Duration
		for _, rt := range sorted {
			total += rt
		}
		s.AvgResponseTime = total / time.Duration(len(sorted))

		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		p99Index := int(float64(len(sorted)) * 0.99)
		if p99Index >= len(sorted) {
			p99Index = len(sorted) - 1
		}
		s.P99ResponseTime = sorted[p99Index]
	}

	return s
}
