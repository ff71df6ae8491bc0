package observability

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the connection metrics collector.
type MetricsConfig struct {
	// Service identification
	ServiceName    string
	ServiceVersion string
	Environment    string

	// Prometheus configuration
	MetricsPath string // HTTP path for metrics endpoint (default: /metrics)
	MetricsPort int    // Port for metrics server (default: 9090)

	// Metric options
	Namespace string // Prometheus namespace (default: mcpl)
	Subsystem string // Prometheus subsystem

	// Labels to add to all metrics
	ConstLabels prometheus.Labels

	// Registry to register collectors with. Defaults to the global
	// prometheus.DefaultRegisterer; tests pass a private registry so
	// repeated construction does not collide.
	Registerer prometheus.Registerer
}

// DefaultMetricsConfig returns a MetricsConfig with sensible defaults.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MetricsPath: "/metrics",
		MetricsPort: 9090,
		Namespace:   "mcpl",
	}
}

// ConnMetrics collects Prometheus metrics for one or more connections.
// It satisfies the transport.Metrics interface, which stays an interface
// so the transport package carries no collector dependency of its own.
type ConnMetrics struct {
	config MetricsConfig
	server *http.Server

	sentTotal     *prometheus.CounterVec
	receivedTotal *prometheus.CounterVec
	orphanTotal   prometheus.Counter
	rpcErrorTotal *prometheus.CounterVec
	backlogDepth  prometheus.Gauge
}

// NewConnMetrics creates and registers the connection metric collectors.
func NewConnMetrics(config MetricsConfig) (*ConnMetrics, error) {
	if config.Namespace == "" {
		config.Namespace = "mcpl"
	}
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}
	if config.MetricsPort == 0 {
		config.MetricsPort = 9090
	}
	if config.Registerer == nil {
		config.Registerer = prometheus.DefaultRegisterer
	}

	if config.ConstLabels == nil {
		config.ConstLabels = prometheus.Labels{}
	}
	if config.ServiceName != "" {
		config.ConstLabels["service"] = config.ServiceName
	}
	if config.ServiceVersion != "" {
		config.ConstLabels["version"] = config.ServiceVersion
	}
	if config.Environment != "" {
		config.ConstLabels["environment"] = config.Environment
	}

	m := &ConnMetrics{config: config}

	m.sentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "messages_sent_total",
			Help:        "Total number of JSON-RPC messages written to the stream",
			ConstLabels: config.ConstLabels,
		},
		[]string{"kind"},
	)

	m.receivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "messages_received_total",
			Help:        "Total number of JSON-RPC messages read from the stream",
			ConstLabels: config.ConstLabels,
		},
		[]string{"kind"},
	)

	m.orphanTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "orphan_responses_total",
			Help:        "Total number of responses discarded for not matching the awaited request id",
			ConstLabels: config.ConstLabels,
		},
	)

	m.rpcErrorTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rpc_errors_total",
			Help:        "Total number of JSON-RPC error responses received, by peer error code",
			ConstLabels: config.ConstLabels,
		},
		[]string{"code"},
	)

	m.backlogDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "backlog_depth",
			Help:        "Number of peer-initiated messages buffered while a local call was outstanding",
			ConstLabels: config.ConstLabels,
		},
	)

	if err := m.register(); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return m, nil
}

func (m *ConnMetrics) register() error {
	collectors := []prometheus.Collector{
		m.sentTotal,
		m.receivedTotal,
		m.orphanTotal,
		m.rpcErrorTotal,
		m.backlogDepth,
	}

	for _, collector := range collectors {
		if err := m.config.Registerer.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}

	return nil
}

// MessageSent records a message written to the stream.
func (m *ConnMetrics) MessageSent(kind string) {
	m.sentTotal.WithLabelValues(kind).Inc()
}

// MessageReceived records a message read from the stream.
func (m *ConnMetrics) MessageReceived(kind string) {
	m.receivedTotal.WithLabelValues(kind).Inc()
}

// OrphanResponse records a discarded response whose id matched no
// outstanding call.
func (m *ConnMetrics) OrphanResponse() {
	m.orphanTotal.Inc()
}

// RPCError records a JSON-RPC error response received from the peer.
func (m *ConnMetrics) RPCError(code int) {
	m.rpcErrorTotal.WithLabelValues(strconv.Itoa(code)).Inc()
}

// BacklogDepth records the current number of buffered incoming messages.
func (m *ConnMetrics) BacklogDepth(n int) {
	m.backlogDepth.Set(float64(n))
}

// Start starts the metrics HTTP server.
func (m *ConnMetrics) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle(m.config.MetricsPath, promhttp.Handler())

	m.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", m.config.MetricsPort),
		Handler: mux,
	}

	go func() {
		_ = m.server.ListenAndServe()
	}()

	return nil
}

// Shutdown gracefully shuts down the metrics server.
func (m *ConnMetrics) Shutdown(ctx context.Context) error {
	if m.server != nil {
		return m.server.Shutdown(ctx)
	}
	return nil
}
