// Package metrics exposes Prometheus counters for the main processing paths.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aatumaykin/hive/internal/logger"
)

// Metrics holds the counters shared across the application. Components
// receive a *Metrics at construction time; there is no package-level state.
type Metrics struct {
	registry *prometheus.Registry

	MessagesRouted   prometheus.Counter
	Replies          prometheus.Counter
	Reactions        prometheus.Counter
	ToolCalls        *prometheus.CounterVec
	ToolDenials      *prometheus.CounterVec
	JobsFired        prometheus.Counter
	CompletionErrors prometheus.Counter
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		MessagesRouted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hive_messages_routed_total",
			Help: "Inbound messages fanned out to the agent team.",
		}),
		Replies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hive_replies_total",
			Help: "Text replies produced by agents.",
		}),
		Reactions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hive_reactions_total",
			Help: "Emoji reactions produced by agents.",
		}),
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hive_tool_calls_total",
			Help: "Tool calls dispatched, by tool and action.",
		}, []string{"tool", "action"}),
		ToolDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hive_tool_denials_total",
			Help: "Tool calls rejected by authorization, by tool and action.",
		}, []string{"tool", "action"}),
		JobsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hive_jobs_fired_total",
			Help: "Scheduled job occurrences fired.",
		}),
		CompletionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hive_completion_errors_total",
			Help: "Failed completion-service calls.",
		}),
	}

	registry.MustRegister(
		m.MessagesRouted,
		m.Replies,
		m.Reactions,
		m.ToolCalls,
		m.ToolDenials,
		m.JobsFired,
		m.CompletionErrors,
	)
	return m
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Server serves the /metrics endpoint on a dedicated listener.
type Server struct {
	server *http.Server
	logger *logger.Logger
}

// NewServer creates a metrics HTTP server on the given listen address.
func NewServer(listen string, m *Metrics, log *logger.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &Server{
		server: &http.Server{Addr: listen, Handler: mux},
		logger: log,
	}
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		s.logger.Info("metrics server listening",
			logger.Field{Key: "addr", Value: s.server.Addr})
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server failed", err)
		}
	}()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("metrics server shutdown failed", err)
	}
}
