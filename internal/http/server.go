package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tunegram/internal/core"
)

type Server struct {
	config  *core.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	metrics *Metrics
}

type Metrics struct {
	MessagesTotal     *prometheus.CounterVec
	SearchesTotal     *prometheus.CounterVec
	AcquisitionsTotal *prometheus.CounterVec
	AcquisitionTime   prometheus.Histogram
}

func NewServer(config *core.ServerConfig, logger *zap.Logger) *Server {
	metrics := &Metrics{
		MessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunegram_messages_total",
				Help: "Total number of messages processed",
			},
			[]string{"type", "status"},
		),
		SearchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunegram_searches_total",
				Help: "Total number of catalog searches",
			},
			[]string{"status"},
		),
		AcquisitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tunegram_acquisitions_total",
				Help: "Total number of track acquisitions",
			},
			[]string{"outcome"},
		),
		AcquisitionTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tunegram_acquisition_duration_seconds",
				Help:    "Time spent downloading and delivering tracks",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
	}

	prometheus.MustRegister(
		metrics.MessagesTotal,
		metrics.SearchesTotal,
		metrics.AcquisitionsTotal,
		metrics.AcquisitionTime,
	)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok","service":"tunegram"}`)); err != nil {
			// Log error if needed, but don't fail the handler
		}
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ready","service":"tunegram"}`)); err != nil {
			// Log error if needed, but don't fail the handler
		}
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Tunegram</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .header { color: #333; }
        .endpoint { margin: 10px 0; }
        .endpoint a { text-decoration: none; color: #0066cc; }
        .endpoint a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <h1 class="header">🎵 Tunegram</h1>
    <p>Telegram → Music Catalog Download Service</p>

    <h2>Endpoints</h2>
    <div class="endpoint">📊 <a href="/metrics">Metrics</a> - Prometheus metrics</div>
    <div class="endpoint">💚 <a href="/healthz">Health</a> - Health check</div>
    <div class="endpoint">✅ <a href="/readyz">Ready</a> - Readiness check</div>

    <h2>Status</h2>
    <p>Service is running and ready to process Telegram messages.</p>
</body>
</html>`)); err != nil {
			// Log error if needed, but don't fail the handler
		}
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      mux,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return &Server{
		config:  config,
		logger:  logger,
		server:  server,
		metrics: metrics,
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		zap.String("addr", s.server.Addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Failed to shutdown HTTP server gracefully", zap.Error(err))
		}
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

func (s *Server) GetMetrics() *Metrics {
	return s.metrics
}

func (s *Server) RecordMessage(msgType, status string) {
	s.metrics.MessagesTotal.WithLabelValues(msgType, status).Inc()
}

func (s *Server) RecordSearch(status string) {
	s.metrics.SearchesTotal.WithLabelValues(status).Inc()
}

func (s *Server) RecordAcquisition(outcome string, duration time.Duration) {
	s.metrics.AcquisitionsTotal.WithLabelValues(outcome).Inc()
	s.metrics.AcquisitionTime.Observe(duration.Seconds())
}
