// Package api serves stored databin streams over HTTP: upload with
// validation, raw download, text dump and delete.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/ssargent/databin/pkg/dump"
	"github.com/ssargent/databin/pkg/metrics"
)

// Server holds the API server state
type Server struct {
	store    StreamStore
	config   ServerConfig
	metrics  *metrics.Metrics
	dumpOpts dump.Options
	logger   zerolog.Logger
}

// NewServer creates a new API server
func NewServer(store StreamStore, config ServerConfig, metrics *metrics.Metrics, dumpOpts dump.Options, logger zerolog.Logger) *Server {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 16 << 20
	}
	if len(config.AllowedOrigins) == 0 {
		config.AllowedOrigins = []string{"*"}
	}
	dumpOpts.Logger = logger

	return &Server{
		store:    store,
		config:   config,
		metrics:  metrics,
		dumpOpts: dumpOpts,
		logger:   logger,
	}
}

// Router builds the HTTP routes. gatherer backs the /metrics endpoint.
func (s *Server) Router(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-API-Key"},
		MaxAge:         300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(s.config.APIKey))

		r.Get("/health", s.metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		r.Put("/streams", s.metrics.InstrumentHandler("PUT", "/api/v1/streams", s.handlePut))
		r.Get("/streams", s.metrics.InstrumentHandler("GET", "/api/v1/streams", s.handleList))
		r.Get("/streams/{id}", s.metrics.InstrumentHandler("GET", "/api/v1/streams/{id}", s.handleGet))
		r.Get("/streams/{id}/dump", s.metrics.InstrumentHandler("GET", "/api/v1/streams/{id}/dump", s.handleDump))
		r.Delete("/streams/{id}", s.metrics.InstrumentHandler("DELETE", "/api/v1/streams/{id}", s.handleDelete))
	})

	return r
}

// ListenAndServe serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, gatherer prometheus.Gatherer) error {
	addr := fmt.Sprintf("%s:%d", s.config.Bind, s.config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(gatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("starting databin API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info().Msg("shutting down databin API server")
		return srv.Shutdown(shutdownCtx)
	}
}
