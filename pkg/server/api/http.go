// Package api provides the HTTP and WebSocket endpoints of the value
// tracker.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wn7ant/eve-value/pkg/logging"
	"github.com/wn7ant/eve-value/pkg/metrics"
	"github.com/wn7ant/eve-value/pkg/server/refresh"
)

// Refresher is the snapshot owner the API serves from.
type Refresher interface {
	Current() *refresh.Snapshot
	Refresh(ctx context.Context) (*refresh.Snapshot, error)
	SetManualRate(ctx context.Context, value decimal.Decimal) (*refresh.Snapshot, error)
}

// Server represents the HTTP API server.
type Server struct {
	addr      string
	refresher Refresher
	server    *http.Server
	logger    *logging.Logger
	tlsCert   string
	tlsKey    string
}

// NewServer creates a new HTTP API server. Snapshot streaming is handled
// by the separate WebSocketServer, fed through Refresher subscriptions.
func NewServer(addr string, refresher Refresher, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNoopLogger()
	}
	return &Server{
		addr:      addr,
		refresher: refresher,
		logger:    logger,
	}
}

// SetTLS configures the server to serve TLS with the given cert and key
// files. Must be called before Start.
func (s *Server) SetTLS(cert, key string) {
	s.tlsCert = cert
	s.tlsKey = key
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("/v1/rate", s.handleRate)
	mux.HandleFunc("/v1/refresh", s.handleRefresh)
	return mux
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	useTLS := s.tlsCert != "" && s.tlsKey != ""
	s.logger.Info("Starting HTTP server", "addr", s.addr, "tls", useTLS)

	var err error
	if useTLS {
		err = s.server.ListenAndServeTLS(s.tlsCert, s.tlsKey)
	} else {
		err = s.server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.logger.Info("Stopping HTTP server")
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleHealth handles the /health endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RecordHTTPRequest("/health", "200", time.Since(start))
	}()

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleSnapshot handles GET /v1/snapshot. Every state renders: loading
// and error snapshots carry their tag and message with empty rows.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		metrics.RecordHTTPRequest("/v1/snapshot", status, time.Since(start))
	}()

	if r.Method != http.MethodGet {
		status = "405"
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.sendJSON(w, s.refresher.Current())
}

// handleRate handles GET and POST /v1/rate. GET returns the current
// reference rate; POST sets a manual override.
func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		metrics.RecordHTTPRequest("/v1/rate", status, time.Since(start))
	}()

	switch r.Method {
	case http.MethodGet:
		snap := s.refresher.Current()
		if snap.State != refresh.StateReady || snap.Rate == nil {
			status = "503"
			http.Error(w, "no reference rate available", http.StatusServiceUnavailable)
			return
		}
		s.sendJSON(w, snap.Rate)

	case http.MethodPost:
		var req struct {
			Value json.Number `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			status = "400"
			http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
			return
		}

		value, err := decimal.NewFromString(req.Value.String())
		if err != nil {
			status = "400"
			http.Error(w, fmt.Sprintf("invalid rate value %q", req.Value.String()), http.StatusBadRequest)
			return
		}

		snap, err := s.refresher.SetManualRate(r.Context(), value)
		switch {
		case errors.Is(err, refresh.ErrInFlight):
			status = "409"
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case err != nil:
			status = "400"
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		s.logger.Info("Manual rate override set", "value", value.String())
		s.sendJSON(w, snap)

	default:
		status = "405"
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleRefresh handles POST /v1/refresh. A cycle already in flight is
// reported as a conflict instead of being queued.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		metrics.RecordHTTPRequest("/v1/refresh", status, time.Since(start))
	}()

	if r.Method != http.MethodPost {
		status = "405"
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, err := s.refresher.Refresh(r.Context())
	if err != nil {
		status = "409"
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	s.sendJSON(w, snap)
}

// sendJSON sends a JSON response.
func (s *Server) sendJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}
