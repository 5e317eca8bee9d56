// Package server exposes the flipper over HTTP.
//
// Routes:
//   - POST /webhook  {"message": "..."} -> 200 OK, 409 busy, 500 on failure
//   - GET  /         plain-text banner
//   - GET  /health   JSON status of the store and the accepted signal
//   - GET  <metrics> Prometheus exposition
//
// Webhook failures never carry error detail; it is logged instead.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/rickgao/futures-flipper/internal/gate"
	"github.com/rickgao/futures-flipper/internal/model"
	"github.com/rickgao/futures-flipper/internal/version"
)

const maxWebhookBody = 64 << 10

// SignalHandler is the gate as seen from HTTP.
type SignalHandler interface {
	HandleSignal(ctx context.Context, raw string) (gate.Outcome, error)
	LastSignal() model.Signal
}

// Pinger reports whether the state store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PositionReader reports the last polled exchange position.
type PositionReader interface {
	Position() (decimal.Decimal, time.Time)
}

// Server builds the HTTP handler.
type Server struct {
	signals     SignalHandler
	store       Pinger
	positions   PositionReader
	logger      *slog.Logger
	instanceID  string
	symbol      string
	metricsPath string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIdentity labels health output with the instance and symbol.
func WithIdentity(instanceID, symbol string) Option {
	return func(s *Server) {
		s.instanceID = instanceID
		s.symbol = symbol
	}
}

// WithMetricsPath serves Prometheus metrics at path. Empty disables it.
func WithMetricsPath(path string) Option {
	return func(s *Server) {
		s.metricsPath = path
	}
}

// WithPositions adds the polled position to health output.
func WithPositions(r PositionReader) Option {
	return func(s *Server) {
		s.positions = r
	}
}

// New creates a Server.
func New(signals SignalHandler, store Pinger, opts ...Option) *Server {
	s := &Server{
		signals: signals,
		store:   store,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.HandleFunc("GET /{$}", s.handleBanner)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.metricsPath != "" {
		mux.Handle("GET "+s.metricsPath, promhttp.Handler())
	}
	return mux
}

// decodeWebhookMessage returns the message field of a JSON body. Bodies that
// are not objects, and message values that are not strings, yield "".
func decodeWebhookMessage(body io.Reader) (string, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return "", err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", nil
	}
	var message string
	if err := json.Unmarshal(fields["message"], &message); err != nil {
		return "", nil
	}
	return message, nil
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	message, err := decodeWebhookMessage(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		s.logger.Warn("malformed webhook body", "error", err, "remote", r.RemoteAddr)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.logger.Info("signal received", "message", message)

	outcome, err := s.signals.HandleSignal(r.Context(), message)
	switch {
	case errors.Is(err, gate.ErrBusy):
		http.Error(w, "busy", http.StatusConflict)
		return
	case err != nil:
		s.logger.Error("signal handling failed", "message", message, "error", err)
		http.Error(w, "error", http.StatusInternalServerError)
		return
	}

	s.logger.Debug("signal handled", "outcome", outcome)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "OK")
}

func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "futures-flipper %s is running and waiting for signals\n", version.Version)
}

type healthResponse struct {
	Status     string         `json:"status"`
	InstanceID string         `json:"instance_id,omitempty"`
	Symbol     string         `json:"symbol,omitempty"`
	LastSignal string         `json:"last_signal"`
	Version    string         `json:"version"`
	Components map[string]any `json:"components"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := healthResponse{
		Status:     "healthy",
		InstanceID: s.instanceID,
		Symbol:     s.symbol,
		LastSignal: s.signals.LastSignal().String(),
		Version:    version.Version,
		Components: make(map[string]any),
	}

	if err := s.store.Ping(ctx); err != nil {
		health.Status = "unhealthy"
		health.Components["store"] = map[string]string{
			"status": "disconnected",
			"error":  err.Error(),
		}
	} else {
		health.Components["store"] = "connected"
	}

	if s.positions != nil {
		amt, at := s.positions.Position()
		if at.IsZero() {
			health.Components["position"] = "unknown"
		} else {
			health.Components["position"] = map[string]string{
				"amount":    amt.String(),
				"polled_at": at.UTC().Format(time.RFC3339),
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if health.Status == "unhealthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}
