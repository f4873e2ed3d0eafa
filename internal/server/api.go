package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"trade-journal-go/internal/alerts"
	"trade-journal-go/internal/analytics"
	"trade-journal-go/internal/ledger"
	"trade-journal-go/internal/models"
	"trade-journal-go/internal/storage"

	"go.uber.org/zap"
)

// API exposes the journal core to the dashboard over HTTP. It carries
// no presentation logic; every handler is a thin JSON mapping onto a
// core operation.
type API struct {
	server *http.Server
	ledger *ledger.Ledger
	alerts *alerts.Store
	engine *analytics.Engine
	logger *zap.Logger
}

// New creates the API server on the given port.
func New(port int, l *ledger.Ledger, a *alerts.Store, e *analytics.Engine, logger *zap.Logger) *API {
	api := &API{
		ledger: l,
		alerts: a,
		engine: e,
		logger: logger.Named("api-server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/trades", api.appendTradeHandler)
	mux.HandleFunc("PATCH /api/trades/{id}", api.amendTradeHandler)
	mux.HandleFunc("GET /api/trades", api.queryTradesHandler)
	mux.HandleFunc("POST /api/alerts", api.addAlertHandler)
	mux.HandleFunc("POST /api/alerts/{id}/ack", api.acknowledgeAlertHandler)
	mux.HandleFunc("GET /api/alerts/recent", api.recentAlertsHandler)
	mux.HandleFunc("GET /api/alerts/unacknowledged", api.unacknowledgedCountHandler)
	mux.HandleFunc("GET /api/analytics", api.analyticsHandler)
	mux.HandleFunc("GET /health", api.healthHandler)

	api.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	return api
}

// Start runs the HTTP server in a new goroutine.
func (s *API) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *API) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}

func (s *API) appendTradeHandler(w http.ResponseWriter, r *http.Request) {
	var trade models.Trade
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id, err := s.ledger.Append(trade)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]uint{"id": id})
}

func (s *API) amendTradeHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var patch ledger.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.ledger.Amend(id, patch); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *API) queryTradesHandler(w http.ResponseWriter, r *http.Request) {
	filter := ledger.Filter{
		BotID:      r.URL.Query().Get("bot_id"),
		Descending: true, // most recent first for display
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}
	if v := r.URL.Query().Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "invalid since timestamp", http.StatusBadRequest)
			return
		}
		filter.Since = t
	}
	if v := r.URL.Query().Get("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "invalid until timestamp", http.StatusBadRequest)
			return
		}
		filter.Until = t
	}

	trades, err := s.ledger.Range(filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, trades)
}

type addAlertRequest struct {
	Level    string `json:"level"`
	Message  string `json:"message"`
	BotID    string `json:"bot_id,omitempty"`
	Category string `json:"category,omitempty"`
}

func (s *API) addAlertHandler(w http.ResponseWriter, r *http.Request) {
	var req addAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id, err := s.alerts.Add(req.Level, req.Message, req.BotID, req.Category)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]uint{"id": id})
}

func (s *API) acknowledgeAlertHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.alerts.Acknowledge(id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *API) recentAlertsHandler(w http.ResponseWriter, r *http.Request) {
	limit := alerts.DefaultCacheSize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	recent, err := s.alerts.Recent(limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, recent)
}

func (s *API) unacknowledgedCountHandler(w http.ResponseWriter, r *http.Request) {
	count, err := s.alerts.UnacknowledgedCount()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (s *API) analyticsHandler(w http.ResponseWriter, r *http.Request) {
	window := 0
	if v := r.URL.Query().Get("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid window", http.StatusBadRequest)
			return
		}
		window = n
	}

	metrics, err := s.engine.Compute(window)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, metrics)
}

func (s *API) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// pathID parses the {id} path segment, rejecting anything that is not
// a positive integer.
func (s *API) pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil || id == 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}

func (s *API) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError maps the core error taxonomy onto HTTP status codes.
func (s *API) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrInvalidRecord):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		s.logger.Error("Request failed", zap.Error(err))
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
	}
}
