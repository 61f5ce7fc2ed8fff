// Package api provides the HTTP surface of the economy core: read-only
// queries for game-feature callers and the HUD, spend/earn/refund operations,
// Prometheus metrics, and the websocket event feed.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/apex-citadels/citadel/internal/domain"
	"github.com/apex-citadels/citadel/internal/ledger"
)

// Version is the reported daemon version.
const Version = "0.1.0"

// Server is the citadel HTTP API server.
type Server struct {
	ledger         *ledger.Ledger
	hub            *Hub
	metricsEnabled bool
}

// NewServer creates a new API server around a ledger. The hub may be nil to
// disable the event feed (tests, headless tools).
func NewServer(l *ledger.Ledger, hub *Hub) *Server {
	return &Server{ledger: l, hub: hub}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/resources", s.handleResources)
		r.Get("/resources/{type}", s.handleResource)
		r.Get("/transactions", s.handleTransactions)
		r.Post("/spend", s.handleSpend)
		r.Post("/earn", s.handleEarn)
		r.Post("/refund", s.handleRefund)
		r.Post("/affordability", s.handleAffordability)

		if s.hub != nil {
			r.Get("/events", s.hub.Handler())
		}
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Read Handlers ──────────────────────────────────────────────────────────

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	clients := 0
	if s.hub != nil {
		clients = s.hub.ClientCount()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "citadel economy core is running",
		"version":       Version,
		"event_clients": clients,
	})
}

// resourceView is one row of the resources report.
type resourceView struct {
	Type          domain.Resource `json:"type"`
	Amount        int64           `json:"amount"`
	Capacity      int64           `json:"capacity"`
	RatePerMinute float64         `json:"rate_per_minute"`
	FillRatio     float64         `json:"fill_ratio"`
}

func (s *Server) viewOf(r domain.Resource) resourceView {
	return resourceView{
		Type:          r,
		Amount:        s.ledger.Amount(r),
		Capacity:      s.ledger.Capacity(r),
		RatePerMinute: s.ledger.GenerationRate(r),
		FillRatio:     s.ledger.FillRatio(r),
	}
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	views := make([]resourceView, 0, len(domain.AllResources()))
	for _, res := range domain.AllResources() {
		views = append(views, s.viewOf(res))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"resources": views})
}

func (s *Server) handleResource(w http.ResponseWriter, r *http.Request) {
	res, err := domain.ParseResource(chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown resource type")
		return
	}
	writeJSON(w, http.StatusOK, s.viewOf(res))
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	count := 0 // zero means "all retained"
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "count must be a non-negative integer")
			return
		}
		count = n
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": s.ledger.Recent(count),
	})
}

// ─── Operation Handlers ─────────────────────────────────────────────────────

// costPayload is the wire form of a cost vector, keyed by resource name.
type costPayload map[string]int64

func (p costPayload) toCost() (domain.Cost, error) {
	cost := domain.Cost{}
	for name, n := range p {
		r, err := domain.ParseResource(name)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, domain.ErrUnknownResource
		}
		if n > 0 {
			cost[r] = n
		}
	}
	return cost, nil
}

type spendRequest struct {
	Cost   costPayload `json:"cost"`
	Reason string      `json:"reason"`
}

func (s *Server) handleSpend(w http.ResponseWriter, r *http.Request) {
	var req spendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cost, err := req.Cost.toCost()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cost vector")
		return
	}

	// A rejected spend is a reported outcome, not an HTTP error.
	if !s.ledger.Spend(cost, req.Reason) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":      false,
			"missing": s.ledger.Missing(cost),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

type earnRequest struct {
	Reward costPayload `json:"reward"`
	Reason string      `json:"reason"`
}

func (s *Server) handleEarn(w http.ResponseWriter, r *http.Request) {
	var req earnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reward, err := req.Reward.toCost()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reward vector")
		return
	}
	s.ledger.Earn(reward, req.Reason)
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

type refundRequest struct {
	Cost   costPayload `json:"cost"`
	Ratio  float64     `json:"ratio"`
	Reason string      `json:"reason"`
}

func (s *Server) handleRefund(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cost, err := req.Cost.toCost()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cost vector")
		return
	}
	s.ledger.Refund(cost, req.Ratio, req.Reason)
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

type affordabilityRequest struct {
	Cost costPayload `json:"cost"`
}

func (s *Server) handleAffordability(w http.ResponseWriter, r *http.Request) {
	var req affordabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cost, err := req.Cost.toCost()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid cost vector")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"affordable": s.ledger.CanAfford(cost),
		"missing":    s.ledger.Missing(cost),
	})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for the local HUD client.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
