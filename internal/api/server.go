// Package api provides the HTTP server for the reputation ledger.
//
// Every operation takes its caller principal from the X-Caller header —
// there is no ambient identity. The server maps domain sentinel errors to
// HTTP status codes and never exposes partial state: a failed operation
// leaves the ledger untouched and the response says why.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/repute-network/repute/internal/domain"
	"github.com/repute-network/repute/internal/infra/reputation"
	"github.com/repute-network/repute/internal/infra/sqlite"
)

// CallerHeader names the invoking principal on every request.
const CallerHeader = "X-Caller"

// Server is the reputation HTTP API server.
type Server struct {
	ledger         *reputation.Ledger
	log            *zap.Logger
	metricsEnabled bool
	hub            *EventHub  // live event feed (nil if not set)
	audit          *sqlite.DB // audit trail queries (nil if not set)
}

// NewServer creates a new API server around the ledger.
func NewServer(ledger *reputation.Ledger, log *zap.Logger) *Server {
	return &Server{ledger: ledger, log: log}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetEventHub sets the live event feed hub.
func (s *Server) SetEventHub(h *EventHub) { s.hub = h }

// SetAuditLog sets the database used for audit trail queries.
func (s *Server) SetAuditLog(db *sqlite.DB) { s.audit = db }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Route("/api/reputation", func(r chi.Router) {
		r.Post("/users", s.handleRegisterUser)
		r.Get("/users", s.handleListUsers)
		r.Get("/users/count", s.handleCount)
		r.Get("/users/{identity}", s.handleGetReputationData)
		r.Get("/users/{identity}/score", s.handleGetReputation)
		r.Post("/users/{identity}/decay", s.handleForceDecay)

		r.Post("/ratings", s.handleSubmitRating)

		r.Post("/authorizations", s.handleGrant)
		r.Delete("/authorizations/{identity}", s.handleRevoke)
		r.Get("/authorizations/{identity}", s.handleIsAuthorized)

		r.Get("/params", s.handleGetParams)
		r.Put("/params/decay", s.handleSetDecayEnabled)
		r.Put("/params/weighting", s.handleUpdateWeighting)

		r.Get("/events", s.handleRecentEvents)
	})

	if s.hub != nil {
		r.Get("/api/events/live", s.hub.HandleEventsSSE)
	}

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// ─── Handlers ───────────────────────────────────────────────────────────────

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identity string `json:"identity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Identity == "" {
		writeError(w, http.StatusBadRequest, "identity required")
		return
	}

	if err := s.ledger.RegisterUser(caller(r), req.Identity); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"identity": req.Identity,
		"score":    domain.InitialScore,
	})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 50)

	identities, err := s.ledger.ListRegistered(offset, limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	count, err := s.ledger.Count()
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if identities == nil {
		identities = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"identities": identities,
		"offset":     offset,
		"limit":      limit,
		"total":      count,
	})
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.ledger.Count()
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total": count})
}

func (s *Server) handleGetReputation(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	score, err := s.ledger.GetReputation(identity)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"identity": identity,
		"score":    score,
	})
}

func (s *Server) handleGetReputationData(w http.ResponseWriter, r *http.Request) {
	rec, err := s.ledger.GetReputationData(chi.URLParam(r, "identity"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleForceDecay(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	if err := s.ledger.ForceApplyDecay(identity); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	score, err := s.ledger.GetReputation(identity)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"identity": identity,
		"score":    score,
	})
}

func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ratee  string `json:"ratee"`
		Rating int64  `json:"rating"`
		Rater  string `json:"rater"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Ratee == "" || req.Rater == "" {
		writeError(w, http.StatusBadRequest, "ratee, rating and rater required")
		return
	}

	if err := s.ledger.SubmitRating(caller(r), req.Ratee, req.Rating, req.Rater); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	score, err := s.ledger.GetReputation(req.Ratee)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ratee": req.Ratee,
		"score": score,
	})
}

func (s *Server) handleGrant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identity string `json:"identity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Identity == "" {
		writeError(w, http.StatusBadRequest, "identity required")
		return
	}
	if err := s.ledger.GrantAuthorization(caller(r), req.Identity); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"identity":   req.Identity,
		"authorized": true,
	})
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	if err := s.ledger.RevokeAuthorization(caller(r), identity); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"identity":   identity,
		"authorized": false,
	})
}

func (s *Server) handleIsAuthorized(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	ok, err := s.ledger.IsAuthorized(identity)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"identity":   identity,
		"authorized": ok,
	})
}

func (s *Server) handleGetParams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Params())
}

func (s *Server) handleSetDecayEnabled(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "enabled required")
		return
	}
	if err := s.ledger.SetDecayEnabled(caller(r), req.Enabled); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.Params())
}

func (s *Server) handleUpdateWeighting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MinRaterReputation int64 `json:"min_rater_reputation"`
		MaxWeightMult      int64 `json:"max_weight_multiplier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "min_rater_reputation and max_weight_multiplier required")
		return
	}
	if err := s.ledger.UpdateWeightingParameters(caller(r), req.MinRaterReputation, req.MaxWeightMult); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.Params())
}

func (s *Server) handleRecentEvents(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeError(w, http.StatusServiceUnavailable, "audit log not configured")
		return
	}
	limit := queryInt(r, "limit", 50)
	events, err := s.audit.RecentEvents(limit)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if events == nil {
		events = []domain.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func caller(r *http.Request) string {
	return r.Header.Get(CallerHeader)
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// errorStatus maps domain sentinel errors to HTTP status codes.
func errorStatus(err error) int {
	switch err {
	case domain.ErrUnauthorized:
		return http.StatusForbidden
	case domain.ErrNotRegistered:
		return http.StatusNotFound
	case domain.ErrAlreadyRegistered:
		return http.StatusConflict
	case domain.ErrInvalidScore, domain.ErrSelfRatingNotAllowed, domain.ErrInvalidParameters:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError && s.log != nil {
		s.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeError(w, status, err.Error())
}

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
