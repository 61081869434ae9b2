// Package chi exposes the advisory service over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/travel-assistant/internal/domain"
	"github.com/kailas-cloud/travel-assistant/internal/version"
)

const maxQueryBytes = 4 << 10

// Advisor is the single use case behind the API.
type Advisor interface {
	Advise(ctx context.Context, query string) (domain.TravelAdvice, error)
}

// HealthCheck verifies one dependency. The map key names it in the report.
type HealthCheck func(ctx context.Context) error

// Server implements the travel-assistant HTTP API.
type Server struct {
	advisor Advisor
	checks  map[string]HealthCheck
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(advisor Advisor, checks map[string]HealthCheck, logger *zap.Logger) *Server {
	return &Server{advisor: advisor, checks: checks, logger: logger}
}

// Routes registers all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.Root)
	r.Get("/health", s.Health)
	r.Get("/metrics", s.Metrics)
	r.Post("/travel-assistant", s.Advise)
}

// adviseRequest is the POST /travel-assistant body.
type adviseRequest struct {
	Query string `json:"query"`
}

// Advise handles POST /travel-assistant.
func (s *Server) Advise(w http.ResponseWriter, r *http.Request) {
	var req adviseRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "Query is required")
		return
	}

	advice, err := s.advisor.Advise(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, advice)
}

// Root handles GET / with service identity.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "travel-assistant",
		"version": version.Version,
	})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	httpStatus := http.StatusOK
	checks := make(map[string]string, len(s.checks))

	for name, check := range s.checks {
		if err := check(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
			checks[name] = "unhealthy"
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "healthy"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrContentFlagged):
		writeError(w, http.StatusBadRequest, "content_flagged",
			"Query contains inappropriate content")
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
