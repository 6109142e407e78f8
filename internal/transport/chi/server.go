package chi

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wildone/asset-share-commons/internal/domain/search/result"
	healthuc "github.com/wildone/asset-share-commons/internal/usecase/health"
)

// Searcher runs one search for a page.
type Searcher interface {
	Search(ctx context.Context, pageID string, params map[string]string) (*result.Envelope, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the search API.
type Server struct {
	search      Searcher
	health      HealthChecker
	logger      *zap.Logger
	exposeQuery bool
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithExposeQuery includes the executed backend statement in search responses.
func WithExposeQuery(expose bool) ServerOption {
	return func(s *Server) { s.exposeQuery = expose }
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, logger *zap.Logger, opts ...ServerOption) *Server {
	s := &Server{search: search, health: health, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/pages/{page}/search", s.SearchPage)
	})
}

// SearchPage handles GET /api/v1/pages/{page}/search. Query parameters are
// querybuilder predicates; repeated keys keep their first value.
func (s *Server) SearchPage(w http.ResponseWriter, r *http.Request) {
	pageID := strings.TrimSpace(chi.URLParam(r, "page"))
	if pageID == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "page is required")
		return
	}

	query := r.URL.Query()
	params := make(map[string]string, len(query))
	for k, v := range query {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	env, err := s.search.Search(r.Context(), pageID, params)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse(env, s.exposeQuery))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}
