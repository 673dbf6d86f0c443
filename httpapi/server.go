package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"caseflow/cases"
	"caseflow/logging"
)

// caseService is the slice of cases.Service the handlers need.
type caseService interface {
	GetCase(ctx context.Context, id string) (cases.Case, error)
	AssignExpert(ctx context.Context, caseID, expertID string) (cases.Assignment, error)
}

type Options struct {
	AppName   string
	APIPrefix string
	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// Server adapts HTTP requests onto the case service.
type Server struct {
	opts        Options
	caseService caseService
	logger      *logging.Logger
	metrics     *Metrics
}

func NewServer(opts Options, svc caseService, logger *logging.Logger, metrics *Metrics) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{
		opts:        opts,
		caseService: svc,
		logger:      logger,
		metrics:     metrics,
	}
}

// Routes builds the chi router with middleware and every endpoint mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(newLoggingMiddleware(s.logger))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(chimw.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return http.MaxBytesHandler(next, 1<<20)
	})

	r.Get("/health", s.handleHealth)
	if s.opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route(s.prefix()+"/cases", func(r chi.Router) {
		r.Get("/{caseID}", s.handleGetCase)
		r.Post("/{caseID}/assign", s.handleAssignExpert)
	})

	return r
}

func (s *Server) prefix() string {
	if s.opts.APIPrefix == "/" {
		return ""
	}
	return s.opts.APIPrefix
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", App: s.opts.AppName})
}
