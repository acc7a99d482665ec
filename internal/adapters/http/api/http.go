// Package api exposes the parse service over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gorilla/mux"

	service "github.com/okian/touchline/internal/app"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Parse(ctx context.Context, req service.Request) (service.Result, error)
	Get(ctx context.Context, id string) (service.Result, error)
	Info(ctx context.Context, id string) (service.Info, error)
	List(ctx context.Context) ([]service.Info, error)
	Delete(ctx context.Context, id string) error
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats(ctx context.Context) map[string]any
}

const defaultMaxUploadBytes = 64 << 20

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadBytes bounds the size of a POST /v1/matches body.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.matchesHandler.maxUploadBytes = n
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	matchesHandler *MatchesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		matchesHandler: NewMatchesHandler(deps, defaultMaxUploadBytes),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to router.
func (s *Server) Register(router *mux.Router) {
	if router == nil {
		panic("router is nil")
	}
	router.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	router.Handle("/metrics", s.healthHandler.MetricsHandler()).Methods(http.MethodGet)
	router.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)

	v1 := router.PathPrefix("/v1").Subrouter()
	m := s.matchesHandler
	v1.HandleFunc("/matches", MetricsMiddleware(m.HandleUpload, "matches_upload")).Methods(http.MethodPost)
	v1.HandleFunc("/matches", MetricsMiddleware(m.HandleList, "matches_list")).Methods(http.MethodGet)
	v1.HandleFunc("/matches/{id}", MetricsMiddleware(m.HandleGet, "match_get")).Methods(http.MethodGet)
	v1.HandleFunc("/matches/{id}", MetricsMiddleware(m.HandleDelete, "match_delete")).Methods(http.MethodDelete)
	v1.HandleFunc("/matches/{id}/events.csv", MetricsMiddleware(m.HandleEventsCSV, "match_events_csv")).Methods(http.MethodGet)
	v1.HandleFunc("/matches/{id}/events", MetricsMiddleware(m.HandleEvents, "match_events")).Methods(http.MethodGet)
}

// Router returns a new router with every route registered.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	s.Register(router)
	return router
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
