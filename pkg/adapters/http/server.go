// Package http exposes a read-only inspection API over stored sessions.
//
//	GET    /healthz
//	GET    /metrics
//	GET    /states
//	GET    /sessions
//	GET    /sessions/{id}
//	DELETE /sessions/{id}
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/parlance/internal/logging"
	"github.com/aretw0/parlance/pkg/config"
	"github.com/aretw0/parlance/pkg/domain"
	"github.com/aretw0/parlance/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves the inspection endpoints.
type Server struct {
	Store   ports.SessionStore
	Config  *config.Config
	Metrics http.Handler
	Logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithConfig exposes the state table on /states.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		s.Config = cfg
	}
}

// WithMetrics mounts a metrics handler on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.Logger = l
		}
	}
}

// NewHandler creates the HTTP handler for store.
func NewHandler(store ports.SessionStore, opts ...Option) http.Handler {
	s := &Server{Store: store, Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}
	r.Get("/states", s.States)
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Get("/{id}", s.GetSession)
		r.Delete("/{id}", s.DeleteSession)
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StateView is one entry of the /states response.
type StateView struct {
	ID          string   `json:"id"`
	Model       string   `json:"model"`
	Temperature float64  `json:"temperature"`
	Transitions []string `json:"transitions"`
}

// States handles GET /states.
func (s *Server) States(w http.ResponseWriter, r *http.Request) {
	if s.Config == nil {
		http.Error(w, "no configuration loaded", http.StatusNotFound)
		return
	}
	views := make([]StateView, 0, len(s.Config.States))
	for _, id := range s.Config.StateIDs() {
		spec, _ := s.Config.State(id)
		transitions := spec.AllowedTransitions
		if transitions == nil {
			transitions = []string{}
		}
		views = append(views, StateView{ID: id, Model: spec.Model, Temperature: spec.Temperature, Transitions: transitions})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"initial_state": s.Config.InitialState,
		"states":        views,
	})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Store.List(r.Context())
	if err != nil {
		s.Logger.Error("list sessions failed", "error", err)
		http.Error(w, "failed to list sessions", http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.Store.Load(r.Context(), id)
	if err != nil {
		s.storeError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.Store.Load(r.Context(), id); err != nil {
		s.storeError(w, id, err)
		return
	}
	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.storeError(w, id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) storeError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	s.Logger.Error("session store failed", "session_id", id, "error", err)
	http.Error(w, "session store error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
