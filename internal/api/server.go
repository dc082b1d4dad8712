// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/classpulse/classpulse/internal/common"
	"github.com/classpulse/classpulse/internal/history"
	"github.com/classpulse/classpulse/internal/memory"
	"github.com/classpulse/classpulse/internal/pipeline"
)

// Server exposes batch runs and their audit trail over HTTP.
type Server struct {
	router   chi.Router
	runner   *pipeline.Runner
	history  *history.Store
	memory   *memory.Store
	provider string
}

func NewServer(runner *pipeline.Runner, historyStore *history.Store, memoryStore *memory.Store, providerName string) (*Server, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner required")
	}
	s := &Server{
		runner:   runner,
		history:  historyStore,
		memory:   memoryStore,
		provider: providerName,
	}
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/runs", s.handleCreateRun)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}", s.handleRunDetail)
		r.Get("/logs", s.handleLogs)
	})
	s.router = r
	common.Logger().Info("api: server routes registered", "provider", providerName)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		common.Logger().Error("api: response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
