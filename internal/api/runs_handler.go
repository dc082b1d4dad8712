// File path: internal/api/runs_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/classpulse/classpulse/internal/common"
	"github.com/classpulse/classpulse/internal/history"
	"github.com/classpulse/classpulse/internal/memory"
	"github.com/classpulse/classpulse/internal/model"
)

type createRunRequest struct {
	Students    json.RawMessage    `json:"students"`
	Preferences *model.Preferences `json:"preferences,omitempty"`
}

type runDetailResponse struct {
	history.RunDetail
	Documents []memory.InsightDoc `json:"documents,omitempty"`
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	logger := common.Logger()
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if len(req.Students) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("students field required"))
		return
	}
	var raw interface{}
	if err := json.Unmarshal(req.Students, &raw); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("students field is not valid JSON: %w", err))
		return
	}
	report, err := s.runner.Run(r.Context(), raw, req.Preferences)
	if err != nil {
		logger.Error("api: run failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	logger.Info("api: run completed", "run_id", report.RunID, "students", len(report.Students), "fallbacks", report.FallbackCount)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("history store unavailable"))
		return
	}
	limit := 20
	if value := strings.TrimSpace(r.URL.Query().Get("limit")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	runs, err := s.history.RecentRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (s *Server) handleRunDetail(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("history store unavailable"))
		return
	}
	runID := strings.TrimSpace(chi.URLParam(r, "runID"))
	if runID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("run id required"))
		return
	}
	detail, err := s.history.RunDetail(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if detail == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("run not found"))
		return
	}
	resp := runDetailResponse{RunDetail: *detail}
	if s.memory != nil {
		docs, err := s.memory.RunDocs(r.Context(), runID)
		if err != nil {
			common.Logger().Warn("api: run documents unavailable", "run_id", runID, "error", err)
		} else {
			resp.Documents = docs
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": common.LogEntries()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "provider": s.provider})
}
