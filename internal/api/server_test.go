// File path: internal/api/server_test.go
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/classpulse/classpulse/internal/history"
	"github.com/classpulse/classpulse/internal/llm"
	"github.com/classpulse/classpulse/internal/memory"
	"github.com/classpulse/classpulse/internal/pipeline"
)

const stubStudentJSON = `{"positiveObservation":"Strong term","strengths":["Consistent homework"],"improvementAreas":["Class participation"],"strategies":["Daily review","Office hours"],"nextStepGoal":"Hit 85 in Math","encouragement":"Keep it up!"}`

const stubTeacherJSON = `{"classOverview":"Steady progress overall.","strengths":["Reliable attendance"],"attentionNeeded":[],"nextSteps":["Schedule a recap","Share wins"]}`

type stubProvider struct{}

func (stubProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	if strings.HasPrefix(messages[len(messages)-1].Content, "Write a class overview") {
		return stubTeacherJSON, nil
	}
	return stubStudentJSON, nil
}

func (stubProvider) Name() string { return "stub" }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	historyStore, err := history.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { historyStore.Close() })
	memoryStore, err := memory.NewStore(filepath.Join(dir, "insights"))
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	cfg := pipeline.DefaultConfig()
	cfg.ProviderTimeout = time.Second
	runner := pipeline.NewRunner(cfg, stubProvider{}, historyStore, memoryStore)
	server, err := NewServer(runner, historyStore, memoryStore, "stub")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return server
}

func doRequest(t *testing.T, server *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)
	rec := doRequest(t, server, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	if body["status"] != "ok" || body["provider"] != "stub" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestCreateRunEndToEnd(t *testing.T) {
	server := newTestServer(t)
	payload := `{
		"students": [{
			"id": "s1", "name": "Ada", "email": "ada@school.edu",
			"grades": [{"subject": "Math", "score": 91}],
			"participationScore": 9, "assignmentCompletionRate": 96,
			"performanceTrend": "improving", "lastAssessmentDate": "2026-05-01"
		}],
		"preferences": {"tone": "warm", "classGoals": ["Finish strong"]}
	}`

	rec := doRequest(t, server, http.MethodPost, "/api/v1/runs", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("create run status %d: %s", rec.Code, rec.Body.String())
	}
	var report pipeline.RunReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode run report: %v", err)
	}
	if report.RunID == "" || len(report.Students) != 1 || report.FallbackCount != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Class == nil || !strings.Contains(report.Class.Rendered, "Steady progress") {
		t.Fatalf("class result missing provider content: %+v", report.Class)
	}

	rec = doRequest(t, server, http.MethodGet, "/api/v1/runs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list runs status %d", rec.Code)
	}
	var listing struct {
		Runs []history.RunRow `json:"runs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode run listing: %v", err)
	}
	if len(listing.Runs) != 1 || listing.Runs[0].ID != report.RunID {
		t.Fatalf("unexpected listing: %+v", listing.Runs)
	}

	rec = doRequest(t, server, http.MethodGet, fmt.Sprintf("/api/v1/runs/%s", report.RunID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("run detail status %d: %s", rec.Code, rec.Body.String())
	}
	var detail struct {
		Run       history.RunRow           `json:"run"`
		Students  []history.StudentOutcome `json:"students"`
		Documents []memory.InsightDoc      `json:"documents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode run detail: %v", err)
	}
	if detail.Run.Status != "completed" || len(detail.Students) != 1 {
		t.Fatalf("unexpected detail: %+v", detail.Run)
	}
	if len(detail.Documents) != 2 {
		t.Fatalf("expected student + class documents, got %d", len(detail.Documents))
	}
}

func TestCreateRunRejectsBadBody(t *testing.T) {
	server := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/v1/runs", "not json at all")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}

	rec = doRequest(t, server, http.MethodPost, "/api/v1/runs", `{"preferences": {}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing students, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "students field required") {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}
}

func TestCreateRunReportsInputErrors(t *testing.T) {
	server := newTestServer(t)
	rec := doRequest(t, server, http.MethodPost, "/api/v1/runs", `{"students": {"not": "an array"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("invalid roster shape is a report, not a transport error: %d", rec.Code)
	}
	var report pipeline.RunReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.InputErrors) != 1 || len(report.Students) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestListRunsRejectsBadLimit(t *testing.T) {
	server := newTestServer(t)
	rec := doRequest(t, server, http.MethodGet, "/api/v1/runs?limit=zero", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestRunDetailNotFound(t *testing.T) {
	server := newTestServer(t)
	rec := doRequest(t, server, http.MethodGet, "/api/v1/runs/does-not-exist", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown run, got %d", rec.Code)
	}
}

func TestLogsEndpoint(t *testing.T) {
	server := newTestServer(t)
	rec := doRequest(t, server, http.MethodGet, "/api/v1/logs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("logs status %d", rec.Code)
	}
	var body struct {
		Entries []json.RawMessage `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode logs body: %v", err)
	}
}
