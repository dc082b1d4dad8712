// File path: internal/pipeline/runner.go
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/classpulse/classpulse/internal/analysis"
	"github.com/classpulse/classpulse/internal/common"
	"github.com/classpulse/classpulse/internal/history"
	"github.com/classpulse/classpulse/internal/insight"
	"github.com/classpulse/classpulse/internal/llm"
	"github.com/classpulse/classpulse/internal/memory"
	"github.com/classpulse/classpulse/internal/model"
	"github.com/classpulse/classpulse/internal/validate"
)

// Recorder is the audit sink. Recorder failures are logged and
// swallowed by the runner; they never feed back into entity processing.
type Recorder interface {
	StartRun(ctx context.Context, runID, provider string, total, valid int) error
	RecordStudentOutcome(ctx context.Context, outcome history.StudentOutcome) error
	RecordClassOutcome(ctx context.Context, outcome history.ClassOutcome) error
	FinishRun(ctx context.Context, runID, status string, fallbackCount int) error
}

// MemoryWriter receives the rendered artifacts of a run. Failures are
// treated like recorder failures.
type MemoryWriter interface {
	Append(ctx context.Context, runID string, docs []memory.InsightDoc) error
}

// Runner sequences one batch through validation, analysis, insight
// generation and persistence. Entities are processed strictly one at a
// time; the provider call is the only suspension point and is bounded
// by the configured timeout.
type Runner struct {
	cfg      Config
	provider llm.Provider
	recorder Recorder
	memory   MemoryWriter
}

func NewRunner(cfg Config, provider llm.Provider, recorder Recorder, memoryStore MemoryWriter) *Runner {
	return &Runner{cfg: applyDefaults(cfg), provider: provider, recorder: recorder, memory: memoryStore}
}

// StudentResult is the per-entity slice of a run report.
type StudentResult struct {
	StudentID    string                 `json:"studentId"`
	StudentName  string                 `json:"studentName"`
	RiskLevel    analysis.RiskLevel     `json:"riskLevel"`
	UsedFallback bool                   `json:"usedFallback"`
	Status       string                 `json:"status"`
	Reasons      []string               `json:"reasons,omitempty"`
	Insight      insight.StudentInsight `json:"insight"`
	Rendered     string                 `json:"rendered"`
}

// ClassResult is the aggregate slice of a run report.
type ClassResult struct {
	Summary      analysis.ClassSummary  `json:"summary"`
	UsedFallback bool                   `json:"usedFallback"`
	Status       string                 `json:"status"`
	Reasons      []string               `json:"reasons,omitempty"`
	Insight      insight.TeacherInsight `json:"insight"`
	Rendered     string                 `json:"rendered"`
}

// RunReport is what a completed batch returns to callers.
type RunReport struct {
	RunID         string          `json:"runId"`
	Provider      string          `json:"provider"`
	InputErrors   []string        `json:"inputErrors,omitempty"`
	Students      []StudentResult `json:"students"`
	Class         *ClassResult    `json:"class,omitempty"`
	FallbackCount int             `json:"fallbackCount"`
}

const (
	statusRendered           = "rendered"
	statusSynthesisViolation = "synthesis_invariant_violation"
	runStatusCompleted       = "completed"
	runStatusEmpty           = "empty"
)

// Run executes one full batch. The raw value is untrusted JSON-shaped
// input; malformed records are reported in the report and skipped.
// A non-nil error is returned only for defects (illegal state machine
// transitions), never for provider or validation failures.
func (r *Runner) Run(ctx context.Context, raw interface{}, prefs *model.Preferences) (*RunReport, error) {
	logger := common.Logger()
	runID := uuid.NewString()

	batch := validate.ValidateBatch(raw)
	report := &RunReport{RunID: runID, Provider: r.providerName(), InputErrors: batch.Errors}
	logger.Info("pipeline: run started", "run_id", runID, "valid", len(batch.Valid), "rejected_errors", len(batch.Errors))

	total := len(batch.Valid) + countRejected(batch.Errors)
	r.startRun(ctx, runID, total, len(batch.Valid))

	if len(batch.Valid) == 0 {
		r.finishRun(ctx, runID, runStatusEmpty, 0)
		return report, nil
	}

	analyses := make([]analysis.Analysis, 0, len(batch.Valid))
	var docs []memory.InsightDoc
	for _, student := range batch.Valid {
		a := analysis.Analyze(student)
		analyses = append(analyses, a)

		result, err := r.processStudent(ctx, a, prefs)
		if err != nil {
			return nil, err
		}
		report.Students = append(report.Students, result)
		if result.UsedFallback {
			report.FallbackCount++
		}

		r.recordStudent(ctx, runID, a, result)
		docs = append(docs, memory.InsightDoc{
			RunID:        runID,
			Kind:         "student",
			StudentID:    student.ID,
			StudentName:  student.Name,
			UsedFallback: result.UsedFallback,
			Rendered:     result.Rendered,
		})
	}

	summary := analysis.Summarize(analyses)
	classResult, err := r.processClass(ctx, summary, prefs)
	if err != nil {
		return nil, err
	}
	report.Class = &classResult
	if classResult.UsedFallback {
		report.FallbackCount++
	}
	r.recordClass(ctx, runID, classResult)
	docs = append(docs, memory.InsightDoc{
		RunID:        runID,
		Kind:         "class",
		UsedFallback: classResult.UsedFallback,
		Rendered:     classResult.Rendered,
	})

	if r.memory != nil {
		if err := r.memory.Append(ctx, runID, docs); err != nil {
			logger.Error("pipeline: memory store write failed", "run_id", runID, "error", err)
		}
	}
	r.finishRun(ctx, runID, runStatusCompleted, report.FallbackCount)
	logger.Info("pipeline: run finished", "run_id", runID, "students", len(report.Students), "fallbacks", report.FallbackCount)
	return report, nil
}

// processStudent walks one entity through the state machine. Provider
// failure and schema violation take the same path: deterministic
// fallback from the analysis, never from provider output.
func (r *Runner) processStudent(ctx context.Context, a analysis.Analysis, prefs *model.Preferences) (StudentResult, error) {
	logger := common.Logger()
	result := StudentResult{
		StudentID:   a.Student.ID,
		StudentName: a.Student.Name,
		RiskLevel:   a.RiskLevel,
		Status:      statusRendered,
	}
	m := newMachine()

	if err := m.advance(StateProviderCalled); err != nil {
		return StudentResult{}, err
	}
	raw, callErr := r.callProvider(ctx, insight.BuildStudentPrompt(a, prefs))

	var content insight.StudentInsight
	switch {
	case callErr != nil:
		if err := m.advance(StateProviderCallFailed); err != nil {
			return StudentResult{}, err
		}
		result.Reasons = []string{fmt.Sprintf("provider call failed: %v", callErr)}
	default:
		parsed, reasons := insight.ParseStudentInsight(raw)
		if len(reasons) == 0 {
			if err := m.advance(StateValidationSucceeded); err != nil {
				return StudentResult{}, err
			}
			content = parsed
		} else {
			if err := m.advance(StateValidationFailed); err != nil {
				return StudentResult{}, err
			}
			result.Reasons = reasons
		}
	}

	if m.current == StateProviderCallFailed || m.current == StateValidationFailed {
		if err := m.advance(StateFallbackSynthesized); err != nil {
			return StudentResult{}, err
		}
		content = insight.StudentFallback(a, prefs)
		result.UsedFallback = true
		if err := checkStudentSynthesis(content); err != nil {
			logger.Error("pipeline: fallback synthesis violated its own bounds", "student", a.Student.ID, "error", err)
			result.Status = statusSynthesisViolation
		}
	}

	if err := m.advance(StateRendered); err != nil {
		return StudentResult{}, err
	}
	result.Insight = content
	result.Rendered = insight.RenderStudent(a.Student.Name, content)
	logger.Debug("pipeline: student processed", "student", a.Student.ID, "used_fallback", result.UsedFallback)
	return result, nil
}

func (r *Runner) processClass(ctx context.Context, summary analysis.ClassSummary, prefs *model.Preferences) (ClassResult, error) {
	logger := common.Logger()
	result := ClassResult{Summary: summary, Status: statusRendered}
	m := newMachine()

	if err := m.advance(StateProviderCalled); err != nil {
		return ClassResult{}, err
	}
	raw, callErr := r.callProvider(ctx, insight.BuildTeacherPrompt(summary, prefs))

	var content insight.TeacherInsight
	switch {
	case callErr != nil:
		if err := m.advance(StateProviderCallFailed); err != nil {
			return ClassResult{}, err
		}
		result.Reasons = []string{fmt.Sprintf("provider call failed: %v", callErr)}
	default:
		parsed, reasons := insight.ParseTeacherInsight(raw)
		if len(reasons) == 0 {
			if err := m.advance(StateValidationSucceeded); err != nil {
				return ClassResult{}, err
			}
			content = parsed
		} else {
			if err := m.advance(StateValidationFailed); err != nil {
				return ClassResult{}, err
			}
			result.Reasons = reasons
		}
	}

	if m.current == StateProviderCallFailed || m.current == StateValidationFailed {
		if err := m.advance(StateFallbackSynthesized); err != nil {
			return ClassResult{}, err
		}
		content = insight.TeacherFallback(summary, prefs)
		result.UsedFallback = true
	}

	if err := m.advance(StateRendered); err != nil {
		return ClassResult{}, err
	}
	result.Insight = content
	result.Rendered = insight.RenderTeacher(content)
	logger.Debug("pipeline: class processed", "used_fallback", result.UsedFallback)
	return result, nil
}

// callProvider bounds the only suspension point in the pipeline with
// the configured timeout.
func (r *Runner) callProvider(ctx context.Context, messages []llm.Message) (string, error) {
	if r.provider == nil {
		return "", fmt.Errorf("no provider configured")
	}
	callCtx, cancel := context.WithTimeout(ctx, r.cfg.ProviderTimeout)
	defer cancel()
	return r.provider.Chat(callCtx, messages)
}

// checkStudentSynthesis asserts the internal bounds the fallback
// generator guarantees by construction. A violation is a programming
// defect, not a runtime condition to recover from.
func checkStudentSynthesis(content insight.StudentInsight) error {
	if strings.TrimSpace(content.PositiveObservation) == "" {
		return fmt.Errorf("empty positive observation")
	}
	if len(content.Strengths) == 0 || len(content.ImprovementAreas) == 0 {
		return fmt.Errorf("empty observation lists")
	}
	if len(content.Strategies) < 2 {
		return fmt.Errorf("fewer than two strategies")
	}
	return nil
}

func (r *Runner) providerName() string {
	if r.provider == nil {
		return "none"
	}
	return r.provider.Name()
}

func (r *Runner) startRun(ctx context.Context, runID string, total, valid int) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.StartRun(ctx, runID, r.providerName(), total, valid); err != nil {
		common.Logger().Error("pipeline: recorder start failed", "run_id", runID, "error", err)
	}
}

func (r *Runner) finishRun(ctx context.Context, runID, status string, fallbacks int) {
	if r.recorder == nil {
		return
	}
	if err := r.recorder.FinishRun(ctx, runID, status, fallbacks); err != nil {
		common.Logger().Error("pipeline: recorder finish failed", "run_id", runID, "error", err)
	}
}

func (r *Runner) recordStudent(ctx context.Context, runID string, a analysis.Analysis, result StudentResult) {
	if r.recorder == nil {
		return
	}
	analysisJSON, _ := json.Marshal(a)
	insightJSON, _ := json.Marshal(result.Insight)
	outcome := history.StudentOutcome{
		RunID:        runID,
		StudentID:    a.Student.ID,
		StudentName:  a.Student.Name,
		Status:       result.Status,
		UsedFallback: result.UsedFallback,
		RiskLevel:    string(a.RiskLevel),
		AverageScore: a.Metrics.AverageScore,
		AnalysisJSON: string(analysisJSON),
		InsightJSON:  string(insightJSON),
		Error:        strings.Join(result.Reasons, "; "),
	}
	if err := r.recorder.RecordStudentOutcome(ctx, outcome); err != nil {
		common.Logger().Error("pipeline: recorder student outcome failed", "run_id", runID, "student", a.Student.ID, "error", err)
	}
}

func (r *Runner) recordClass(ctx context.Context, runID string, result ClassResult) {
	if r.recorder == nil {
		return
	}
	insightJSON, _ := json.Marshal(result.Insight)
	outcome := history.ClassOutcome{
		RunID:        runID,
		Status:       result.Status,
		UsedFallback: result.UsedFallback,
		ClassAverage: result.Summary.ClassAverage,
		InsightJSON:  string(insightJSON),
		Error:        strings.Join(result.Reasons, "; "),
	}
	if err := r.recorder.RecordClassOutcome(ctx, outcome); err != nil {
		common.Logger().Error("pipeline: recorder class outcome failed", "run_id", runID, "error", err)
	}
}

// countRejected derives how many records were rejected from the indexed
// error prefixes so the run header can carry an accurate total.
func countRejected(errs []string) int {
	seen := map[string]struct{}{}
	for _, e := range errs {
		idx := strings.Index(e, ":")
		if idx <= 0 {
			continue
		}
		seen[e[:idx]] = struct{}{}
	}
	return len(seen)
}
