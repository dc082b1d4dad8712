// File path: internal/history/types.go
package history

// StudentOutcome is the audit record for one student's trip through the
// insight pipeline. Snapshots are stored as JSON text so a run's inputs
// and outputs can be inspected after the fact.
type StudentOutcome struct {
	RunID        string `db:"run_id" json:"runId"`
	StudentID    string `db:"student_id" json:"studentId"`
	StudentName  string `db:"student_name" json:"studentName"`
	Status       string `db:"status" json:"status"`
	UsedFallback bool   `db:"used_fallback" json:"usedFallback"`
	RiskLevel    string `db:"risk_level" json:"riskLevel"`
	AverageScore float64 `db:"average_score" json:"averageScore"`
	AnalysisJSON string `db:"analysis_json" json:"analysisJson,omitempty"`
	InsightJSON  string `db:"insight_json" json:"insightJson,omitempty"`
	RenderedRef  string `db:"rendered_ref" json:"renderedRef,omitempty"`
	Error        string `db:"error" json:"error,omitempty"`
	CreatedAt    string `db:"created_at" json:"createdAt"`
}

// ClassOutcome is the audit record for the aggregate class insight.
type ClassOutcome struct {
	RunID        string  `db:"run_id" json:"runId"`
	Status       string  `db:"status" json:"status"`
	UsedFallback bool    `db:"used_fallback" json:"usedFallback"`
	ClassAverage float64 `db:"class_average" json:"classAverage"`
	InsightJSON  string  `db:"insight_json" json:"insightJson,omitempty"`
	RenderedRef  string  `db:"rendered_ref" json:"renderedRef,omitempty"`
	Error        string  `db:"error" json:"error,omitempty"`
	CreatedAt    string  `db:"created_at" json:"createdAt"`
}

// RunRow summarizes one pipeline run.
type RunRow struct {
	ID            string `db:"id" json:"id"`
	Provider      string `db:"provider" json:"provider"`
	StartedAt     string `db:"started_at" json:"startedAt"`
	FinishedAt    string `db:"finished_at" json:"finishedAt,omitempty"`
	StudentsTotal int    `db:"students_total" json:"studentsTotal"`
	StudentsValid int    `db:"students_valid" json:"studentsValid"`
	FallbackCount int    `db:"fallback_count" json:"fallbackCount"`
	Status        string `db:"status" json:"status"`
}

// RunDetail bundles everything recorded about one run.
type RunDetail struct {
	Run      RunRow           `json:"run"`
	Students []StudentOutcome `json:"students"`
	Class    *ClassOutcome    `json:"class,omitempty"`
}
