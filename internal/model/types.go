// File path: internal/model/types.go
package model

// PerformanceTrend describes the direction a student's results have been
// moving across recent assessments.
type PerformanceTrend string

const (
	TrendImproving PerformanceTrend = "improving"
	TrendStable    PerformanceTrend = "stable"
	TrendDeclining PerformanceTrend = "declining"
)

// KnownTrend reports whether the value is one of the accepted trends.
func KnownTrend(value string) bool {
	switch PerformanceTrend(value) {
	case TrendImproving, TrendStable, TrendDeclining:
		return true
	}
	return false
}

// Grade is a single subject score. Immutable once built by the validator.
type Grade struct {
	Subject string  `json:"subject"`
	Score   float64 `json:"score"`
}

// Student is a validated performance record. Instances are produced only
// by the input validator and never mutated afterwards; they live for one
// analysis cycle.
type Student struct {
	ID                       string           `json:"id"`
	Name                     string           `json:"name"`
	Email                    string           `json:"email"`
	Grades                   []Grade          `json:"grades"`
	ParticipationScore       float64          `json:"participationScore"`
	AssignmentCompletionRate float64          `json:"assignmentCompletionRate"`
	TeacherNotes             string           `json:"teacherNotes"`
	PerformanceTrend         PerformanceTrend `json:"performanceTrend"`
	LastAssessmentDate       string           `json:"lastAssessmentDate"`
}
