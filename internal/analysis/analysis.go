// File path: internal/analysis/analysis.go
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/classpulse/classpulse/internal/model"
)

// RiskLevel classifies how urgently a student needs intervention.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Threshold constants behind the deterministic classification rules.
// The attention threshold (75) and the fallback study-routine threshold
// (70, see the insight package) are intentionally distinct values.
const (
	attentionAverage    = 75
	attentionCompletion = 80

	highAverage       = 70
	highParticipation = 4
	highCompletion    = 70

	mediumAverage       = 80
	mediumParticipation = 6
	mediumCompletion    = 85

	strongAverage       = 85
	strongParticipation = 8
	strongCompletion    = 90
)

// Metrics are the derived numbers for one student.
type Metrics struct {
	AverageScore             float64       `json:"averageScore"`
	HighestSubjects          []model.Grade `json:"highestSubjects"`
	LowestSubjects           []model.Grade `json:"lowestSubjects"`
	ParticipationScore       float64       `json:"participationScore"`
	AssignmentCompletionRate float64       `json:"assignmentCompletionRate"`
	NeedsAttention           bool          `json:"needsAttention"`
}

// Analysis is the immutable result of analyzing one student. It feeds
// both the insight provider prompt and the fallback synthesizer.
type Analysis struct {
	Student          model.Student `json:"student"`
	Metrics          Metrics       `json:"metrics"`
	Strengths        []string      `json:"strengths"`
	ImprovementAreas []string      `json:"improvementAreas"`
	RiskLevel        RiskLevel     `json:"riskLevel"`
}

// ClassSummary aggregates a batch of analyses. It folds over the
// per-student metrics and never recomputes them from raw grades.
type ClassSummary struct {
	ClassAverage    float64  `json:"classAverage"`
	TopStudents     []string `json:"topStudents"`
	AttentionNeeded []string `json:"attentionNeeded"`
	Notes           []string `json:"notes"`
}

// Analyze derives metrics, observations and a risk level for a student.
// Pure and total: the same student always yields the same analysis.
func Analyze(student model.Student) Analysis {
	avg := averageScore(student.Grades)
	metrics := Metrics{
		AverageScore:             avg,
		HighestSubjects:          topGrades(student.Grades, false),
		LowestSubjects:           topGrades(student.Grades, true),
		ParticipationScore:       student.ParticipationScore,
		AssignmentCompletionRate: student.AssignmentCompletionRate,
		NeedsAttention: avg < attentionAverage ||
			student.AssignmentCompletionRate < attentionCompletion ||
			student.PerformanceTrend == model.TrendDeclining,
	}
	return Analysis{
		Student:          student,
		Metrics:          metrics,
		Strengths:        strengths(student, metrics),
		ImprovementAreas: improvementAreas(student, metrics),
		RiskLevel:        classifyRisk(student, metrics),
	}
}

// Summarize folds a sequence of analyses into a class-level summary.
// Empty input yields a zero average and empty lists.
func Summarize(analyses []Analysis) ClassSummary {
	summary := ClassSummary{
		TopStudents:     []string{},
		AttentionNeeded: []string{},
		Notes:           []string{},
	}
	if len(analyses) == 0 {
		return summary
	}

	var total float64
	for _, a := range analyses {
		total += a.Metrics.AverageScore
	}
	summary.ClassAverage = round2(total / float64(len(analyses)))

	ranked := make([]Analysis, len(analyses))
	copy(ranked, analyses)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Metrics.AverageScore > ranked[j].Metrics.AverageScore
	})
	for i := 0; i < len(ranked) && i < 3; i++ {
		summary.TopStudents = append(summary.TopStudents, ranked[i].Student.Name)
	}

	declining := 0
	highCompleters := 0
	for _, a := range analyses {
		if a.Metrics.NeedsAttention || a.RiskLevel == RiskHigh {
			summary.AttentionNeeded = append(summary.AttentionNeeded, a.Student.Name)
		}
		if a.Student.PerformanceTrend == model.TrendDeclining {
			declining++
		}
		if a.Metrics.AssignmentCompletionRate >= strongCompletion {
			highCompleters++
		}
	}
	if declining > 0 {
		summary.Notes = append(summary.Notes, fmt.Sprintf("%d student(s) are on a declining performance trend.", declining))
	}
	if highCompleters > 0 {
		summary.Notes = append(summary.Notes, fmt.Sprintf("%d student(s) keep assignment completion at or above 90%%.", highCompleters))
	}
	return summary
}

func averageScore(grades []model.Grade) float64 {
	if len(grades) == 0 {
		return 0
	}
	var total float64
	for _, g := range grades {
		total += g.Score
	}
	return round2(total / float64(len(grades)))
}

// topGrades stable-sorts a copy of the grades and takes the first two,
// so equal scores keep their original relative order.
func topGrades(grades []model.Grade, ascending bool) []model.Grade {
	sorted := make([]model.Grade, len(grades))
	copy(sorted, grades)
	sort.SliceStable(sorted, func(i, j int) bool {
		if ascending {
			return sorted[i].Score < sorted[j].Score
		}
		return sorted[i].Score > sorted[j].Score
	})
	if len(sorted) > 2 {
		sorted = sorted[:2]
	}
	return sorted
}

func classifyRisk(student model.Student, metrics Metrics) RiskLevel {
	if metrics.AverageScore < highAverage ||
		student.ParticipationScore <= highParticipation ||
		student.AssignmentCompletionRate < highCompletion ||
		student.PerformanceTrend == model.TrendDeclining {
		return RiskHigh
	}
	if metrics.AverageScore < mediumAverage ||
		student.ParticipationScore <= mediumParticipation ||
		student.AssignmentCompletionRate < mediumCompletion {
		return RiskMedium
	}
	return RiskLow
}

// Check order below is load-bearing: the lists are rendered in exactly
// this order downstream, without re-sorting.

func strengths(student model.Student, metrics Metrics) []string {
	var out []string
	if metrics.AverageScore >= strongAverage {
		out = append(out, fmt.Sprintf("Maintains a strong overall average of %s.", FormatScore(metrics.AverageScore)))
	}
	if student.ParticipationScore >= strongParticipation {
		out = append(out, "Participates actively in class discussions.")
	}
	if student.AssignmentCompletionRate >= strongCompletion {
		out = append(out, "Completes assignments consistently and on time.")
	}
	if student.PerformanceTrend == model.TrendImproving {
		out = append(out, "Shows an improving performance trend.")
	}
	return out
}

func improvementAreas(student model.Student, metrics Metrics) []string {
	var out []string
	if metrics.AverageScore < attentionAverage {
		out = append(out, "Raise the overall academic average.")
	}
	if student.ParticipationScore <= mediumParticipation {
		out = append(out, "Engage more actively during class.")
	}
	if student.AssignmentCompletionRate < mediumCompletion {
		out = append(out, "Improve the assignment completion rate.")
	}
	if student.PerformanceTrend == model.TrendDeclining {
		out = append(out, "Reverse the recent decline in results.")
	}
	if len(metrics.LowestSubjects) > 0 {
		out = append(out, fmt.Sprintf("Strengthen the weakest subjects: %s.", strings.Join(SubjectNames(metrics.LowestSubjects), ", ")))
	}
	return out
}

// SubjectNames extracts the subject names from a grade slice in order.
func SubjectNames(grades []model.Grade) []string {
	names := make([]string, 0, len(grades))
	for _, g := range grades {
		names = append(names, g.Subject)
	}
	return names
}

// FormatScore renders a score without trailing zero noise (80 not 80.00).
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// round2 rounds to two decimals, half away from zero.
func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
