// File path: internal/insight/fallback_test.go
package insight

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/classpulse/classpulse/internal/analysis"
	"github.com/classpulse/classpulse/internal/model"
)

func strugglingStudent() model.Student {
	return model.Student{
		ID:   "s1",
		Name: "Bob",
		Grades: []model.Grade{
			{Subject: "Math", Score: 60},
			{Subject: "History", Score: 68},
		},
		ParticipationScore:       5,
		AssignmentCompletionRate: 70,
		PerformanceTrend:         model.TrendDeclining,
		LastAssessmentDate:       "2026-05-01",
	}
}

func thrivingStudent() model.Student {
	return model.Student{
		ID:   "s2",
		Name: "Ada",
		Grades: []model.Grade{
			{Subject: "Math", Score: 95},
			{Subject: "Science", Score: 93},
		},
		ParticipationScore:       9,
		AssignmentCompletionRate: 98,
		PerformanceTrend:         model.TrendImproving,
		LastAssessmentDate:       "2026-05-01",
	}
}

func TestStudentFallbackIsPure(t *testing.T) {
	a := analysis.Analyze(strugglingStudent())
	prefs := &model.Preferences{PreferredStrategies: []string{"Pair weaker students with mentors"}}
	first := StudentFallback(a, prefs)
	second := StudentFallback(a, prefs)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("fallback must be deterministic for identical inputs")
	}
}

func TestStudentFallbackNeverReadsProviderOutput(t *testing.T) {
	rejectedRaw := `{"positiveObservation": "XYZZY-marker-that-failed-validation"}`
	if _, errs := ParseStudentInsight(rejectedRaw); len(errs) == 0 {
		t.Fatalf("fixture should fail validation")
	}
	fallback := StudentFallback(analysis.Analyze(strugglingStudent()), nil)
	encoded, err := json.Marshal(fallback)
	if err != nil {
		t.Fatalf("marshal fallback: %v", err)
	}
	if strings.Contains(string(encoded), "XYZZY") {
		t.Fatalf("fallback output must not contain provider text")
	}
}

func TestStudentFallbackIsSchemaValidByConstruction(t *testing.T) {
	for _, student := range []model.Student{strugglingStudent(), thrivingStudent()} {
		fallback := StudentFallback(analysis.Analyze(student), nil)
		encoded, err := json.Marshal(fallback)
		if err != nil {
			t.Fatalf("marshal fallback: %v", err)
		}
		reparsed, errs := ParseStudentInsight(string(encoded))
		if len(errs) != 0 {
			t.Fatalf("fallback for %s failed its own schema: %v", student.Name, errs)
		}
		if !reflect.DeepEqual(fallback, reparsed) {
			t.Fatalf("fallback should survive the validator unchanged:\n got %+v\nwant %+v", reparsed, fallback)
		}
	}
}

func TestStudentFallbackStrategyLadderOrder(t *testing.T) {
	a := analysis.Analyze(strugglingStudent())
	fallback := StudentFallback(a, nil)
	if len(fallback.Strategies) != 3 {
		t.Fatalf("expected the ladder capped at 3, got %v", fallback.Strategies)
	}
	if !strings.Contains(fallback.Strategies[0], "planner") {
		t.Fatalf("low completion tip must come first, got %q", fallback.Strategies[0])
	}
	if !strings.Contains(fallback.Strategies[1], "talking point") {
		t.Fatalf("low participation tip must come second, got %q", fallback.Strategies[1])
	}
	if !strings.Contains(fallback.Strategies[2], "study routine") {
		t.Fatalf("low average tip must come third, got %q", fallback.Strategies[2])
	}
}

// The study-routine threshold (70) and the improvement-area threshold
// (75) are distinct on purpose; both constants are pinned here.
func TestDistinctAverageThresholds(t *testing.T) {
	student := thrivingStudent()
	student.Grades = []model.Grade{{Subject: "Math", Score: 72}}
	a := analysis.Analyze(student)

	found := false
	for _, area := range a.ImprovementAreas {
		if strings.Contains(area, "overall academic average") {
			found = true
		}
	}
	if !found {
		t.Fatalf("average 72 must produce an improvement area (threshold 75), got %v", a.ImprovementAreas)
	}

	fallback := StudentFallback(a, nil)
	for _, strategy := range fallback.Strategies {
		if strings.Contains(strategy, "study routine") {
			t.Fatalf("average 72 must not trigger the study-routine tip (threshold 70), got %v", fallback.Strategies)
		}
	}
}

func TestStudentFallbackUsesPreferences(t *testing.T) {
	prefs := &model.Preferences{
		ClassGoals:          []string{"Finish the algebra unit with everyone above 70"},
		PreferredStrategies: []string{"Use the flashcard routine"},
	}
	a := analysis.Analyze(thrivingStudent())
	fallback := StudentFallback(a, prefs)
	if fallback.NextStepGoal != "Finish the algebra unit with everyone above 70" {
		t.Fatalf("class goal must win over the generic goal, got %q", fallback.NextStepGoal)
	}
	joined := strings.Join(fallback.Strategies, "\n")
	if !strings.Contains(joined, "flashcard") {
		t.Fatalf("preferred strategy must be appended, got %v", fallback.Strategies)
	}
	if len(fallback.Strategies) < 2 || len(fallback.Strategies) > 3 {
		t.Fatalf("strategies out of bounds: %v", fallback.Strategies)
	}
}

func TestStudentFallbackGenericsWhenAnalysisIsQuiet(t *testing.T) {
	student := thrivingStudent()
	a := analysis.Analyze(student)
	// A thriving student has strengths but no improvement areas beyond
	// the lowest-subjects observation; strip the lists to force the
	// generic sentences.
	a.Strengths = nil
	a.ImprovementAreas = nil
	fallback := StudentFallback(a, nil)
	if len(fallback.Strengths) != 1 || fallback.Strengths[0] != genericStrength {
		t.Fatalf("expected the generic strength, got %v", fallback.Strengths)
	}
	if len(fallback.ImprovementAreas) != 1 || fallback.ImprovementAreas[0] != genericImprovement {
		t.Fatalf("expected the generic improvement, got %v", fallback.ImprovementAreas)
	}
	if fallback.PositiveObservation != genericStrength {
		t.Fatalf("positive observation must be the first strength")
	}
	if fallback.Encouragement != fixedEncouragement {
		t.Fatalf("encouragement must be the fixed sentence")
	}
}

func TestTeacherFallbackShape(t *testing.T) {
	summary := analysis.ClassSummary{
		ClassAverage:    78.44,
		TopStudents:     []string{"Ada", "Cyd"},
		AttentionNeeded: []string{"Bob", "Dee"},
	}
	prefs := &model.Preferences{PreferredStrategies: []string{"Weekly quiz retrospectives"}}
	fallback := TeacherFallback(summary, prefs)
	if !strings.Contains(fallback.ClassOverview, "78.4") {
		t.Fatalf("overview must embed the class average to one decimal, got %q", fallback.ClassOverview)
	}
	if len(fallback.Strengths) != 1 || !strings.Contains(fallback.Strengths[0], "Ada") {
		t.Fatalf("strengths must name top students, got %v", fallback.Strengths)
	}
	if len(fallback.AttentionNeeded) != 2 {
		t.Fatalf("every attention name must map to an entry, got %v", fallback.AttentionNeeded)
	}
	for _, entry := range fallback.AttentionNeeded {
		if entry.Reason != genericAttentionNote {
			t.Fatalf("fallback reasons must be the generic sentence, got %q", entry.Reason)
		}
	}
	if len(fallback.NextSteps) < 2 || len(fallback.NextSteps) > 4 {
		t.Fatalf("next steps out of bounds: %v", fallback.NextSteps)
	}
	if fallback.NextSteps[0] != "Weekly quiz retrospectives" {
		t.Fatalf("preferred strategies must come first, got %v", fallback.NextSteps)
	}
}

func TestTeacherFallbackIsSchemaValidByConstruction(t *testing.T) {
	summary := analysis.ClassSummary{ClassAverage: 81.5}
	fallback := TeacherFallback(summary, nil)
	encoded, err := json.Marshal(fallback)
	if err != nil {
		t.Fatalf("marshal fallback: %v", err)
	}
	if _, errs := ParseTeacherInsight(string(encoded)); len(errs) != 0 {
		t.Fatalf("teacher fallback failed its own schema: %v", errs)
	}
}
