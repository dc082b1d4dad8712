// File path: internal/insight/fallback.go
package insight

import (
	"fmt"
	"strings"

	"github.com/classpulse/classpulse/internal/analysis"
	"github.com/classpulse/classpulse/internal/model"
)

// The fallback path never sees provider output. Everything below is a
// pure function of the deterministic analysis plus optional teacher
// preferences, so a failed provider call degrades quality but never
// shape.

// Strategy ladder thresholds. The 70 study-routine threshold is
// deliberately distinct from the 75 value the analysis engine uses for
// improvement areas; both are pinned by tests.
const (
	fallbackCompletionThreshold    = 85
	fallbackParticipationThreshold = 6
	fallbackAverageThreshold       = 70
)

const (
	genericStrength      = "Shows real potential and keeps working at it."
	genericImprovement   = "Keep building consistent study habits across all subjects."
	genericGoal          = "Pick one subject to improve by five points before the next assessment."
	fixedEncouragement   = "Every week is a fresh chance to grow. Keep going!"
	genericTeacherHeader = "The class shows steady engagement across subjects."
	genericAttentionNote = "Flagged by the performance review for closer follow-up."
)

var genericStrategies = []string{
	"Review class notes for ten minutes at the end of each day.",
	"Ask one question in every lesson to stay engaged.",
}

var genericNextSteps = []string{
	"Schedule short check-ins with students who are falling behind.",
	"Celebrate recent wins with the whole class to keep momentum.",
}

// StudentFallback synthesizes a schema-valid StudentInsight from an
// analysis. Deterministic: identical inputs always produce identical
// output.
func StudentFallback(a analysis.Analysis, prefs *model.Preferences) StudentInsight {
	strengths := capList(a.Strengths, maxStudentStrengths, capListItem)
	if len(strengths) == 0 {
		strengths = []string{genericStrength}
	}

	improvements := capList(a.ImprovementAreas, maxImprovementAreas, capListItem)
	if len(improvements) == 0 {
		improvements = []string{genericImprovement}
	}

	var strategies []string
	if a.Metrics.AssignmentCompletionRate < fallbackCompletionThreshold {
		strategies = append(strategies, "Use a weekly planner to track assignment deadlines.")
	}
	if a.Metrics.ParticipationScore <= fallbackParticipationThreshold {
		strategies = append(strategies, "Prepare one talking point before each class to join discussions.")
	}
	if a.Metrics.AverageScore < fallbackAverageThreshold {
		strategies = append(strategies, "Set up a fixed daily study routine with short, focused sessions.")
	}
	if len(a.Metrics.LowestSubjects) > 0 {
		subjects := strings.Join(analysis.SubjectNames(a.Metrics.LowestSubjects), ", ")
		strategies = append(strategies, truncate(fmt.Sprintf("Spend extra practice time on %s this week.", subjects), capListItem))
	}
	for _, preferred := range prefs.Strategies() {
		if len(strategies) >= maxStrategies {
			break
		}
		strategies = append(strategies, truncate(preferred, capListItem))
	}
	for _, filler := range genericStrategies {
		if len(strategies) >= minStrategies {
			break
		}
		strategies = append(strategies, filler)
	}
	if len(strategies) > maxStrategies {
		strategies = strategies[:maxStrategies]
	}

	goal := genericGoal
	if preferred, ok := prefs.ClassGoal(); ok {
		goal = truncate(preferred, capNextStepGoal)
	}

	return StudentInsight{
		PositiveObservation: truncate(strengths[0], capPositiveObservation),
		Strengths:           strengths,
		ImprovementAreas:    improvements,
		Strategies:          strategies,
		NextStepGoal:        goal,
		Encouragement:       fixedEncouragement,
	}
}

// TeacherFallback synthesizes a schema-valid TeacherInsight from a class
// summary. Attention reasons are generic: the fallback has no access to
// personalized reasoning.
func TeacherFallback(summary analysis.ClassSummary, prefs *model.Preferences) TeacherInsight {
	strengths := []string{genericTeacherHeader}
	if len(summary.TopStudents) > 0 {
		strengths = []string{truncate(fmt.Sprintf("Top performers this period: %s.", strings.Join(summary.TopStudents, ", ")), capListItem)}
	}

	attention := make([]AttentionEntry, 0, len(summary.AttentionNeeded))
	for _, name := range summary.AttentionNeeded {
		attention = append(attention, AttentionEntry{
			Name:   truncate(name, capAttentionName),
			Reason: genericAttentionNote,
		})
	}

	var nextSteps []string
	for _, preferred := range prefs.Strategies() {
		if len(nextSteps) >= 2 {
			break
		}
		nextSteps = append(nextSteps, truncate(preferred, capListItem))
	}
	for _, filler := range genericNextSteps {
		if len(nextSteps) >= minNextSteps {
			break
		}
		nextSteps = append(nextSteps, filler)
	}
	if len(nextSteps) > maxNextSteps {
		nextSteps = nextSteps[:maxNextSteps]
	}

	return TeacherInsight{
		ClassOverview:   truncate(fmt.Sprintf("The class is averaging %.1f across tracked subjects.", summary.ClassAverage), capClassOverview),
		Strengths:       strengths,
		AttentionNeeded: attention,
		NextSteps:       nextSteps,
	}
}

func capList(values []string, max, limit int) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		out = append(out, truncate(trimmed, limit))
		if len(out) >= max {
			break
		}
	}
	return out
}
