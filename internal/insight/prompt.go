// File path: internal/insight/prompt.go
package insight

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/classpulse/classpulse/internal/analysis"
	"github.com/classpulse/classpulse/internal/llm"
	"github.com/classpulse/classpulse/internal/model"
)

const studentSystemPrompt = `You are a supportive academic coach writing to a student.
Respond with a single JSON object and nothing else, using exactly these fields:
{"positiveObservation": string, "strengths": [1-3 strings], "improvementAreas": [1-2 strings], "strategies": [2-3 strings], "nextStepGoal": string, "encouragement": string}
Keep every string short and concrete. Do not add extra fields.`

const teacherSystemPrompt = `You are an instructional coach summarizing a class for its teacher.
Respond with a single JSON object and nothing else, using exactly these fields:
{"classOverview": string, "strengths": [1-4 strings], "attentionNeeded": [{"name": string, "reason": string}], "nextSteps": [2-4 strings]}
Keep every string short and concrete. Do not add extra fields.`

// BuildStudentPrompt assembles the chat exchange for one student's
// coaching insight. The analysis is serialized verbatim so the provider
// and the fallback generator work from the same facts.
func BuildStudentPrompt(a analysis.Analysis, prefs *model.Preferences) []llm.Message {
	payload, _ := json.Marshal(a)
	var b strings.Builder
	fmt.Fprintf(&b, "Write a coaching insight for %s based on this analysis:\n%s\n", a.Student.Name, payload)
	appendPreferences(&b, prefs)
	return []llm.Message{
		{Role: "system", Content: studentSystemPrompt},
		{Role: "user", Content: b.String()},
	}
}

// BuildTeacherPrompt assembles the chat exchange for the class-level
// insight.
func BuildTeacherPrompt(summary analysis.ClassSummary, prefs *model.Preferences) []llm.Message {
	payload, _ := json.Marshal(summary)
	var b strings.Builder
	fmt.Fprintf(&b, "Write a class overview for the teacher based on this summary:\n%s\n", payload)
	appendPreferences(&b, prefs)
	return []llm.Message{
		{Role: "system", Content: teacherSystemPrompt},
		{Role: "user", Content: b.String()},
	}
}

func appendPreferences(b *strings.Builder, prefs *model.Preferences) {
	if prefs == nil {
		return
	}
	var segments []string
	if len(prefs.ClassGoals) > 0 {
		segments = append(segments, fmt.Sprintf("class goals: %s", strings.Join(prefs.ClassGoals, "; ")))
	}
	if len(prefs.FocusAreas) > 0 {
		segments = append(segments, fmt.Sprintf("focus areas: %s", strings.Join(prefs.FocusAreas, "; ")))
	}
	if len(prefs.PreferredStrategies) > 0 {
		segments = append(segments, fmt.Sprintf("preferred strategies: %s", strings.Join(prefs.PreferredStrategies, "; ")))
	}
	if prefs.Tone != "" {
		segments = append(segments, fmt.Sprintf("tone: %s", prefs.Tone))
	}
	if prefs.TeacherNotes != "" {
		segments = append(segments, fmt.Sprintf("teacher notes: %s", prefs.TeacherNotes))
	}
	if len(segments) > 0 {
		fmt.Fprintf(b, "Teacher preferences: %s.\n", strings.Join(segments, ". "))
	}
}
