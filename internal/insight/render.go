// File path: internal/insight/render.go
package insight

import (
	"fmt"
	"strings"
)

// RenderStudent formats a student insight as plain text. Section order
// is fixed; the text carries no marker of whether the content came from
// the provider or from fallback synthesis.
func RenderStudent(studentName string, ins StudentInsight) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s! %s\n\n", studentName, ins.PositiveObservation)
	writeSection(&b, "Your strengths", ins.Strengths)
	writeSection(&b, "Areas to focus on", ins.ImprovementAreas)
	writeSection(&b, "Strategies to try", ins.Strategies)
	fmt.Fprintf(&b, "Next step goal: %s\n\n", ins.NextStepGoal)
	b.WriteString(ins.Encouragement)
	b.WriteString("\n")
	return b.String()
}

// RenderTeacher formats a class insight as plain text.
func RenderTeacher(ins TeacherInsight) string {
	var b strings.Builder
	b.WriteString(ins.ClassOverview)
	b.WriteString("\n\n")
	writeSection(&b, "Class strengths", ins.Strengths)
	if len(ins.AttentionNeeded) > 0 {
		b.WriteString("Students needing attention:\n")
		for _, entry := range ins.AttentionNeeded {
			fmt.Fprintf(&b, "- %s: %s\n", entry.Name, entry.Reason)
		}
		b.WriteString("\n")
	}
	writeSection(&b, "Recommended next steps", ins.NextSteps)
	b.WriteString("Generated by the weekly class performance review.\n")
	return b.String()
}

func writeSection(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(label)
	b.WriteString(":\n")
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}
