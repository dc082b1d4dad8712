// File path: internal/insight/validate.go
package insight

import (
	"fmt"
	"strings"

	"github.com/classpulse/classpulse/internal/common"
)

// ParseStudentInsight extracts, decodes and validates raw provider text
// against the student schema. On success the returned structure is fully
// normalized (trimmed, truncated to caps). On failure the error list is
// non-empty and the structure must be discarded; field problems are
// collected exhaustively rather than reported one at a time.
func ParseStudentInsight(raw string) (StudentInsight, []string) {
	obj, err := decodeObject(raw)
	if err != nil {
		return StudentInsight{}, []string{err.Error()}
	}
	var errs []string
	out := StudentInsight{
		PositiveObservation: stringField(obj, "positiveObservation", capPositiveObservation, &errs),
		Strengths:           stringListField(obj, "strengths", minStudentStrengths, maxStudentStrengths, capListItem, &errs),
		ImprovementAreas:    stringListField(obj, "improvementAreas", minImprovementAreas, maxImprovementAreas, capListItem, &errs),
		Strategies:          stringListField(obj, "strategies", minStrategies, maxStrategies, capListItem, &errs),
		NextStepGoal:        stringField(obj, "nextStepGoal", capNextStepGoal, &errs),
		Encouragement:       stringField(obj, "encouragement", capEncouragement, &errs),
	}
	if len(errs) > 0 {
		common.Logger().Debug("insight: student payload rejected", "reasons", len(errs))
		return StudentInsight{}, errs
	}
	return out, nil
}

// ParseTeacherInsight is the class-level counterpart of
// ParseStudentInsight.
func ParseTeacherInsight(raw string) (TeacherInsight, []string) {
	obj, err := decodeObject(raw)
	if err != nil {
		return TeacherInsight{}, []string{err.Error()}
	}
	var errs []string
	out := TeacherInsight{
		ClassOverview:   stringField(obj, "classOverview", capClassOverview, &errs),
		Strengths:       stringListField(obj, "strengths", minTeacherStrengths, maxTeacherStrengths, capListItem, &errs),
		AttentionNeeded: attentionField(obj, "attentionNeeded", &errs),
		NextSteps:       stringListField(obj, "nextSteps", minNextSteps, maxNextSteps, capListItem, &errs),
	}
	if len(errs) > 0 {
		common.Logger().Debug("insight: teacher payload rejected", "reasons", len(errs))
		return TeacherInsight{}, errs
	}
	return out, nil
}

func stringField(obj map[string]interface{}, field string, limit int, errs *[]string) string {
	value, present := obj[field]
	if !present {
		*errs = append(*errs, fmt.Sprintf("%s is required", field))
		return ""
	}
	str, ok := value.(string)
	if !ok {
		*errs = append(*errs, fmt.Sprintf("%s must be a string", field))
		return ""
	}
	trimmed := strings.TrimSpace(str)
	if trimmed == "" {
		*errs = append(*errs, fmt.Sprintf("%s must not be empty", field))
		return ""
	}
	return truncate(trimmed, limit)
}

// stringListField validates an array-of-strings field. Non-string
// elements are filtered out before the minimum count is checked; excess
// above the maximum is truncated silently.
func stringListField(obj map[string]interface{}, field string, min, max, limit int, errs *[]string) []string {
	value, present := obj[field]
	if !present {
		*errs = append(*errs, fmt.Sprintf("%s is required", field))
		return nil
	}
	items, ok := value.([]interface{})
	if !ok {
		*errs = append(*errs, fmt.Sprintf("%s must be an array", field))
		return nil
	}
	kept := make([]string, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			continue
		}
		trimmed := strings.TrimSpace(str)
		if trimmed == "" {
			continue
		}
		kept = append(kept, truncate(trimmed, limit))
	}
	if len(kept) < min {
		*errs = append(*errs, fmt.Sprintf("%s must contain at least %d item(s)", field, min))
		return nil
	}
	if len(kept) > max {
		kept = kept[:max]
	}
	return kept
}

// attentionField validates the attentionNeeded entries. A malformed
// entry invalidates the field with a per-index error, but the remaining
// entries are still checked so every problem is reported at once.
func attentionField(obj map[string]interface{}, field string, errs *[]string) []AttentionEntry {
	value, present := obj[field]
	if !present {
		*errs = append(*errs, fmt.Sprintf("%s is required", field))
		return nil
	}
	items, ok := value.([]interface{})
	if !ok {
		*errs = append(*errs, fmt.Sprintf("%s must be an array", field))
		return nil
	}
	entries := make([]AttentionEntry, 0, len(items))
	failed := false
	for i, item := range items {
		entryObj, ok := item.(map[string]interface{})
		if !ok {
			*errs = append(*errs, fmt.Sprintf("%s[%d] must be an object", field, i))
			failed = true
			continue
		}
		var entryErrs []string
		entry := AttentionEntry{
			Name:   stringField(entryObj, "name", capAttentionName, &entryErrs),
			Reason: stringField(entryObj, "reason", capAttentionReason, &entryErrs),
		}
		if len(entryErrs) > 0 {
			for _, e := range entryErrs {
				*errs = append(*errs, fmt.Sprintf("%s[%d]: %s", field, i, e))
			}
			failed = true
			continue
		}
		entries = append(entries, entry)
	}
	if failed {
		return nil
	}
	return entries
}

// truncate caps a string to max characters, counting runes so multibyte
// text is never split mid-character.
func truncate(value string, max int) string {
	if max <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return strings.TrimSpace(string(runes[:max]))
}
