// File path: internal/validate/validate.go
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/classpulse/classpulse/internal/common"
	"github.com/classpulse/classpulse/internal/model"
)

// BatchResult separates the well-formed records from the per-record
// diagnostics of a validation pass. Invalid records never abort the
// batch; each contributes at least one indexed error string.
type BatchResult struct {
	Valid  []model.Student `json:"valid"`
	Errors []string        `json:"errors,omitempty"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseRoster decodes raw JSON bytes and validates the resulting value.
func ParseRoster(data []byte) BatchResult {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return BatchResult{Errors: []string{fmt.Sprintf("roster is not valid JSON: %v", err)}}
	}
	return ValidateBatch(raw)
}

// ValidateBatch normalizes untrusted input into Student records. The
// input may be any JSON value; anything that is not an array yields a
// single top-level error. Elements are validated independently and all
// field violations for a record are collected before it is rejected.
func ValidateBatch(raw interface{}) BatchResult {
	logger := common.Logger()
	items, ok := raw.([]interface{})
	if !ok {
		return BatchResult{Errors: []string{"input must be an array of student records"}}
	}
	result := BatchResult{Valid: make([]model.Student, 0, len(items))}
	for i, item := range items {
		student, errs := validateRecord(item)
		if len(errs) > 0 {
			for _, e := range errs {
				result.Errors = append(result.Errors, fmt.Sprintf("record %d: %s", i, e))
			}
			continue
		}
		result.Valid = append(result.Valid, student)
	}
	logger.Debug("validate: batch processed", "total", len(items), "valid", len(result.Valid), "errors", len(result.Errors))
	return result
}

func validateRecord(item interface{}) (model.Student, []string) {
	obj, ok := item.(map[string]interface{})
	if !ok {
		return model.Student{}, []string{"expected an object"}
	}
	var errs []string
	var student model.Student

	student.ID = requireString(obj, "id", &errs)
	student.Name = requireString(obj, "name", &errs)

	if email := requireString(obj, "email", &errs); email != "" {
		if !emailPattern.MatchString(email) {
			errs = append(errs, fmt.Sprintf("email %q is not a valid address", email))
		} else {
			student.Email = email
		}
	}

	student.Grades = validateGrades(obj["grades"], &errs)

	if score, ok := requireNumber(obj, "participationScore", &errs); ok {
		if score != math.Trunc(score) || score < 1 || score > 10 {
			errs = append(errs, "participationScore must be a whole number between 1 and 10")
		} else {
			student.ParticipationScore = score
		}
	}

	if rate, ok := requireNumber(obj, "assignmentCompletionRate", &errs); ok {
		if rate < 0 || rate > 100 {
			errs = append(errs, "assignmentCompletionRate must be between 0 and 100")
		} else {
			student.AssignmentCompletionRate = rate
		}
	}

	switch notes := obj["teacherNotes"].(type) {
	case nil:
		student.TeacherNotes = ""
	case string:
		student.TeacherNotes = strings.TrimSpace(notes)
	default:
		errs = append(errs, "teacherNotes must be a string when present")
	}

	if trend := requireString(obj, "performanceTrend", &errs); trend != "" {
		if !model.KnownTrend(trend) {
			errs = append(errs, fmt.Sprintf("performanceTrend %q must be improving, stable or declining", trend))
		} else {
			student.PerformanceTrend = model.PerformanceTrend(trend)
		}
	}

	if date := requireString(obj, "lastAssessmentDate", &errs); date != "" {
		if !parseableDate(date) {
			errs = append(errs, fmt.Sprintf("lastAssessmentDate %q is not a parseable date", date))
		} else {
			student.LastAssessmentDate = date
		}
	}

	if len(errs) > 0 {
		return model.Student{}, errs
	}
	return student, nil
}

func validateGrades(value interface{}, errs *[]string) []model.Grade {
	items, ok := value.([]interface{})
	if !ok {
		*errs = append(*errs, "grades must be an array")
		return nil
	}
	if len(items) == 0 {
		*errs = append(*errs, "grades must not be empty")
		return nil
	}
	grades := make([]model.Grade, 0, len(items))
	failed := false
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			*errs = append(*errs, fmt.Sprintf("grade %d: expected an object", i))
			failed = true
			continue
		}
		var gradeErrs []string
		subject := requireString(obj, "subject", &gradeErrs)
		score, scoreOK := requireNumber(obj, "score", &gradeErrs)
		if scoreOK && (score < 0 || score > 100) {
			gradeErrs = append(gradeErrs, "score must be between 0 and 100")
		}
		if len(gradeErrs) > 0 {
			for _, e := range gradeErrs {
				*errs = append(*errs, fmt.Sprintf("grade %d: %s", i, e))
			}
			failed = true
			continue
		}
		grades = append(grades, model.Grade{Subject: subject, Score: score})
	}
	if failed {
		return nil
	}
	return grades
}

func requireString(obj map[string]interface{}, field string, errs *[]string) string {
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
	return trimmed
}

func requireNumber(obj map[string]interface{}, field string, errs *[]string) (float64, bool) {
	value, present := obj[field]
	if !present {
		*errs = append(*errs, fmt.Sprintf("%s is required", field))
		return 0, false
	}
	num, ok := value.(float64)
	if !ok {
		*errs = append(*errs, fmt.Sprintf("%s must be a number", field))
		return 0, false
	}
	return num, true
}

func parseableDate(value string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}
