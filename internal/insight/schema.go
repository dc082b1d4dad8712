// File path: internal/insight/schema.go
package insight

// Field caps, in characters. Scalar fields over the cap are truncated
// during normalization, never rejected; list fields over their maximum
// count are truncated to the maximum.
const (
	capPositiveObservation = 220
	capListItem            = 180
	capNextStepGoal        = 200
	capEncouragement       = 200
	capClassOverview       = 240
	capAttentionName       = 80
	capAttentionReason     = 160
)

// Cardinality bounds for list fields.
const (
	minStudentStrengths    = 1
	maxStudentStrengths    = 3
	minImprovementAreas    = 1
	maxImprovementAreas    = 2
	minStrategies          = 2
	maxStrategies          = 3
	minTeacherStrengths    = 1
	maxTeacherStrengths    = 4
	minNextSteps           = 2
	maxNextSteps           = 4
)

// StudentInsight is coaching content addressed to one student. Values
// are either validated provider output or fallback synthesis; the
// structure itself carries no provenance marker.
type StudentInsight struct {
	PositiveObservation string   `json:"positiveObservation"`
	Strengths           []string `json:"strengths"`
	ImprovementAreas    []string `json:"improvementAreas"`
	Strategies          []string `json:"strategies"`
	NextStepGoal        string   `json:"nextStepGoal"`
	Encouragement       string   `json:"encouragement"`
}

// AttentionEntry names a student the teacher should follow up with.
type AttentionEntry struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// TeacherInsight is class-level coaching content for the teacher.
type TeacherInsight struct {
	ClassOverview   string           `json:"classOverview"`
	Strengths       []string         `json:"strengths"`
	AttentionNeeded []AttentionEntry `json:"attentionNeeded"`
	NextSteps       []string         `json:"nextSteps"`
}
