package domain

// Disclaimer accompanies every diagnosis result.
const Disclaimer = "This AI analysis is for informational purposes only and should not replace professional medical advice. " +
	"Please consult with a qualified healthcare provider for proper diagnosis and treatment."

// CandidateCondition is one ranked entry of a diagnosis result
type CandidateCondition struct {
	Name        string `json:"name"`
	Confidence  int    `json:"confidence"` // 0-100
	Description string `json:"description"`
}

// DiagnosisResult is derived deterministically from exactly one SymptomReport.
// It is recomputed, never patched, when the report changes.
type DiagnosisResult struct {
	Conditions []CandidateCondition `json:"conditions"`
	Department string               `json:"department"`
	Treatment  string               `json:"treatment"`
	Urgency    Urgency              `json:"urgency"`
	RedFlags   []string             `json:"red_flags,omitempty"`
	Disclaimer string               `json:"disclaimer"`
}

// TopCondition returns the highest ranked condition.
func (d *DiagnosisResult) TopCondition() CandidateCondition {
	if d == nil || len(d.Conditions) == 0 {
		return CandidateCondition{}
	}
	return d.Conditions[0]
}

// LogFields returns structured logging fields for audit trails.
func (d *DiagnosisResult) LogFields() map[string]any {
	return map[string]any{
		"department":      d.Department,
		"urgency":         string(d.Urgency),
		"top_condition":   d.TopCondition().Name,
		"top_confidence":  d.TopCondition().Confidence,
		"condition_count": len(d.Conditions),
		"red_flags":       len(d.RedFlags),
	}
}

// Assessment pairs a report with the diagnosis derived from it.
// A diagnosis never exists without the report it was computed from.
type Assessment struct {
	Report    *SymptomReport   `json:"report"`
	Diagnosis *DiagnosisResult `json:"diagnosis"`
}
