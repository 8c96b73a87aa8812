package intake

import (
	"github.com/symptom-triage-server/internal/domain"
)

// Question is a follow-up prompt asked for a specific primary symptom.
type Question struct {
	Key      string `json:"key"`
	Question string `json:"question"`
}

// FollowUpSet groups the follow-up questions of one symptom.
type FollowUpSet struct {
	Symptom   string     `json:"symptom"`
	Questions []Question `json:"questions"`
}

var commonSymptoms = []string{
	"Fever", "Headache", "Cough", "Sore throat", "Body aches", "Fatigue",
	"Nausea", "Vomiting", "Diarrhea", "Shortness of breath", "Chest pain",
	"Abdominal pain", "Dizziness", "Loss of appetite",
}

// Keyed by the exact catalog spelling; lookups are case-sensitive.
var followUpTable = []FollowUpSet{
	{
		Symptom: "Fever",
		Questions: []Question{
			{Key: "temperature", Question: "What is your current temperature?"},
			{Key: "chills", Question: "Are you experiencing chills?"},
			{Key: "sweating", Question: "Any sweating?"},
		},
	},
	{
		Symptom: "Headache",
		Questions: []Question{
			{Key: "location", Question: "Where is the pain located?"},
			{Key: "type", Question: "Is it throbbing or constant?"},
			{Key: "lightSensitivity", Question: "Any sensitivity to light?"},
		},
	},
	{
		Symptom: "Cough",
		Questions: []Question{
			{Key: "coughType", Question: "Is it a dry or productive cough?"},
			{Key: "blood", Question: "Any blood in the cough?"},
			{Key: "nighttime", Question: "Does it worsen at night?"},
		},
	},
}

// Symptoms returns the symptom catalog in display order.
func Symptoms() []string {
	return append([]string(nil), commonSymptoms...)
}

// CanonicalSymptom returns the catalog spelling of symptom, matching
// case-insensitively. The second result is false for non-catalog text.
func CanonicalSymptom(symptom string) (string, bool) {
	want := domain.NormalizeSymptom(symptom)
	for _, s := range commonSymptoms {
		if domain.NormalizeSymptom(s) == want {
			return s, true
		}
	}
	return "", false
}

// FollowUpQuestions returns the questions for symptom, or nil when the
// symptom has none. The lookup is exact: "fever" has no questions.
func FollowUpQuestions(symptom string) []Question {
	for _, set := range followUpTable {
		if set.Symptom == symptom {
			return append([]Question(nil), set.Questions...)
		}
	}
	return nil
}

// FollowUpTable returns a copy of the whole follow-up table.
func FollowUpTable() []FollowUpSet {
	out := make([]FollowUpSet, 0, len(followUpTable))
	for _, set := range followUpTable {
		out = append(out, FollowUpSet{
			Symptom:   set.Symptom,
			Questions: append([]Question(nil), set.Questions...),
		})
	}
	return out
}
