// Package triage maps a symptom report onto ranked candidate conditions,
// a recommended department, treatment advice and an urgency level.
//
// Classification is a pure function of the report: the same report always
// yields the same result and the input is never modified.
package triage

import (
	"sort"

	"github.com/symptom-triage-server/internal/domain"
)

// Classifier is the table-driven implementation of domain.Classifier.
type Classifier struct{}

// NewClassifier creates a classifier backed by the built-in rule table.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify implements domain.Classifier.
func (c *Classifier) Classify(report *domain.SymptomReport) *domain.DiagnosisResult {
	return Classify(report)
}

// Classify derives a diagnosis result from report.
//
// The primary symptom selects a rule (falling back to a generic rule when
// unrecognized), then urgency is adjusted in a fixed order: severity,
// duration, red-flag additional symptoms. Conditions are finally sorted by
// descending confidence, keeping declaration order on ties.
func Classify(report *domain.SymptomReport) *domain.DiagnosisResult {
	if report == nil {
		report = &domain.SymptomReport{}
	}

	rule, _ := lookup(report.PrimarySymptom)
	urgency := rule.Urgency

	if report.Severity == domain.SeveritySevere {
		urgency = urgency.Raise().AtLeast(domain.UrgencyMedium)
		if report.Duration.AtLeast(domain.DurationOneToTwoWeeks) {
			urgency = urgency.AtLeast(domain.UrgencyHigh)
		}
	}

	if report.Duration == domain.DurationMoreThanTwoWeeks {
		urgency = urgency.Raise()
	}

	conditions := rule.Conditions
	var fired []string
	for _, flag := range redFlags {
		if !report.HasAdditional(flag.Symptom) {
			continue
		}
		fired = append(fired, flag.Symptom)
		urgency = urgency.AtLeast(domain.UrgencyHigh)
		if !hasCondition(conditions, flag.Condition.Name) {
			conditions = append([]domain.CandidateCondition{flag.Condition}, conditions...)
		}
	}

	sort.SliceStable(conditions, func(i, j int) bool {
		return conditions[i].Confidence > conditions[j].Confidence
	})

	return &domain.DiagnosisResult{
		Conditions: conditions,
		Department: rule.Department,
		Treatment:  rule.Treatment,
		Urgency:    urgency,
		RedFlags:   fired,
		Disclaimer: domain.Disclaimer,
	}
}

// Recognized reports whether symptom has its own rule.
func Recognized(symptom string) bool {
	_, ok := lookup(symptom)
	return ok
}

func hasCondition(conditions []domain.CandidateCondition, name string) bool {
	for _, c := range conditions {
		if c.Name == name {
			return true
		}
	}
	return false
}
