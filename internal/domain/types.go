// Package domain contains the core entities of the symptom triage engine:
// symptom reports, diagnosis results, identity records and chat messages,
// together with the enumerations that describe duration, severity and urgency.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"time"
)

// Duration represents how long the primary symptom has been present.
// Values are the wire values used by the intake form and are ordered.
type Duration string

const (
	DurationLessThanOneDay   Duration = "less-than-1-day"
	DurationOneToThreeDays   Duration = "1-3-days"
	DurationFourToSevenDays  Duration = "4-7-days"
	DurationOneToTwoWeeks    Duration = "1-2-weeks"
	DurationMoreThanTwoWeeks Duration = "more-than-2-weeks"
)

// Durations lists every duration in ascending order.
var Durations = []Duration{
	DurationLessThanOneDay,
	DurationOneToThreeDays,
	DurationFourToSevenDays,
	DurationOneToTwoWeeks,
	DurationMoreThanTwoWeeks,
}

// Severity represents the self-reported severity of the primary symptom.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Severities lists every severity in ascending order.
var Severities = []Severity{SeverityMild, SeverityModerate, SeveritySevere}

// Urgency represents how quickly the patient should seek care.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// Validation errors for enumerations
var (
	ErrInvalidDuration = errors.New("invalid symptom duration")
	ErrInvalidSeverity = errors.New("invalid symptom severity")
	ErrInvalidUrgency  = errors.New("invalid urgency level")
)

// IsValid reports whether d is one of the known durations.
func (d Duration) IsValid() bool {
	return d.Rank() >= 0
}

// Rank returns the position of d in ascending order, or -1 when unknown.
func (d Duration) Rank() int {
	for i, known := range Durations {
		if d == known {
			return i
		}
	}
	return -1
}

// AtLeast reports whether d is as long as or longer than other.
func (d Duration) AtLeast(other Duration) bool {
	return d.IsValid() && d.Rank() >= other.Rank()
}

// Label returns the human-readable label shown on the intake form.
func (d Duration) Label() string {
	switch d {
	case DurationLessThanOneDay:
		return "Less than 1 day"
	case DurationOneToThreeDays:
		return "1-3 days"
	case DurationFourToSevenDays:
		return "4-7 days"
	case DurationOneToTwoWeeks:
		return "1-2 weeks"
	case DurationMoreThanTwoWeeks:
		return "More than 2 weeks"
	default:
		return "Unknown duration"
	}
}

// String returns the wire value of the duration.
func (d Duration) String() string {
	return string(d)
}

// IsValid reports whether s is one of the known severities.
func (s Severity) IsValid() bool {
	return s.Rank() >= 0
}

// Rank returns the position of s in ascending order, or -1 when unknown.
func (s Severity) Rank() int {
	for i, known := range Severities {
		if s == known {
			return i
		}
	}
	return -1
}

// Label returns the human-readable label shown on the intake form.
func (s Severity) Label() string {
	switch s {
	case SeverityMild:
		return "Mild - Doesn't interfere with daily activities"
	case SeverityModerate:
		return "Moderate - Some interference with activities"
	case SeveritySevere:
		return "Severe - Significant interference"
	default:
		return "Unknown severity"
	}
}

// String returns the wire value of the severity.
func (s Severity) String() string {
	return string(s)
}

// IsValid reports whether u is one of the known urgency levels.
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	default:
		return false
	}
}

// Rank orders urgency levels from low (0) to high (2). Unknown values rank as low.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyMedium:
		return 1
	case UrgencyHigh:
		return 2
	default:
		return 0
	}
}

// Raise returns the urgency one level above u, capped at high.
func (u Urgency) Raise() Urgency {
	switch u.Rank() {
	case 0:
		return UrgencyMedium
	default:
		return UrgencyHigh
	}
}

// AtLeast returns the higher of u and floor.
func (u Urgency) AtLeast(floor Urgency) Urgency {
	if floor.Rank() > u.Rank() {
		return floor
	}
	return u
}

// Label returns the priority label displayed with a diagnosis.
func (u Urgency) Label() string {
	switch u {
	case UrgencyHigh:
		return "High Priority"
	case UrgencyMedium:
		return "Moderate Priority"
	default:
		return "Low Priority"
	}
}

// Guidance returns the care-seeking instruction for the urgency level.
func (u Urgency) Guidance() string {
	switch u {
	case UrgencyHigh:
		return "Seek immediate medical attention"
	case UrgencyMedium:
		return "Schedule appointment within 2-3 days"
	default:
		return "Can be managed at home initially"
	}
}

// String returns the wire value of the urgency.
func (u Urgency) String() string {
	return string(u)
}

// NormalizeSymptom lower-cases and trims a symptom for table lookups.
func NormalizeSymptom(symptom string) string {
	return strings.ToLower(strings.TrimSpace(symptom))
}

// SymptomReport is the finalized output of the intake wizard.
// It is immutable once handed to the classifier; edits produce a new report.
type SymptomReport struct {
	PrimarySymptom     string            `json:"primary_symptom"`
	Duration           Duration          `json:"duration"`
	Severity           Severity          `json:"severity"`
	AdditionalSymptoms []string          `json:"additional_symptoms"`
	FollowUpAnswers    map[string]string `json:"follow_up_answers"`
	SubmittedAt        time.Time         `json:"submitted_at"`
}

// IsComplete reports whether the required fields are present.
func (r *SymptomReport) IsComplete() bool {
	return r != nil && strings.TrimSpace(r.PrimarySymptom) != "" && r.Duration.IsValid() && r.Severity.IsValid()
}

// MissingFields lists the required fields that are absent or invalid.
func (r *SymptomReport) MissingFields() []string {
	var missing []string
	if r == nil || strings.TrimSpace(r.PrimarySymptom) == "" {
		missing = append(missing, "primary_symptom")
	}
	if r == nil || !r.Duration.IsValid() {
		missing = append(missing, "duration")
	}
	if r == nil || !r.Severity.IsValid() {
		missing = append(missing, "severity")
	}
	return missing
}

// HasAdditional reports whether symptom was reported as an additional symptom,
// comparing normalized text.
func (r *SymptomReport) HasAdditional(symptom string) bool {
	want := NormalizeSymptom(symptom)
	for _, s := range r.AdditionalSymptoms {
		if NormalizeSymptom(s) == want {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the report.
func (r *SymptomReport) Clone() *SymptomReport {
	if r == nil {
		return nil
	}
	out := *r
	out.AdditionalSymptoms = append([]string(nil), r.AdditionalSymptoms...)
	out.FollowUpAnswers = make(map[string]string, len(r.FollowUpAnswers))
	for k, v := range r.FollowUpAnswers {
		out.FollowUpAnswers[k] = v
	}
	return &out
}

// Fingerprint returns a stable digest of the triage-relevant inputs.
// Follow-up answers and timestamps are excluded.
func (r *SymptomReport) Fingerprint() string {
	additional := make([]string, 0, len(r.AdditionalSymptoms))
	for _, s := range r.AdditionalSymptoms {
		additional = append(additional, NormalizeSymptom(s))
	}
	sort.Strings(additional)

	parts := []string{
		NormalizeSymptom(r.PrimarySymptom),
		string(r.Duration),
		string(r.Severity),
		strings.Join(additional, ","),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// LogFields returns structured logging fields for the report.
// Follow-up answers are free text and are left out.
func (r *SymptomReport) LogFields() map[string]any {
	return map[string]any{
		"primary_symptom":  r.PrimarySymptom,
		"duration":         string(r.Duration),
		"severity":         string(r.Severity),
		"additional_count": len(r.AdditionalSymptoms),
		"answer_count":     len(r.FollowUpAnswers),
	}
}

// IdentityRecord is produced by the external identity-capture collaborator.
// The engine treats it as opaque and never validates it.
type IdentityRecord struct {
	Name           string `json:"name"`
	IDNumber       string `json:"id_number"`
	DateOfBirth    string `json:"date_of_birth"`
	Address        string `json:"address"`
	PhotoReference string `json:"photo_reference"`
}

// FirstName returns the first whitespace-separated token of Name.
func (i *IdentityRecord) FirstName() string {
	if i == nil {
		return ""
	}
	fields := strings.Fields(i.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// ChatMessage is a single entry of a chat transcript.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
