package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDurationOrdering(t *testing.T) {
	for i, d := range Durations {
		assert.True(t, d.IsValid(), d)
		assert.Equal(t, i, d.Rank())
	}

	assert.False(t, Duration("a-fortnight").IsValid())
	assert.Equal(t, -1, Duration("").Rank())

	assert.True(t, DurationMoreThanTwoWeeks.AtLeast(DurationOneToTwoWeeks))
	assert.True(t, DurationOneToTwoWeeks.AtLeast(DurationOneToTwoWeeks))
	assert.False(t, DurationFourToSevenDays.AtLeast(DurationOneToTwoWeeks))
	assert.False(t, Duration("bogus").AtLeast(DurationLessThanOneDay))
}

func TestDurationLabels(t *testing.T) {
	tests := []struct {
		value    Duration
		expected string
	}{
		{DurationLessThanOneDay, "Less than 1 day"},
		{DurationOneToThreeDays, "1-3 days"},
		{DurationFourToSevenDays, "4-7 days"},
		{DurationOneToTwoWeeks, "1-2 weeks"},
		{DurationMoreThanTwoWeeks, "More than 2 weeks"},
	}

	for _, tt := range tests {
		t.Run(tt.value.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.value.Label())
		})
	}
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, 0, SeverityMild.Rank())
	assert.Equal(t, 1, SeverityModerate.Rank())
	assert.Equal(t, 2, SeveritySevere.Rank())
	assert.False(t, Severity("agonizing").IsValid())
	assert.Equal(t, "severe", SeveritySevere.String())
}

func TestUrgency(t *testing.T) {
	tests := []struct {
		name     string
		value    Urgency
		raised   Urgency
		label    string
		guidance string
	}{
		{"Low", UrgencyLow, UrgencyMedium, "Low Priority", "Can be managed at home initially"},
		{"Medium", UrgencyMedium, UrgencyHigh, "Moderate Priority", "Schedule appointment within 2-3 days"},
		{"High", UrgencyHigh, UrgencyHigh, "High Priority", "Seek immediate medical attention"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.value.IsValid())
			assert.Equal(t, tt.raised, tt.value.Raise())
			assert.Equal(t, tt.label, tt.value.Label())
			assert.Equal(t, tt.guidance, tt.value.Guidance())
		})
	}

	assert.Equal(t, UrgencyHigh, UrgencyLow.AtLeast(UrgencyHigh))
	assert.Equal(t, UrgencyHigh, UrgencyHigh.AtLeast(UrgencyMedium))
	assert.False(t, Urgency("critical").IsValid())
}

func TestSymptomReport_MissingFields(t *testing.T) {
	report := &SymptomReport{Duration: DurationOneToThreeDays, Severity: SeverityMild}
	assert.False(t, report.IsComplete())
	assert.Equal(t, []string{"primary_symptom"}, report.MissingFields())

	report.PrimarySymptom = "Cough"
	assert.True(t, report.IsComplete())
	assert.Empty(t, report.MissingFields())

	var nilReport *SymptomReport
	assert.Equal(t, []string{"primary_symptom", "duration", "severity"}, nilReport.MissingFields())
}

func TestSymptomReport_Fingerprint(t *testing.T) {
	a := &SymptomReport{
		PrimarySymptom:     "Fever",
		Duration:           DurationOneToThreeDays,
		Severity:           SeverityModerate,
		AdditionalSymptoms: []string{"Cough", "Fatigue"},
		FollowUpAnswers:    map[string]string{"chills": "yes"},
	}
	b := &SymptomReport{
		PrimarySymptom:     "  fever ",
		Duration:           DurationOneToThreeDays,
		Severity:           SeverityModerate,
		AdditionalSymptoms: []string{"fatigue", "COUGH"},
	}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.Fingerprint(), 64)

	b.Severity = SeveritySevere
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestSymptomReport_Clone(t *testing.T) {
	original := &SymptomReport{
		PrimarySymptom:     "Headache",
		AdditionalSymptoms: []string{"Nausea"},
		FollowUpAnswers:    map[string]string{"location": "front"},
	}

	clone := original.Clone()
	clone.AdditionalSymptoms[0] = "Dizziness"
	clone.FollowUpAnswers["location"] = "back"

	assert.Equal(t, "Nausea", original.AdditionalSymptoms[0])
	assert.Equal(t, "front", original.FollowUpAnswers["location"])
	assert.True(t, original.HasAdditional(" nausea"))
}

func TestIdentityRecord_FirstName(t *testing.T) {
	tests := []struct {
		name     string
		record   *IdentityRecord
		expected string
	}{
		{"Full name", &IdentityRecord{Name: "Ama Serwaa Mensah"}, "Ama"},
		{"Padded", &IdentityRecord{Name: "   Kofi  "}, "Kofi"},
		{"Empty", &IdentityRecord{}, ""},
		{"Nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.record.FirstName())
		})
	}
}
