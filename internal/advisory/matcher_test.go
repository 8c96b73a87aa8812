package advisory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/symptom-triage-server/internal/domain"
)

func TestAdvise(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		rule   string
		prefix string
	}{
		{"fever", "I have a high fever since yesterday", "fever", "For fever management"},
		{"temperature", "My TEMPERATURE is 39", "fever", "For fever management"},
		{"cough", "dry cough at night", "cough", "For cough relief"},
		{"headache", "bad headache", "headache", "Headaches can have various causes"},
		{"medication", "which medication helps", "medication", "I can provide general medication information"},
		{"medicine", "can I take this medicine", "medication", "I can provide general medication information"},
		{"urgent", "is this urgent", "emergency", "For medical emergencies"},
		{"doctor", "When should I see a doctor?", "appointment", "To find the right healthcare provider"},
		{"food", "what food should I eat", "nutrition", "A balanced diet supports"},
		{"nonsense", "xyz nonsense", FallbackRule, "I understand you're asking about a health concern"},
		{"empty", "", FallbackRule, "I understand you're asking about a health concern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, response := Match(tt.input)
			assert.Equal(t, tt.rule, rule)
			assert.True(t, strings.HasPrefix(response, tt.prefix), response)
			assert.Equal(t, response, Advise(tt.input))
		})
	}
}

func TestAdvise_FirstRuleWins(t *testing.T) {
	tests := []struct {
		input string
		rule  string
	}{
		{"fever and cough", "fever"},
		{"cough with headache", "cough"},
		{"headache medicine", "headache"},
		{"urgent doctor appointment", "emergency"},
		{"doctor about my diet", "appointment"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rule, _ := Match(tt.input)
			assert.Equal(t, tt.rule, rule)
		})
	}
}

func TestMatcherImplementsAdvisor(t *testing.T) {
	var advisor domain.Advisor = NewMatcher()
	assert.Equal(t, Advise("fever"), advisor.Advise("fever"))
}

func TestGreeting(t *testing.T) {
	withName := Greeting(&domain.IdentityRecord{Name: "Priya Ramesh Kumar"})
	assert.True(t, strings.HasPrefix(withName, "Hello Priya! I'm your AI health assistant."))

	anonymous := Greeting(nil)
	assert.True(t, strings.HasPrefix(anonymous, "Hello! I'm your AI health assistant."))
	assert.True(t, strings.HasSuffix(anonymous, "How can I help you today?"))

	blank := Greeting(&domain.IdentityRecord{Name: "  "})
	assert.Equal(t, anonymous, blank)
}

func TestRulesAndQuickQuestions(t *testing.T) {
	rules := Rules()
	assert.Len(t, rules, 7)
	assert.Equal(t, "fever", rules[0].Name)

	rules[0].Keywords[0] = "changed"
	assert.Equal(t, "fever", Rules()[0].Keywords[0])

	questions := QuickQuestions()
	assert.Equal(t, []string{
		"What should I do about fever?",
		"When should I see a doctor?",
		"How to manage headaches?",
		"Home remedies for cold",
		"Emergency warning signs",
	}, questions)
}
