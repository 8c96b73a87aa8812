// Package advisory answers free-text health questions from an ordered
// keyword rule table and runs the per-session advisory chat.
package advisory

import (
	"strings"

	"github.com/symptom-triage-server/internal/domain"
)

// FallbackRule names the response returned when no keyword matches.
const FallbackRule = "fallback"

// Rule is one keyword set and its canned response.
type Rule struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Response string   `json:"response"`
}

// First match wins, so order matters.
var rules = []Rule{
	{
		Name:     "fever",
		Keywords: []string{"fever", "temperature"},
		Response: "For fever management: Stay hydrated, rest well, and take paracetamol as needed. If fever exceeds 101.3°F (38.5°C) or persists for more than 3 days, please consult a doctor. Monitor for additional symptoms like difficulty breathing or severe headache.",
	},
	{
		Name:     "cough",
		Keywords: []string{"cough"},
		Response: "For cough relief: Stay hydrated, use a humidifier, try honey (not for children under 1 year), and avoid irritants. See a doctor if cough persists more than 3 weeks, produces blood, or is accompanied by high fever or difficulty breathing.",
	},
	{
		Name:     "headache",
		Keywords: []string{"headache"},
		Response: "Headaches can have various causes. For mild headaches: ensure adequate hydration, rest in a dark quiet room, and consider over-the-counter pain relievers. Seek immediate medical attention if you experience sudden severe headache, headache with fever and stiff neck, or headache after head injury.",
	},
	{
		Name:     "medication",
		Keywords: []string{"medicine", "medication"},
		Response: "I can provide general medication information, but I cannot prescribe medications. Always consult with a healthcare provider or pharmacist for specific medication advice. Never share prescription medications, and always take medications as directed by your doctor.",
	},
	{
		Name:     "emergency",
		Keywords: []string{"emergency", "urgent"},
		Response: "For medical emergencies, please call emergency services immediately (108 in India, 911 in US). Signs of emergency include: chest pain, difficulty breathing, severe bleeding, loss of consciousness, severe allergic reactions, or signs of stroke. Don't delay seeking help for serious symptoms.",
	},
	{
		Name:     "appointment",
		Keywords: []string{"appointment", "doctor"},
		Response: "To find the right healthcare provider: Consider your symptoms and our previous diagnosis suggestions. For routine care, start with a general practitioner. For specialized conditions, you may need a referral to the recommended department. Many hospitals now offer online appointment booking.",
	},
	{
		Name:     "nutrition",
		Keywords: []string{"diet", "food", "nutrition"},
		Response: "A balanced diet supports overall health and recovery. Include plenty of fruits, vegetables, lean proteins, and whole grains. Stay hydrated, especially when ill. Avoid processed foods and excessive sugar. For specific dietary needs related to medical conditions, consult with a nutritionist or your doctor.",
	},
}

const fallbackResponse = "I understand you're asking about a health concern. While I can provide general health information, it's important to consult with a qualified healthcare professional for personalized medical advice. Can you tell me more about your specific symptoms or concerns so I can provide more relevant guidance?"

var quickQuestions = []string{
	"What should I do about fever?",
	"When should I see a doctor?",
	"How to manage headaches?",
	"Home remedies for cold",
	"Emergency warning signs",
}

// Matcher is the keyword implementation of domain.Advisor.
type Matcher struct{}

// NewMatcher creates a matcher over the built-in rule table.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Advise implements domain.Advisor.
func (m *Matcher) Advise(text string) string {
	return Advise(text)
}

// Match returns the name of the first rule with a keyword contained in text
// (case-insensitive) and its response. Unmatched text yields FallbackRule.
func Match(text string) (string, string) {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Name, r.Response
			}
		}
	}
	return FallbackRule, fallbackResponse
}

// Advise returns the canned guidance for a free-text question.
func Advise(text string) string {
	_, response := Match(text)
	return response
}

// Rules returns a copy of the rule table in match order.
func Rules() []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		r.Keywords = append([]string(nil), r.Keywords...)
		out = append(out, r)
	}
	return out
}

// QuickQuestions returns the suggested starter prompts.
func QuickQuestions() []string {
	return append([]string(nil), quickQuestions...)
}

// Greeting is the first assistant message of a chat session, addressed by
// first name when an identity is known.
func Greeting(identity *domain.IdentityRecord) string {
	name := ""
	if first := identity.FirstName(); first != "" {
		name = " " + first
	}
	return "Hello" + name + "! I'm your AI health assistant. I'm here to answer any health-related questions you might have, " +
		"provide general medical information, and offer guidance on when to seek medical care. How can I help you today?"
}
