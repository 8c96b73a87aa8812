package triage

import (
	"github.com/symptom-triage-server/internal/domain"
)

// Rule maps a primary symptom to its candidate conditions, department,
// treatment advice and base urgency.
type Rule struct {
	Symptom    string                      `json:"symptom"`
	Conditions []domain.CandidateCondition `json:"conditions"`
	Department string                      `json:"department"`
	Treatment  string                      `json:"treatment"`
	Urgency    domain.Urgency              `json:"urgency"`
}

// RedFlag is an additional symptom whose presence forces high urgency.
type RedFlag struct {
	Symptom   string                    `json:"symptom"`
	Condition domain.CandidateCondition `json:"condition"`
}

const (
	DeptGeneralMedicine  = "General Medicine"
	DeptNeurology        = "Neurology"
	DeptENT              = "ENT"
	DeptGastroenterology = "Gastroenterology"
	DeptPulmonology      = "Pulmonology"
	DeptCardiology       = "Cardiology"
)

// Declaration order breaks confidence ties.
var ruleTable = []Rule{
	{
		Symptom: "Fever",
		Conditions: []domain.CandidateCondition{
			{Name: "Viral Fever", Confidence: 85, Description: "Common viral infection causing fever, body aches, and fatigue"},
			{Name: "Common Cold", Confidence: 70, Description: "Upper respiratory tract infection with mild symptoms"},
			{Name: "Flu", Confidence: 60, Description: "Influenza virus causing fever, cough, and body aches"},
		},
		Department: DeptGeneralMedicine,
		Treatment:  "Home rest, adequate fluids, and paracetamol for fever. Consult doctor if symptoms worsen.",
		Urgency:    domain.UrgencyLow,
	},
	{
		Symptom: "Headache",
		Conditions: []domain.CandidateCondition{
			{Name: "Tension Headache", Confidence: 75, Description: "Band-like pain often linked to stress, posture, or lack of sleep"},
			{Name: "Migraine", Confidence: 65, Description: "Throbbing pain, often one-sided, with sensitivity to light or sound"},
			{Name: "Sinusitis", Confidence: 45, Description: "Inflamed sinuses causing pressure around the forehead and eyes"},
		},
		Department: DeptNeurology,
		Treatment:  "Rest in a quiet, dark room, stay hydrated, and take over-the-counter pain relief. See a doctor if headaches are frequent or sudden and severe.",
		Urgency:    domain.UrgencyLow,
	},
	{
		Symptom: "Cough",
		Conditions: []domain.CandidateCondition{
			{Name: "Common Cold", Confidence: 75, Description: "Upper respiratory tract infection with mild symptoms"},
			{Name: "Acute Bronchitis", Confidence: 60, Description: "Inflammation of the airways, often following a cold"},
			{Name: "Allergic Rhinitis", Confidence: 40, Description: "Allergy-driven irritation causing postnasal drip and cough"},
		},
		Department: DeptGeneralMedicine,
		Treatment:  "Warm fluids, honey, and steam inhalation. Avoid smoke and irritants. Consult a doctor if the cough lasts more than 2 weeks or brings up blood.",
		Urgency:    domain.UrgencyLow,
	},
	{
		Symptom: "Sore throat",
		Conditions: []domain.CandidateCondition{
			{Name: "Viral Pharyngitis", Confidence: 80, Description: "Viral infection of the throat, usually self-limiting"},
			{Name: "Strep Throat", Confidence: 55, Description: "Bacterial throat infection that may need antibiotics"},
			{Name: "Tonsillitis", Confidence: 45, Description: "Inflammation of the tonsils with pain on swallowing"},
		},
		Department: DeptENT,
		Treatment:  "Warm salt-water gargles, lozenges, and plenty of fluids. See a doctor if you have high fever or difficulty swallowing.",
		Urgency:    domain.UrgencyLow,
	},
	{
		Symptom: "Body aches",
		Conditions: []domain.CandidateCondition{
			{Name: "Flu", Confidence: 70, Description: "Influenza virus causing fever, cough, and body aches"},
			{Name: "Muscle Strain", Confidence: 55, Description: "Overuse or minor injury of muscles"},
			{Name: "Viral Fever", Confidence: 50, Description: "Common viral infection causing fever, body aches, and fatigue"},
		},
		Department: DeptGeneralMedicine,
		Treatment:  "Rest, gentle stretching, fluids, and paracetamol for pain.",
		Urgency:    domain.UrgencyLow,
	},
	{
		Symptom: "Fatigue",
		Conditions: []domain.CandidateCondition{
			{Name: "Sleep Deprivation", Confidence: 65, Description: "Insufficient or poor-quality sleep"},
			{Name: "Anemia", Confidence: 50, Description: "Low red blood cell count reducing oxygen delivery"},
			{Name: "Viral Infection", Confidence: 45, Description: "Recovery phase of a recent viral illness"},
		},
		Department: DeptGeneralMedicine,
		Treatment:  "Keep a regular sleep schedule, eat balanced meals, and stay hydrated. See a doctor for blood tests if fatigue persists.",
		Urgency:    domain.UrgencyLow,
	},
	{
		Symptom: "Nausea",
		Conditions: []domain.CandidateCondition{
			{Name: "Gastritis", Confidence: 70, Description: "Irritation of the stomach lining"},
			{Name: "Food Poisoning", Confidence: 60, Description: "Illness from contaminated food or drink"},
			{Name: "Motion Sickness", Confidence: 35, Description: "Nausea triggered by movement"},
		},
		Department: DeptGastroenterology,
		Treatment:  "Small sips of clear fluids, bland foods, and rest. Avoid fatty or spicy meals.",
		Urgency:    domain.UrgencyLow,
	},
	{
		Symptom: "Vomiting",
		Conditions: []domain.CandidateCondition{
			{Name: "Gastroenteritis", Confidence: 75, Description: "Infection of the stomach and intestines"},
			{Name: "Food Poisoning", Confidence: 65, Description: "Illness from contaminated food or drink"},
			{Name: "Migraine", Confidence: 30, Description: "Throbbing pain, often one-sided, with sensitivity to light or sound"},
		},
		Department: DeptGastroenterology,
		Treatment:  "Oral rehydration solution in small frequent sips. Seek care if unable to keep fluids down for 24 hours.",
		Urgency:    domain.UrgencyLow,
	},
	{
		Symptom: "Diarrhea",
		Conditions: []domain.CandidateCondition{
			{Name: "Gastroenteritis", Confidence: 75, Description: "Infection of the stomach and intestines"},
			{Name: "Food Poisoning", Confidence: 60, Description: "Illness from contaminated food or drink"},
			{Name: "Irritable Bowel Syndrome", Confidence: 35, Description: "Chronic bowel disorder with altered habits"},
		},
		Department: DeptGastroenterology,
		Treatment:  "Oral rehydration solution, plain foods, and hand hygiene. Seek care for blood in stool or signs of dehydration.",
		Urgency:    domain.UrgencyLow,
	},
	{
		Symptom: "Shortness of breath",
		Conditions: []domain.CandidateCondition{
			{Name: "Asthma", Confidence: 70, Description: "Narrowing of the airways causing wheeze and breathlessness"},
			{Name: "Respiratory Infection", Confidence: 60, Description: "Infection of the lungs or airways such as pneumonia"},
			{Name: "Anxiety", Confidence: 40, Description: "Rapid breathing triggered by stress or panic"},
		},
		Department: DeptPulmonology,
		Treatment:  "Sit upright and use a prescribed inhaler if you have one. Seek immediate medical attention if breathing does not improve.",
		Urgency:    domain.UrgencyHigh,
	},
	{
		Symptom: "Chest pain",
		Conditions: []domain.CandidateCondition{
			{Name: "Angina", Confidence: 70, Description: "Chest pain from reduced blood flow to the heart"},
			{Name: "Acid Reflux", Confidence: 55, Description: "Stomach acid irritating the food pipe"},
			{Name: "Muscle Strain", Confidence: 45, Description: "Overuse or minor injury of chest wall muscles"},
		},
		Department: DeptCardiology,
		Treatment:  "Stop activity and rest. Call emergency services if the pain spreads to the arm, jaw, or back, or comes with sweating.",
		Urgency:    domain.UrgencyHigh,
	},
	{
		Symptom: "Abdominal pain",
		Conditions: []domain.CandidateCondition{
			{Name: "Gastritis", Confidence: 65, Description: "Irritation of the stomach lining"},
			{Name: "Indigestion", Confidence: 60, Description: "Discomfort in the upper abdomen after eating"},
			{Name: "Appendicitis", Confidence: 35, Description: "Inflamed appendix, typically lower right pain"},
		},
		Department: DeptGastroenterology,
		Treatment:  "Avoid heavy meals and rest. Seek urgent care if pain is severe, localized to the lower right, or comes with fever.",
		Urgency:    domain.UrgencyMedium,
	},
	{
		Symptom: "Dizziness",
		Conditions: []domain.CandidateCondition{
			{Name: "Dehydration", Confidence: 65, Description: "Low body fluid volume reducing blood pressure"},
			{Name: "Benign Positional Vertigo", Confidence: 55, Description: "Brief spinning triggered by head movement"},
			{Name: "Low Blood Pressure", Confidence: 45, Description: "Drop in blood pressure on standing"},
		},
		Department: DeptNeurology,
		Treatment:  "Sit or lie down when dizzy, rise slowly, and drink fluids.",
		Urgency:    domain.UrgencyLow,
	},
	{
		Symptom: "Loss of appetite",
		Conditions: []domain.CandidateCondition{
			{Name: "Viral Infection", Confidence: 60, Description: "Recovery phase of a recent viral illness"},
			{Name: "Gastritis", Confidence: 50, Description: "Irritation of the stomach lining"},
			{Name: "Stress", Confidence: 40, Description: "Emotional stress affecting appetite"},
		},
		Department: DeptGastroenterology,
		Treatment:  "Eat small, frequent, nutritious meals and keep hydrated. See a doctor if weight loss follows.",
		Urgency:    domain.UrgencyLow,
	},
}

var fallbackRule = Rule{
	Symptom: "",
	Conditions: []domain.CandidateCondition{
		{Name: "Unspecified Condition", Confidence: 30, Description: "Symptoms do not match a known pattern and need clinical assessment"},
	},
	Department: DeptGeneralMedicine,
	Treatment:  "Monitor your symptoms, rest, and stay hydrated. Consult a general physician for a proper evaluation.",
	Urgency:    domain.UrgencyLow,
}

var redFlags = []RedFlag{
	{
		Symptom:   "Chest pain",
		Condition: domain.CandidateCondition{Name: "Possible Cardiac Event", Confidence: 90, Description: "Chest pain alongside other symptoms needs urgent cardiac evaluation"},
	},
	{
		Symptom:   "Shortness of breath",
		Condition: domain.CandidateCondition{Name: "Respiratory Distress", Confidence: 88, Description: "Difficulty breathing needs urgent assessment of the lungs and heart"},
	},
}

// Rules returns a copy of the rule table in declaration order.
func Rules() []Rule {
	out := make([]Rule, 0, len(ruleTable))
	for _, r := range ruleTable {
		out = append(out, r.clone())
	}
	return out
}

// Fallback returns a copy of the rule used for unrecognized symptoms.
func Fallback() Rule {
	return fallbackRule.clone()
}

// RedFlags returns a copy of the red-flag table.
func RedFlags() []RedFlag {
	return append([]RedFlag(nil), redFlags...)
}

func (r Rule) clone() Rule {
	r.Conditions = append([]domain.CandidateCondition(nil), r.Conditions...)
	return r
}

func lookup(symptom string) (Rule, bool) {
	key := domain.NormalizeSymptom(symptom)
	for _, r := range ruleTable {
		if domain.NormalizeSymptom(r.Symptom) == key {
			return r.clone(), true
		}
	}
	return fallbackRule.clone(), false
}
