// Package triage scores free-text nurse notes into a severity, a condition
// band and the preparation the receiving hospital should make.
package triage

import (
	"strings"

	"github.com/Rk346278/real-time-ambulance/internal/models"
)

const (
	ScoreCritical = 95
	ScoreHigh     = 80
	ScoreModerate = 60
	ScoreLow      = 35
	ScoreMinimal  = 15
	// ScoreUnknown is used when the notes match no keyword at all.
	ScoreUnknown = 50
)

type Assessment struct {
	SeverityScore        int    `json:"severityScore"`
	ConditionSeverity    string `json:"conditionSeverity"`
	ImmediateRequirement string `json:"immediateRequirement"`
}

type tier struct {
	score    int
	keywords []string
}

// tiers are checked top down; the first tier with any matching phrase wins.
var tiers = []tier{
	{ScoreCritical, []string{
		"heart attack", "cardiac arrest", "stroke", "unconscious",
		"not breathing", "no pulse", "major accident", "severe trauma",
		"head trauma", "brain injury",
	}},
	{ScoreHigh, []string{
		"heavy bleeding", "bleeding heavily", "deep cut", "multiple fractures",
		"seizure", "difficulty breathing", "shortness of breath", "severe pain",
		"collapsed", "shock",
	}},
	{ScoreModerate, []string{
		"fracture", "broken bone", "chest pain", "vomiting blood",
		"high fever", "severe dehydration", "asthma attack",
	}},
	{ScoreLow, []string{
		"fever", "dizziness", "vomiting", "minor injury", "small cut",
		"cold", "cough",
	}},
	{ScoreMinimal, []string{
		"mild", "minor", "light headache", "scratch",
	}},
}

type requirement struct {
	keywords []string
	need     string
}

var requirements = map[string][]requirement{
	models.ConditionCritical: {
		{[]string{"breathing", "oxygen"}, "Oxygen Support & ICU Ready"},
		{[]string{"cardiac", "heart"}, "Cardiac ICU & Defibrillator"},
		{[]string{"head", "brain"}, "Neuro ICU & Emergency CT"},
		{nil, "Emergency ICU Admission"},
	},
	models.ConditionSerious: {
		{[]string{"fracture"}, "Orthopedic Surgery Preparation"},
		{[]string{"bleeding"}, "Blood Unit & ER Monitoring"},
		{nil, "Emergency Ward Monitoring"},
	},
	models.ConditionStable: {
		{nil, "General Ward Observation"},
	},
}

// Classify assesses notes. It is deterministic and never fails: blank notes
// score 0 and land in the STABLE band.
func Classify(notes string) Assessment {
	text := strings.ToLower(notes)
	score := Score(text)
	condition := Condition(score)
	return Assessment{
		SeverityScore:        score,
		ConditionSeverity:    condition,
		ImmediateRequirement: requirementFor(text, condition),
	}
}

// Score maps notes to one of the tier scores, ScoreUnknown or 0 for blank text.
func Score(notes string) int {
	if strings.TrimSpace(notes) == "" {
		return 0
	}
	text := strings.ToLower(notes)
	for _, t := range tiers {
		if containsAny(text, t.keywords) {
			return t.score
		}
	}
	return ScoreUnknown
}

// Condition bands a score: ≥75 CRITICAL, ≥40 SERIOUS, otherwise STABLE.
func Condition(score int) string {
	switch {
	case score >= 75:
		return models.ConditionCritical
	case score >= 40:
		return models.ConditionSerious
	default:
		return models.ConditionStable
	}
}

func requirementFor(text, condition string) string {
	for _, r := range requirements[condition] {
		if r.keywords == nil || containsAny(text, r.keywords) {
			return r.need
		}
	}
	return ""
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// Apply fills the derived triage fields of u from its notes.
func Apply(u *models.NurseUpdate) {
	a := Classify(u.Notes)
	u.SeverityScore = a.SeverityScore
	u.ConditionSeverity = a.ConditionSeverity
	u.ImmediateRequirement = a.ImmediateRequirement
}
