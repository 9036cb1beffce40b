package services

import (
	"fmt"
	"strings"

	"github.com/halcyon-labs/dermatrack/internal/models"
)

const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// LowConfidenceThreshold is the canonical cut-off below which a
// classification is treated as too weak to act on. It matches the
// lower bound of the moderate severity band so the two classifications
// cannot disagree about the same confidence value.
const LowConfidenceThreshold = 0.4

type SeverityAssessment struct {
	Level           string   `json:"level"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
}

type TreatmentSuggestion struct {
	Recommendation string `json:"recommendation"`
	Priority       string `json:"priority"`
	Timeframe      string `json:"timeframe"`
	Description    string `json:"description"`
}

var severeConditionNames = []string{
	"melanoma",
	"squamous cell carcinoma",
	"basal cell carcinoma",
	"skin cancer",
	"necrotizing fasciitis",
	"severe infection",
}

var benignSignalWords = []string{"normal", "healthy", "clear", "unaffected"}

// AssessSeverity maps a confidence score onto a fixed severity band
// with static guidance. Bands: mild < 0.4 <= moderate < 0.7 <= severe.
func AssessSeverity(confidence float64) SeverityAssessment {
	switch {
	case confidence < 0.4:
		return SeverityAssessment{
			Level:       SeverityMild,
			Description: "Early stage or mild condition that can typically be managed with basic care",
			Recommendations: []string{
				"Monitor the condition regularly",
				"Follow basic skin care routine",
				"Use over-the-counter treatments if recommended",
			},
		}
	case confidence < 0.7:
		return SeverityAssessment{
			Level:       SeverityModerate,
			Description: "Moderate condition that requires consistent attention and care",
			Recommendations: []string{
				"Schedule a follow-up with a dermatologist",
				"Follow prescribed treatment plan strictly",
				"Document any changes in symptoms",
			},
		}
	default:
		return SeverityAssessment{
			Level:       SeveritySevere,
			Description: "Severe condition that requires immediate medical attention",
			Recommendations: []string{
				"Seek immediate medical consultation",
				"Begin prescribed treatment as soon as possible",
				"Regular monitoring and documentation required",
			},
		}
	}
}

// BuildTreatmentPlan turns the diagnosis's treatment list into
// prioritized suggestions. Priority derives from list position only:
// the first entry is high, the next two medium, the rest low.
func BuildTreatmentPlan(diagnosis models.Diagnosis) []TreatmentSuggestion {
	suggestions := make([]TreatmentSuggestion, 0, len(diagnosis.Insights.Treatment))
	for index, treatment := range diagnosis.Insights.Treatment {
		priority := PriorityLow
		switch {
		case index == 0:
			priority = PriorityHigh
		case index < 3:
			priority = PriorityMedium
		}

		suggestions = append(suggestions, TreatmentSuggestion{
			Recommendation: treatment,
			Priority:       priority,
			Timeframe:      timeframeForPriority(priority),
			Description:    treatmentDescription(treatment, diagnosis.DiseaseName),
		})
	}
	return suggestions
}

func timeframeForPriority(priority string) string {
	switch priority {
	case PriorityHigh:
		return "Immediate action required"
	case PriorityMedium:
		return "Within 1-2 weeks"
	default:
		return "As part of ongoing maintenance"
	}
}

func treatmentDescription(treatment string, diseaseName string) string {
	return fmt.Sprintf("This treatment is specifically recommended for %s. %s Follow the prescribed duration and frequency for optimal results.", diseaseName, treatment)
}

// IsSevereCondition reports whether the disease label names a condition
// that needs immediate care rather than self-monitoring.
func IsSevereCondition(diseaseName string) bool {
	normalized := strings.ToLower(diseaseName)
	for _, severe := range severeConditionNames {
		if strings.Contains(normalized, severe) {
			return true
		}
	}
	return false
}

// IsBenignSignal reports whether a diagnosis reads as healthy skin or
// is too low-confidence to be worth tracking.
func IsBenignSignal(diseaseName string, confidence float64) bool {
	if confidence < LowConfidenceThreshold {
		return true
	}
	normalized := strings.ToLower(diseaseName)
	for _, word := range benignSignalWords {
		if strings.Contains(normalized, word) {
			return true
		}
	}
	return false
}
