package services

import (
	"fmt"
	"math"

	"github.com/halcyon-labs/dermatrack/internal/models"
)

const sameVerdictBand = 0.05

type ProgressAnalysis struct {
	Improvement      string  `json:"improvement"`
	ConfidenceChange float64 `json:"confidence_change"`
	Analysis         string  `json:"analysis"`
}

// AnalyzeProgress compares the current scan against a prior one for the
// same condition. A DROP in model confidence is treated as improvement:
// the model is less sure the disease is present. This sign convention
// is deliberate; inverting it would reverse every verdict.
func AnalyzeProgress(current models.Diagnosis, previous models.Diagnosis) ProgressAnalysis {
	confidenceChange := current.Confidence - previous.Confidence

	improvement := models.ImprovementSame
	if math.Abs(confidenceChange) >= sameVerdictBand {
		if confidenceChange < 0 {
			improvement = models.ImprovementBetter
		} else {
			improvement = models.ImprovementWorse
		}
	}

	return ProgressAnalysis{
		Improvement:      improvement,
		ConfidenceChange: confidenceChange,
		Analysis:         progressNarrative(improvement, confidenceChange),
	}
}

func progressNarrative(improvement string, change float64) string {
	changePercent := fmt.Sprintf("%.1f", math.Abs(change*100))

	switch improvement {
	case models.ImprovementBetter:
		return fmt.Sprintf("The condition has shown improvement with a %s%% decrease in detection confidence. Continue with the current treatment plan.", changePercent)
	case models.ImprovementWorse:
		return fmt.Sprintf("The condition has shown some deterioration with a %s%% increase in detection confidence. Consider consulting your healthcare provider for treatment adjustment.", changePercent)
	default:
		return "The condition appears stable with no significant changes. Continue monitoring and following the prescribed treatment plan."
	}
}
