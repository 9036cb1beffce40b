package services

import (
	"math"
	"strings"
	"testing"

	"github.com/halcyon-labs/dermatrack/internal/models"
)

func makeScan(confidence float64) models.Diagnosis {
	return models.Diagnosis{
		DiseaseName: "Eczema",
		Confidence:  confidence,
		Insights: models.Insights{
			Overview: "test overview",
		},
	}
}

func TestAnalyzeProgress_SmallChangesAreStable(t *testing.T) {
	pairs := [][2]float64{
		{0.50, 0.50},
		{0.52, 0.50},
		{0.50, 0.52},
		{0.549, 0.50},
		{0.50, 0.549},
	}

	for _, pair := range pairs {
		result := AnalyzeProgress(makeScan(pair[0]), makeScan(pair[1]))
		if result.Improvement != models.ImprovementSame {
			t.Fatalf("expected same for current=%.3f previous=%.3f, got %s", pair[0], pair[1], result.Improvement)
		}
	}
}

func TestAnalyzeProgress_ConfidenceDropIsBetter(t *testing.T) {
	result := AnalyzeProgress(makeScan(0.5), makeScan(0.6))

	if result.Improvement != models.ImprovementBetter {
		t.Fatalf("expected better, got %s", result.Improvement)
	}
	if math.Abs(result.ConfidenceChange-(-0.1)) > 1e-9 {
		t.Fatalf("expected change -0.1, got %f", result.ConfidenceChange)
	}
	if !strings.Contains(result.Analysis, "10.0% decrease") {
		t.Fatalf("expected narrative to report 10.0%% decrease, got %q", result.Analysis)
	}
}

func TestAnalyzeProgress_ConfidenceRiseIsWorse(t *testing.T) {
	result := AnalyzeProgress(makeScan(0.55), makeScan(0.4))

	if result.Improvement != models.ImprovementWorse {
		t.Fatalf("expected worse, got %s", result.Improvement)
	}
	if result.ConfidenceChange <= 0 {
		t.Fatalf("expected positive change, got %f", result.ConfidenceChange)
	}
	if !strings.Contains(result.Analysis, "increase") {
		t.Fatalf("expected deterioration narrative, got %q", result.Analysis)
	}
}

func TestAnalyzeProgress_StableNarrative(t *testing.T) {
	result := AnalyzeProgress(makeScan(0.5), makeScan(0.51))
	if !strings.Contains(result.Analysis, "stable") {
		t.Fatalf("expected stable narrative, got %q", result.Analysis)
	}
}
