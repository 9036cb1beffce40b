package services

import (
	"testing"

	"github.com/halcyon-labs/dermatrack/internal/models"
)

func TestAssessSeverity_BandBoundaries(t *testing.T) {
	testCases := []struct {
		confidence float64
		expected   string
	}{
		{0.0, SeverityMild},
		{0.39, SeverityMild},
		{0.4, SeverityModerate},
		{0.69, SeverityModerate},
		{0.7, SeveritySevere},
		{1.0, SeveritySevere},
	}

	for _, testCase := range testCases {
		assessment := AssessSeverity(testCase.confidence)
		if assessment.Level != testCase.expected {
			t.Fatalf("confidence %.2f: expected %s, got %s", testCase.confidence, testCase.expected, assessment.Level)
		}
		if assessment.Description == "" || len(assessment.Recommendations) != 3 {
			t.Fatalf("confidence %.2f: incomplete assessment %+v", testCase.confidence, assessment)
		}
	}
}

func TestBuildTreatmentPlan_PositionalPriorities(t *testing.T) {
	diagnosis := models.Diagnosis{
		DiseaseName: "Psoriasis",
		Confidence:  0.6,
		Insights: models.Insights{
			Treatment: []string{"Topical steroid.", "Moisturize daily.", "Avoid triggers.", "Light therapy.", "Follow-up visit."},
		},
	}

	plan := BuildTreatmentPlan(diagnosis)
	if len(plan) != 5 {
		t.Fatalf("expected 5 suggestions, got %d", len(plan))
	}

	expectedPriorities := []string{PriorityHigh, PriorityMedium, PriorityMedium, PriorityLow, PriorityLow}
	for index, suggestion := range plan {
		if suggestion.Priority != expectedPriorities[index] {
			t.Fatalf("suggestion %d: expected priority %s, got %s", index, expectedPriorities[index], suggestion.Priority)
		}
		if suggestion.Recommendation != diagnosis.Insights.Treatment[index] {
			t.Fatalf("suggestion %d: input order not preserved", index)
		}
	}

	if plan[0].Timeframe != "Immediate action required" {
		t.Fatalf("unexpected high timeframe: %q", plan[0].Timeframe)
	}
	if plan[1].Timeframe != "Within 1-2 weeks" {
		t.Fatalf("unexpected medium timeframe: %q", plan[1].Timeframe)
	}
	if plan[4].Timeframe != "As part of ongoing maintenance" {
		t.Fatalf("unexpected low timeframe: %q", plan[4].Timeframe)
	}
}

func TestBuildTreatmentPlan_EmptyTreatmentList(t *testing.T) {
	plan := BuildTreatmentPlan(models.Diagnosis{DiseaseName: "Acne"})
	if len(plan) != 0 {
		t.Fatalf("expected empty plan, got %d suggestions", len(plan))
	}
}

func TestIsSevereCondition(t *testing.T) {
	severe := []string{
		"Malignant Melanoma, stage II",
		"Basal Cell Carcinoma",
		"suspected SKIN CANCER",
		"Necrotizing Fasciitis",
	}
	for _, name := range severe {
		if !IsSevereCondition(name) {
			t.Fatalf("expected %q to be severe", name)
		}
	}

	benign := []string{"Eczema", "Psoriasis", "Contact Dermatitis"}
	for _, name := range benign {
		if IsSevereCondition(name) {
			t.Fatalf("expected %q not to be severe", name)
		}
	}
}

func TestIsBenignSignal(t *testing.T) {
	if !IsBenignSignal("Eczema", 0.39) {
		t.Fatal("expected low confidence to read as benign")
	}
	if IsBenignSignal("Eczema", 0.4) {
		t.Fatal("expected threshold confidence on a disease label not to read as benign")
	}
	for _, name := range []string{"Normal Skin", "Healthy", "Clear skin", "Unaffected area"} {
		if !IsBenignSignal(name, 0.9) {
			t.Fatalf("expected %q to read as benign regardless of confidence", name)
		}
	}
}
