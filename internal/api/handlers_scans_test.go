package api

import (
	"net/http"
	"testing"

	"github.com/halcyon-labs/dermatrack/internal/models"
)

func TestAnalyzeScanReturnsDiagnosisAndPlan(t *testing.T) {
	env := newTestEnv(t)
	cookie := registerTestUser(t, env, "scan@example.com")

	env.classifier.set(models.Diagnosis{
		DiseaseName: "Eczema",
		Confidence:  0.55,
		Insights: models.Insights{
			Overview:  "Chronic inflammatory skin condition",
			Treatment: []string{"Apply moisturizer", "Use topical corticosteroids", "Avoid known triggers", "Take antihistamines"},
		},
	})

	req := multipartImageRequest(t, "/api/scans", nil, nil)
	req.AddCookie(cookie)
	resp := env.do(t, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analyze scan: status %d", resp.StatusCode)
	}

	var body struct {
		Diagnosis struct {
			DiseaseName string  `json:"disease_name"`
			Confidence  float64 `json:"confidence"`
		} `json:"diagnosis"`
		ImageURL string `json:"image_url"`
		Severity struct {
			Level string `json:"level"`
		} `json:"severity"`
		TreatmentPlan []struct {
			Priority string `json:"priority"`
		} `json:"treatment_plan"`
		SevereCondition     bool `json:"severe_condition"`
		LowConfidence       bool `json:"low_confidence"`
		MonitoringAvailable bool `json:"monitoring_available"`
	}
	decodeJSONBody(t, resp, &body)

	if body.Diagnosis.DiseaseName != "Eczema" || body.Diagnosis.Confidence != 0.55 {
		t.Fatalf("diagnosis = %+v", body.Diagnosis)
	}
	if body.ImageURL == "" {
		t.Fatal("expected a stored image URL")
	}
	if body.Severity.Level != "moderate" {
		t.Fatalf("severity = %q, expected moderate for 0.55", body.Severity.Level)
	}
	if len(body.TreatmentPlan) != 4 || body.TreatmentPlan[0].Priority != "high" {
		t.Fatalf("treatment plan = %+v", body.TreatmentPlan)
	}
	if body.SevereCondition {
		t.Fatal("eczema must not be flagged severe")
	}
	if body.LowConfidence {
		t.Fatal("0.55 must not be flagged low confidence")
	}
	if !body.MonitoringAvailable {
		t.Fatal("eczema at 0.55 must be monitorable")
	}
}

func TestAnalyzeScanFlagsSevereAndBenign(t *testing.T) {
	env := newTestEnv(t)
	cookie := registerTestUser(t, env, "flags@example.com")

	env.classifier.set(models.Diagnosis{DiseaseName: "Malignant Melanoma, stage II", Confidence: 0.85})
	req := multipartImageRequest(t, "/api/scans", nil, nil)
	req.AddCookie(cookie)
	resp := env.do(t, req)

	var severe struct {
		SevereCondition     bool `json:"severe_condition"`
		MonitoringAvailable bool `json:"monitoring_available"`
	}
	decodeJSONBody(t, resp, &severe)
	if !severe.SevereCondition {
		t.Fatal("melanoma must be flagged severe")
	}
	if severe.MonitoringAvailable {
		t.Fatal("severe findings must get immediate-care messaging, not a monitoring offer")
	}

	env.classifier.set(models.Diagnosis{DiseaseName: "Healthy Skin", Confidence: 0.95})
	req = multipartImageRequest(t, "/api/scans", nil, nil)
	req.AddCookie(cookie)
	resp = env.do(t, req)

	var benign struct {
		MonitoringAvailable bool `json:"monitoring_available"`
	}
	decodeJSONBody(t, resp, &benign)
	if benign.MonitoringAvailable {
		t.Fatal("benign findings must not be monitorable")
	}
}

func TestAnalyzeScanClassifierFailureCleansUpBlob(t *testing.T) {
	env := newTestEnv(t)
	cookie := registerTestUser(t, env, "cleanup@example.com")

	env.classifier.fail(http.StatusInternalServerError)
	req := multipartImageRequest(t, "/api/scans", nil, nil)
	req.AddCookie(cookie)
	resp := env.do(t, req)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 when classifier fails, got %d", resp.StatusCode)
	}

	env.blobs.mu.Lock()
	remaining := len(env.blobs.objects)
	env.blobs.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("expected orphaned scan image removed, %d objects remain", remaining)
	}
}

func TestAnalyzeScanRejectsMissingImage(t *testing.T) {
	env := newTestEnv(t)
	cookie := registerTestUser(t, env, "noimage@example.com")

	req := jsonRequest(t, http.MethodPost, "/api/scans", map[string]string{})
	req.AddCookie(cookie)
	resp := env.do(t, req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without an image, got %d", resp.StatusCode)
	}
}
