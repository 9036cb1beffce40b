package api

import (
	"bytes"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/halcyon-labs/dermatrack/internal/services"
)

// AnalyzeScan uploads the image, runs the remote classifier, and
// returns the diagnosis with severity, treatment plan, and monitoring
// eligibility. The uploaded image URL comes back so the client can
// reference it when opting the condition into monitoring.
func (handler *Handler) AnalyzeScan(c *fiber.Ctx) error {
	user := currentUser(c)

	imageData, fileName, err := parseImageUpload(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	imageURL, err := handler.blobs.Upload(c.Context(), imageData, fileName, user.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to store image")
	}

	diagnosis, err := handler.classifier.Detect(c.Context(), fileName, bytes.NewReader(imageData))
	if err != nil {
		// The scan image is orphaned if classification fails.
		if deleteErr := handler.blobs.Delete(c.Context(), imageURL); deleteErr != nil {
			log.Printf("api: cleanup of scan image failed: %v", deleteErr)
		}
		return classifierError(c, err)
	}

	severity := services.AssessSeverity(diagnosis.Confidence)
	plan := services.BuildTreatmentPlan(diagnosis)
	severe := services.IsSevereCondition(diagnosis.DiseaseName)
	benign := services.IsBenignSignal(diagnosis.DiseaseName, diagnosis.Confidence)

	// Severe findings get immediate-care messaging instead of a
	// monitoring offer.
	return c.JSON(fiber.Map{
		"diagnosis":            diagnosis,
		"image_url":            imageURL,
		"severity":             severity,
		"treatment_plan":       plan,
		"severe_condition":     severe,
		"low_confidence":       diagnosis.Confidence < services.LowConfidenceThreshold,
		"monitoring_available": !benign && !severe,
	})
}
