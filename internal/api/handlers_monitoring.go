package api

import (
	"bytes"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/halcyon-labs/dermatrack/internal/models"
	"github.com/halcyon-labs/dermatrack/internal/monitor"
	"github.com/halcyon-labs/dermatrack/internal/services"
)

type createConditionInput struct {
	DiseaseName string  `json:"disease_name" form:"disease_name"`
	Confidence  float64 `json:"confidence" form:"confidence"`
	ImageURL    string  `json:"image_url" form:"image_url"`
	Frequency   string  `json:"frequency" form:"frequency"`
}

type updateStatusInput struct {
	Status string `json:"status" form:"status"`
}

// CreateCondition opts a previously analyzed diagnosis into
// longitudinal monitoring.
func (handler *Handler) CreateCondition(c *fiber.Ctx) error {
	user := currentUser(c)

	input := createConditionInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	input.DiseaseName = strings.TrimSpace(input.DiseaseName)
	input.Frequency = strings.ToLower(strings.TrimSpace(input.Frequency))
	if input.DiseaseName == "" {
		return apiError(c, fiber.StatusBadRequest, "missing disease name")
	}
	if input.Frequency == "" {
		input.Frequency = models.FrequencyDaily
	}

	conditionID, err := handler.coordinator.StartMonitoring(c.Context(), user.ID, user.ID, input.DiseaseName, input.ImageURL, input.Confidence, input.Frequency)
	if err != nil {
		return monitorError(c, err)
	}

	condition, err := handler.coordinator.GetCondition(c.Context(), user.ID, conditionID)
	if err != nil {
		return monitorError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"condition": condition})
}

func (handler *Handler) ListConditions(c *fiber.Ctx) error {
	user := currentUser(c)

	conditions, err := handler.coordinator.GetUserActiveConditions(c.Context(), user.ID, user.ID)
	if err != nil {
		return monitorError(c, err)
	}
	return c.JSON(fiber.Map{"conditions": conditions})
}

func (handler *Handler) GetCondition(c *fiber.Ctx) error {
	user := currentUser(c)
	conditionID, err := parseConditionID(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	condition, err := handler.coordinator.GetCondition(c.Context(), user.ID, conditionID)
	if err != nil {
		return monitorError(c, err)
	}
	return c.JSON(fiber.Map{"condition": condition})
}

// RecordCheckIn runs a fresh scan against a monitored condition,
// compares it with the previous one, and stores the progress entry.
// The comparison baseline is the latest entry, or the initial
// diagnosis when this is the first check-in.
func (handler *Handler) RecordCheckIn(c *fiber.Ctx) error {
	user := currentUser(c)
	conditionID, err := parseConditionID(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	condition, err := handler.coordinator.GetCondition(c.Context(), user.ID, conditionID)
	if err != nil {
		return monitorError(c, err)
	}

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
		if deleteErr := handler.blobs.Delete(c.Context(), imageURL); deleteErr != nil {
			log.Printf("api: cleanup of check-in image failed: %v", deleteErr)
		}
		return classifierError(c, err)
	}

	previous := models.Diagnosis{
		DiseaseName: condition.DiseaseName,
		Confidence:  condition.InitialConfidence,
	}
	latest, found, err := handler.repositories.Entries.FindLatestByCondition(c.Context(), conditionID)
	if err != nil {
		// Falling back to the initial confidence here would persist a
		// verdict computed against the wrong baseline.
		return monitorError(c, err)
	}
	if found {
		previous.Confidence = latest.Confidence
	}

	analysis := services.AnalyzeProgress(diagnosis, previous)

	err = handler.coordinator.AddProgressEntry(c.Context(), user.ID, user.ID, conditionID, monitor.ProgressEntryInput{
		ImageURL:    imageURL,
		Confidence:  diagnosis.Confidence,
		Notes:       strings.TrimSpace(c.FormValue("notes")),
		Symptoms:    parseSymptoms(c),
		Improvement: analysis.Improvement,
		Insights:    diagnosis.Insights,
	})
	if err != nil {
		return monitorError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"diagnosis": diagnosis,
		"image_url": imageURL,
		"progress":  analysis,
	})
}

func (handler *Handler) GetConditionProgress(c *fiber.Ctx) error {
	user := currentUser(c)
	conditionID, err := parseConditionID(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	if _, err := handler.coordinator.GetCondition(c.Context(), user.ID, conditionID); err != nil {
		return monitorError(c, err)
	}

	entries, err := handler.coordinator.GetConditionProgress(c.Context(), user.ID, conditionID)
	if err != nil {
		return monitorError(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries})
}

func (handler *Handler) UpdateConditionStatus(c *fiber.Ctx) error {
	user := currentUser(c)
	conditionID, err := parseConditionID(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	input := updateStatusInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	status := strings.ToLower(strings.TrimSpace(input.Status))
	if err := handler.coordinator.UpdateConditionStatus(c.Context(), user.ID, conditionID, status); err != nil {
		return monitorError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true, "status": status})
}

func (handler *Handler) UpdateConditionImage(c *fiber.Ctx) error {
	user := currentUser(c)
	conditionID, err := parseConditionID(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	imageData, fileName, err := parseImageUpload(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	imageURL, err := handler.coordinator.UpdateConditionImage(c.Context(), user.ID, conditionID, imageData, fileName)
	if err != nil {
		return monitorError(c, err)
	}
	return c.JSON(fiber.Map{"image_url": imageURL})
}

func (handler *Handler) DeleteCondition(c *fiber.Ctx) error {
	user := currentUser(c)
	conditionID, err := parseConditionID(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := handler.coordinator.DeleteCondition(c.Context(), user.ID, conditionID); err != nil {
		return monitorError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func parseSymptoms(c *fiber.Ctx) []string {
	symptoms := []string{}
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, value := range form.Value["symptoms"] {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				symptoms = append(symptoms, trimmed)
			}
		}
	}
	return symptoms
}
