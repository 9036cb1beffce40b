package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/halcyon-labs/dermatrack/internal/classifier"
	"github.com/halcyon-labs/dermatrack/internal/monitor"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// monitorError maps a coordinator failure onto an HTTP response
// without leaking internals.
func monitorError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, monitor.ErrUserMismatch):
		return apiError(c, fiber.StatusForbidden, "forbidden")
	case errors.Is(err, monitor.ErrConditionNotFound):
		return apiError(c, fiber.StatusNotFound, "condition not found")
	case errors.Is(err, monitor.ErrNotMonitorable):
		return apiError(c, fiber.StatusUnprocessableEntity, "diagnosis not eligible for monitoring")
	case errors.Is(err, monitor.ErrInvalidFrequency),
		errors.Is(err, monitor.ErrInvalidStatus),
		errors.Is(err, monitor.ErrInvalidImprovement):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, monitor.ErrStoreNotReady):
		return apiError(c, fiber.StatusServiceUnavailable, "storage temporarily unavailable")
	default:
		return apiError(c, fiber.StatusInternalServerError, "operation failed")
	}
}

func classifierError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, classifier.ErrClassifierUnavailable):
		return apiError(c, fiber.StatusBadGateway, "analysis service unavailable")
	case errors.Is(err, classifier.ErrMalformedResponse):
		return apiError(c, fiber.StatusBadGateway, "analysis service returned an invalid result")
	default:
		return apiError(c, fiber.StatusInternalServerError, "analysis failed")
	}
}
