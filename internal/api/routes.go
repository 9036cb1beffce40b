package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)
	auth.Get("/me", handler.AuthRequired, handler.Me)

	scans := api.Group("/scans", handler.AuthRequired)
	scans.Post("", handler.AnalyzeScan)

	conditions := api.Group("/monitoring/conditions", handler.AuthRequired)
	conditions.Post("", handler.CreateCondition)
	conditions.Get("", handler.ListConditions)
	conditions.Get("/:id", handler.GetCondition)
	conditions.Delete("/:id", handler.DeleteCondition)
	conditions.Post("/:id/checkins", handler.RecordCheckIn)
	conditions.Get("/:id/progress", handler.GetConditionProgress)
	conditions.Patch("/:id/status", handler.UpdateConditionStatus)
	conditions.Put("/:id/image", handler.UpdateConditionImage)
}
