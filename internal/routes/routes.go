package routes

import (
	"net/http"

	"lead-tracking-service/internal/controller"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// Register attaches all HTTP routes to the Fiber app. A nil metrics handler
// leaves /metrics unregistered.
func Register(app *fiber.App, trackingController controller.TrackingController, metrics http.Handler) {
	api := app.Group("/api")
	api.Post("/contact", trackingController.SubmitContact)
	api.Post("/track/page-view", trackingController.TrackPageView)
	api.Post("/track/form", trackingController.TrackFormEvent)
	api.Post("/track/event", trackingController.TrackEvent)
	api.Get("/platforms", trackingController.ListPlatforms)

	if metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
