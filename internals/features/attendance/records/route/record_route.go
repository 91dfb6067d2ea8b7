package route

import (
	"github.com/gofiber/fiber/v2"

	"kampusku_backend/internals/features/attendance/records/controller"
	"kampusku_backend/internals/middlewares"
)

func RecordRoutes(api fiber.Router, ctrl *controller.CaptureController) {
	records := api.Group("/attendance-records")

	capture := records.Group("/capture", middlewares.CaptureRateLimiter())
	capture.Post("/", ctrl.Capture)
	capture.Post("/qr", ctrl.CaptureQR)
	capture.Post("/biometric", ctrl.CaptureBiometric)

	records.Post("/:session_id/excused-override", ctrl.ExcusedOverride)
	records.Get("/session/:session_id", ctrl.ListBySession)
}
