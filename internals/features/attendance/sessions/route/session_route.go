package route

import (
	"github.com/gofiber/fiber/v2"

	"kampusku_backend/internals/features/attendance/sessions/controller"
)

func SessionRoutes(api fiber.Router, ctrl *controller.SessionController) {
	sessions := api.Group("/attendance-sessions")

	sessions.Post("/generate", ctrl.Generate)
	sessions.Get("/section/:section_id", ctrl.ListBySection)
	sessions.Get("/:id", ctrl.GetByID)

	// transisi manual — auto open/close/lock jalan lewat sweeper
	sessions.Post("/:id/close", ctrl.Close)
	sessions.Post("/:id/cancel", ctrl.Cancel)
	sessions.Post("/:id/lock", ctrl.Lock)

	sessions.Post("/:id/token", ctrl.IssueToken)
}
