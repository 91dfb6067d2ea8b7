package route

import (
	"github.com/gofiber/fiber/v2"

	"kampusku_backend/internals/features/attendance/statistics/controller"
)

func StatisticsRoutes(api fiber.Router, ctrl *controller.StatisticsController) {
	stats := api.Group("/attendance-statistics")

	stats.Get("/", ctrl.Get)
	stats.Post("/recompute", ctrl.Recompute)
	stats.Post("/recompute-section", ctrl.RecomputeSection)
}
