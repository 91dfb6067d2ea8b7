package route

import (
	"github.com/gofiber/fiber/v2"

	"kampusku_backend/internals/features/academics/academic_periods/controller"
)

func AcademicPeriodRoutes(api fiber.Router, ctrl *controller.AcademicPeriodController) {
	periods := api.Group("/academic-periods")

	periods.Post("/", ctrl.Create)
	periods.Get("/", ctrl.List)
	periods.Get("/current", ctrl.GetCurrent)
	periods.Get("/by-date", ctrl.GetByDate)
	periods.Post("/:id/set-current", ctrl.SetCurrent)
}
