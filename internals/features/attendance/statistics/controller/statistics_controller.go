package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kampusku_backend/internals/features/attendance/statistics/service"
	helper "kampusku_backend/internals/helpers"
)

type StatisticsController struct {
	Service *service.StatisticsService
}

func NewStatisticsController(svc *service.StatisticsService) *StatisticsController {
	return &StatisticsController{Service: svc}
}

// GET /attendance-statistics?student_id=&section_id=&period_id=
func (ctrl *StatisticsController) Get(c *fiber.Ctx) error {
	studentID, sectionID, periodID, err := parseStatKey(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	stat, err := ctrl.Service.Get(c.UserContext(), studentID, sectionID, periodID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "", stat)
}

// POST /attendance-statistics/recompute?student_id=&section_id=&period_id=
// Jalur on-demand; jalur normal lewat event close + worker.
func (ctrl *StatisticsController) Recompute(c *fiber.Ctx) error {
	studentID, sectionID, periodID, err := parseStatKey(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	stat, err := ctrl.Service.Recompute(c.UserContext(), studentID, sectionID, periodID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Statistik dihitung ulang", stat)
}

// POST /attendance-statistics/recompute-section?section_id=&period_id=
// Fan-out semua mahasiswa terdaftar di section; dipakai setelah koreksi massal.
func (ctrl *StatisticsController) RecomputeSection(c *fiber.Ctx) error {
	sectionID, err := uuid.Parse(c.Query("section_id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "section_id tidak valid")
	}
	periodID, err := uuid.Parse(c.Query("period_id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "period_id tidak valid")
	}
	count, err := ctrl.Service.RecomputeSection(c.UserContext(), sectionID, periodID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Statistik section dihitung ulang", fiber.Map{"recomputed": count})
}

func parseStatKey(c *fiber.Ctx) (studentID, sectionID, periodID uuid.UUID, err error) {
	if studentID, err = uuid.Parse(c.Query("student_id")); err != nil {
		return studentID, sectionID, periodID, fiber.NewError(fiber.StatusBadRequest, "student_id tidak valid")
	}
	if sectionID, err = uuid.Parse(c.Query("section_id")); err != nil {
		return studentID, sectionID, periodID, fiber.NewError(fiber.StatusBadRequest, "section_id tidak valid")
	}
	if periodID, err = uuid.Parse(c.Query("period_id")); err != nil {
		return studentID, sectionID, periodID, fiber.NewError(fiber.StatusBadRequest, "period_id tidak valid")
	}
	return studentID, sectionID, periodID, nil
}
