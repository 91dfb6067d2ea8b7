package controller

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kampusku_backend/internals/features/academics/academic_periods/dto"
	"kampusku_backend/internals/features/academics/academic_periods/service"
	helper "kampusku_backend/internals/helpers"
)

type AcademicPeriodController struct {
	Service  *service.AcademicPeriodService
	Validate *validator.Validate
}

func NewAcademicPeriodController(svc *service.AcademicPeriodService) *AcademicPeriodController {
	return &AcademicPeriodController{Service: svc, Validate: validator.New()}
}

/* ===================== CREATE ===================== */
// POST /academic-periods
func (ctrl *AcademicPeriodController) Create(c *fiber.Ctx) error {
	var req dto.CreateAcademicPeriodRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	m := req.ToModel()
	if err := ctrl.Service.Create(c.UserContext(), m); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Periode akademik dibuat", dto.FromModel(m))
}

/* ===================== SET CURRENT ===================== */
// POST /academic-periods/:id/set-current
func (ctrl *AcademicPeriodController) SetCurrent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	if err := ctrl.Service.SetCurrent(c.UserContext(), id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Periode akademik aktif diganti", fiber.Map{"academic_period_id": id})
}

/* ===================== READS ===================== */
// GET /academic-periods/current
func (ctrl *AcademicPeriodController) GetCurrent(c *fiber.Ctx) error {
	p, err := ctrl.Service.GetCurrent(c.UserContext())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "", dto.FromModel(p))
}

// GET /academic-periods/by-date?date=2026-03-01
func (ctrl *AcademicPeriodController) GetByDate(c *fiber.Ctx) error {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "query date wajib format YYYY-MM-DD")
	}
	p, err := ctrl.Service.GetByDate(c.UserContext(), date)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "", dto.FromModel(p))
}

// GET /academic-periods
func (ctrl *AcademicPeriodController) List(c *fiber.Ctx) error {
	list, err := ctrl.Service.List(c.UserContext())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "", dto.FromModels(list))
}
