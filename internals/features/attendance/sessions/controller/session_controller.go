package controller

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	slotRepo "kampusku_backend/internals/features/academics/timetable/repository"
	"kampusku_backend/internals/features/attendance/sessions/dto"
	"kampusku_backend/internals/features/attendance/sessions/repository"
	"kampusku_backend/internals/features/attendance/sessions/service"
	tokenSvc "kampusku_backend/internals/features/attendance/tokens/service"
	helper "kampusku_backend/internals/helpers"
)

type SessionController struct {
	Scheduler *service.SchedulerService
	Sessions  repository.SessionRepository
	Slots     slotRepo.TimetableSlotRepository
	Issuer    *tokenSvc.TokenIssuer
	Validate  *validator.Validate
}

func NewSessionController(
	scheduler *service.SchedulerService,
	sessions repository.SessionRepository,
	slots slotRepo.TimetableSlotRepository,
	issuer *tokenSvc.TokenIssuer,
) *SessionController {
	return &SessionController{
		Scheduler: scheduler,
		Sessions:  sessions,
		Slots:     slots,
		Issuer:    issuer,
		Validate:  validator.New(),
	}
}

/* ===================== GENERATE ===================== */
// POST /attendance-sessions/generate
func (ctrl *SessionController) Generate(c *fiber.Ctx) error {
	var req dto.GenerateSessionsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	slot, err := ctrl.Slots.GetByID(c.UserContext(), req.TimetableSlotID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	created, err := ctrl.Scheduler.GenerateSessions(c.UserContext(), slot, req.FromDate, req.ToDate)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "Sesi digenerate", fiber.Map{"created": created})
}

/* ===================== READS ===================== */
// GET /attendance-sessions/:id
func (ctrl *SessionController) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	sess, err := ctrl.Sessions.GetByID(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "", dto.FromModel(sess))
}

// GET /attendance-sessions/section/:section_id?from_date=&to_date=
func (ctrl *SessionController) ListBySection(c *fiber.Ctx) error {
	sectionID, err := uuid.Parse(c.Params("section_id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "section_id tidak valid")
	}
	var from, to time.Time
	if q := c.Query("from_date"); q != "" {
		if from, err = time.Parse("2006-01-02", q); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "from_date wajib YYYY-MM-DD")
		}
	}
	if q := c.Query("to_date"); q != "" {
		if to, err = time.Parse("2006-01-02", q); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "to_date wajib YYYY-MM-DD")
		}
	}
	list, err := ctrl.Sessions.ListBySection(c.UserContext(), sectionID, from, to)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "", dto.FromModels(list))
}

/* ===================== TRANSISI MANUAL ===================== */
// POST /attendance-sessions/:id/close
func (ctrl *SessionController) Close(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	var req dto.TransitionRequest
	_ = c.BodyParser(&req) // actor opsional

	if err := ctrl.Scheduler.Close(c.UserContext(), id, actorOr(req.Actor, "faculty")); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Sesi ditutup", fiber.Map{"attendance_session_id": id})
}

// POST /attendance-sessions/:id/cancel
func (ctrl *SessionController) Cancel(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	var req dto.CancelSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	if err := ctrl.Scheduler.Cancel(c.UserContext(), id, req.Reason, actorOr(req.Actor, "faculty")); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Sesi dibatalkan", fiber.Map{"attendance_session_id": id})
}

// POST /attendance-sessions/:id/lock
func (ctrl *SessionController) Lock(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	var req dto.TransitionRequest
	_ = c.BodyParser(&req)

	if err := ctrl.Scheduler.Lock(c.UserContext(), id, actorOr(req.Actor, "admin")); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Sesi dikunci", fiber.Map{"attendance_session_id": id})
}

/* ===================== TOKEN ===================== */
// POST /attendance-sessions/:id/token
func (ctrl *SessionController) IssueToken(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	sess, err := ctrl.Sessions.GetByID(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	token, expiry, err := ctrl.Issuer.Issue(c.UserContext(), sess)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Token diterbitkan", dto.IssueTokenResponse{
		Token:     token,
		ExpiresAt: expiry,
	})
}

func actorOr(actor, fallback string) string {
	if actor != "" {
		return actor
	}
	return fallback
}
