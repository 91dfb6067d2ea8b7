package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kampusku_backend/internals/features/attendance/records/dto"
	recModel "kampusku_backend/internals/features/attendance/records/model"
	"kampusku_backend/internals/features/attendance/records/repository"
	"kampusku_backend/internals/features/attendance/records/service"
	sessRepo "kampusku_backend/internals/features/attendance/sessions/repository"
	tokenSvc "kampusku_backend/internals/features/attendance/tokens/service"
	helper "kampusku_backend/internals/helpers"
)

type CaptureController struct {
	Gateway  *service.CaptureGatewayService
	Issuer   *tokenSvc.TokenIssuer
	Sessions sessRepo.SessionRepository
	Store    repository.RecordStore
	Validate *validator.Validate
}

func NewCaptureController(
	gateway *service.CaptureGatewayService,
	issuer *tokenSvc.TokenIssuer,
	sessions sessRepo.SessionRepository,
	store repository.RecordStore,
) *CaptureController {
	return &CaptureController{
		Gateway:  gateway,
		Issuer:   issuer,
		Sessions: sessions,
		Store:    store,
		Validate: validator.New(),
	}
}

/* ===================== CAPTURE (manual / biometric) ===================== */
// POST /attendance-records/capture
func (ctrl *CaptureController) Capture(c *fiber.Ctx) error {
	var req dto.CaptureRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	res, err := ctrl.Gateway.RecordAttendance(c.UserContext(), service.CaptureInput{
		SessionID:       req.SessionID,
		StudentID:       req.StudentID,
		Mark:            req.Mark,
		Source:          req.Source,
		MarkedAt:        req.MarkedAt,
		DeviceID:        req.DeviceID,
		Actor:           req.Actor,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Kehadiran tercatat", res)
}

/* ===================== CAPTURE VIA QR TOKEN ===================== */
// POST /attendance-records/capture/qr
// session_id diambil dari token; status sesi tetap dicek live oleh gateway.
func (ctrl *CaptureController) CaptureQR(c *fiber.Ctx) error {
	var req dto.QRCaptureRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	sessionID, err := ctrl.Issuer.Validate(c.UserContext(), req.Token)
	if err != nil {
		return helper.JsonAppError(c, err)
	}

	res, err := ctrl.Gateway.RecordAttendance(c.UserContext(), service.CaptureInput{
		SessionID:       sessionID,
		StudentID:       req.StudentID,
		Mark:            recModel.MarkPresent,
		Source:          recModel.SourceQR,
		MarkedAt:        req.MarkedAt,
		DeviceID:        req.DeviceID,
		Actor:           req.StudentID.String(),
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Kehadiran tercatat", res)
}

/* ===================== BIOMETRIC MATCH EVENT ===================== */
// POST /attendance-records/capture/biometric
func (ctrl *CaptureController) CaptureBiometric(c *fiber.Ctx) error {
	var req dto.BiometricEventRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	res, err := ctrl.Gateway.RecordAttendance(c.UserContext(), service.CaptureInput{
		SessionID:       req.SessionID,
		StudentID:       req.StudentID,
		Mark:            recModel.MarkPresent,
		Source:          recModel.SourceBiometric,
		MarkedAt:        req.Timestamp,
		DeviceID:        req.DeviceID,
		Actor:           "biometric-matcher",
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Kehadiran tercatat", res)
}

/* ===================== EXCUSED OVERRIDE ===================== */
// POST /attendance-records/:session_id/excused-override
func (ctrl *CaptureController) ExcusedOverride(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("session_id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "session_id tidak valid")
	}
	var req dto.ExcusedOverrideRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	res, err := ctrl.Gateway.ApplyExcusedOverride(c.UserContext(), sessionID, req.StudentID, req.Reason, actorOr(req.Actor, "correction-workflow"))
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Excused override diterapkan", res)
}

/* ===================== LIST ===================== */
// GET /attendance-records/session/:session_id
func (ctrl *CaptureController) ListBySession(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("session_id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "session_id tidak valid")
	}
	list, err := ctrl.Store.ListBySession(c.UserContext(), sessionID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "", list)
}

func actorOr(actor, fallback string) string {
	if actor != "" {
		return actor
	}
	return fallback
}
