package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kampusku_backend/internals/features/attendance/sync/dto"
	"kampusku_backend/internals/features/attendance/sync/repository"
	"kampusku_backend/internals/features/attendance/sync/service"
	helper "kampusku_backend/internals/helpers"
)

type SyncController struct {
	Resolver  *service.ConflictResolverService
	Conflicts repository.SyncConflictRepository
	Validate  *validator.Validate
}

func NewSyncController(resolver *service.ConflictResolverService, conflicts repository.SyncConflictRepository) *SyncController {
	return &SyncController{
		Resolver:  resolver,
		Conflicts: conflicts,
		Validate:  validator.New(),
	}
}

/* ===================== SYNC BATCH ===================== */
// POST /attendance-sync/batch
// Satu event busuk tidak menggagalkan batch; hasil per event di response.
func (ctrl *SyncController) SyncBatch(c *fiber.Ctx) error {
	var req dto.SyncBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	results := ctrl.Resolver.ResolveBatch(c.UserContext(), req.Events, req.Actor)
	return helper.JsonOK(c, "Batch diproses", fiber.Map{"results": results})
}

/* ===================== CONFLICTS ===================== */
// GET /attendance-sync/conflicts/pending
func (ctrl *SyncController) ListPendingConflicts(c *fiber.Ctx) error {
	list, err := ctrl.Conflicts.ListPending(c.UserContext())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "", list)
}

// POST /attendance-sync/conflicts/:id/resolve
func (ctrl *SyncController) ResolveConflict(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id tidak valid")
	}
	var req dto.ResolveConflictRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(req); err != nil {
		return helper.JsonValidationError(c, err)
	}

	if err := ctrl.Resolver.ResolveConflict(c.UserContext(), id, req.WinnerIndex, req.Actor); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Conflict diresolve", fiber.Map{"sync_conflict_id": id})
}
