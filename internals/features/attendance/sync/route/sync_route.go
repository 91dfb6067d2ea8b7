package route

import (
	"github.com/gofiber/fiber/v2"

	"kampusku_backend/internals/features/attendance/sync/controller"
	"kampusku_backend/internals/middlewares"
)

func SyncRoutes(api fiber.Router, ctrl *controller.SyncController) {
	sync := api.Group("/attendance-sync")

	sync.Post("/batch", middlewares.SyncBatchRateLimiter(), ctrl.SyncBatch)
	sync.Get("/conflicts/pending", ctrl.ListPendingConflicts)
	sync.Post("/conflicts/:id/resolve", ctrl.ResolveConflict)
}
