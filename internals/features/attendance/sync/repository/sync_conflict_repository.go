package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kampusku_backend/internals/features/attendance/sync/model"
	"kampusku_backend/internals/helpers/errs"
)

type SyncConflictRepository interface {
	Create(ctx context.Context, conflict *model.SyncConflictModel) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.SyncConflictModel, error)
	ListPending(ctx context.Context) ([]model.SyncConflictModel, error)
	MarkResolved(ctx context.Context, id uuid.UUID) error
}

type syncConflictRepo struct {
	db *gorm.DB
}

func NewSyncConflictRepository(db *gorm.DB) SyncConflictRepository {
	return &syncConflictRepo{db: db}
}

func (r *syncConflictRepo) Create(ctx context.Context, conflict *model.SyncConflictModel) error {
	return r.db.WithContext(ctx).Create(conflict).Error
}

func (r *syncConflictRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.SyncConflictModel, error) {
	var m model.SyncConflictModel
	err := r.db.WithContext(ctx).
		Where("sync_conflict_id = ?", id).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("sync conflict tidak ditemukan")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *syncConflictRepo) ListPending(ctx context.Context) ([]model.SyncConflictModel, error) {
	var out []model.SyncConflictModel
	err := r.db.WithContext(ctx).
		Where("sync_conflict_status = ?", model.SyncConflictStatusPending).
		Order("sync_conflict_created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *syncConflictRepo) MarkResolved(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&model.SyncConflictModel{}).
		Where("sync_conflict_id = ? AND sync_conflict_status = ?", id, model.SyncConflictStatusPending).
		Updates(map[string]interface{}{
			"sync_conflict_status":      model.SyncConflictStatusResolved,
			"sync_conflict_resolved_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.Conflict("sync conflict sudah diresolve atau tidak ditemukan")
	}
	return nil
}
