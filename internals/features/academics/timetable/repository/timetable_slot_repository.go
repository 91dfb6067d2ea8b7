package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kampusku_backend/internals/features/academics/timetable/model"
	"kampusku_backend/internals/helpers/errs"
)

type TimetableSlotRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.TimetableSlotModel, error)
	ListBySection(ctx context.Context, sectionID uuid.UUID) ([]model.TimetableSlotModel, error)
}

type timetableSlotRepo struct {
	db *gorm.DB
}

func NewTimetableSlotRepository(db *gorm.DB) TimetableSlotRepository {
	return &timetableSlotRepo{db: db}
}

func (r *timetableSlotRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.TimetableSlotModel, error) {
	var m model.TimetableSlotModel
	err := r.db.WithContext(ctx).
		Where("timetable_slot_id = ?", id).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("slot jadwal tidak ditemukan")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *timetableSlotRepo) ListBySection(ctx context.Context, sectionID uuid.UUID) ([]model.TimetableSlotModel, error) {
	var out []model.TimetableSlotModel
	err := r.db.WithContext(ctx).
		Where("timetable_slot_section_id = ?", sectionID).
		Order("timetable_slot_weekday ASC, timetable_slot_start_time ASC").
		Find(&out).Error
	return out, err
}
