package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kampusku_backend/internals/features/academics/academic_periods/model"
	"kampusku_backend/internals/helpers/errs"
)

type AcademicPeriodRepository interface {
	Create(ctx context.Context, period *model.AcademicPeriodModel) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.AcademicPeriodModel, error)
	GetByDate(ctx context.Context, date time.Time) (*model.AcademicPeriodModel, error)
	GetCurrent(ctx context.Context) (*model.AcademicPeriodModel, error)
	List(ctx context.Context) ([]model.AcademicPeriodModel, error)
	// CountOverlapping: periode lain dengan (year, term) sama yang rentang tanggalnya beririsan
	CountOverlapping(ctx context.Context, year, term string, start, end time.Time) (int64, error)
	// SetCurrent: clear flag lama + set flag baru dalam SATU transaksi
	SetCurrent(ctx context.Context, id uuid.UUID) error
}

type academicPeriodRepo struct {
	db *gorm.DB
}

func NewAcademicPeriodRepository(db *gorm.DB) AcademicPeriodRepository {
	return &academicPeriodRepo{db: db}
}

func (r *academicPeriodRepo) Create(ctx context.Context, period *model.AcademicPeriodModel) error {
	return r.db.WithContext(ctx).Create(period).Error
}

func (r *academicPeriodRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.AcademicPeriodModel, error) {
	var m model.AcademicPeriodModel
	err := r.db.WithContext(ctx).
		Where("academic_period_id = ?", id).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("periode akademik tidak ditemukan")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *academicPeriodRepo) GetByDate(ctx context.Context, date time.Time) (*model.AcademicPeriodModel, error) {
	var m model.AcademicPeriodModel
	err := r.db.WithContext(ctx).
		Where("academic_period_start_date <= ? AND academic_period_end_date >= ?", date, date).
		Order("academic_period_start_date DESC").
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("tidak ada periode akademik untuk tanggal tersebut")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *academicPeriodRepo) GetCurrent(ctx context.Context) (*model.AcademicPeriodModel, error) {
	var m model.AcademicPeriodModel
	err := r.db.WithContext(ctx).
		Where("academic_period_is_current = TRUE").
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("belum ada periode akademik aktif")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *academicPeriodRepo) List(ctx context.Context) ([]model.AcademicPeriodModel, error) {
	var out []model.AcademicPeriodModel
	err := r.db.WithContext(ctx).
		Order("academic_period_start_date DESC").
		Find(&out).Error
	return out, err
}

func (r *academicPeriodRepo) CountOverlapping(ctx context.Context, year, term string, start, end time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.AcademicPeriodModel{}).
		Where("academic_period_year = ? AND academic_period_term = ?", year, term).
		Where("academic_period_start_date <= ? AND academic_period_end_date >= ?", end, start).
		Count(&n).Error
	return n, err
}

func (r *academicPeriodRepo) SetCurrent(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.AcademicPeriodModel{}).
			Where("academic_period_id = ?", id).
			Update("academic_period_is_current", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.NotFound("periode akademik tidak ditemukan")
		}
		// Clear flag periode lain SETELAH target terbukti ada
		return tx.Model(&model.AcademicPeriodModel{}).
			Where("academic_period_id <> ? AND academic_period_is_current = TRUE", id).
			Update("academic_period_is_current", false).Error
	})
}
