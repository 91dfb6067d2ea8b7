package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"kampusku_backend/internals/features/academics/academic_periods/model"
	"kampusku_backend/internals/features/academics/academic_periods/repository"
	"kampusku_backend/internals/helpers/errs"
)

// AcademicPeriodService: registry konteks waktu akademik.
// Satu-satunya jalur untuk flip is_current adalah SetCurrent.
type AcademicPeriodService struct {
	Periods repository.AcademicPeriodRepository
}

func NewAcademicPeriodService(repo repository.AcademicPeriodRepository) *AcademicPeriodService {
	return &AcademicPeriodService{Periods: repo}
}

func (s *AcademicPeriodService) Create(ctx context.Context, period *model.AcademicPeriodModel) error {
	if period.AcademicPeriodYear == "" || period.AcademicPeriodTerm == "" {
		return errs.Validation("year dan term wajib diisi")
	}
	if period.AcademicPeriodEndDate.Before(period.AcademicPeriodStartDate) {
		return errs.Validation("start_date harus <= end_date")
	}

	n, err := s.Periods.CountOverlapping(ctx,
		period.AcademicPeriodYear, period.AcademicPeriodTerm,
		period.AcademicPeriodStartDate, period.AcademicPeriodEndDate)
	if err != nil {
		return err
	}
	if n > 0 {
		return errs.Validation("rentang tanggal beririsan dengan periode lain untuk (year, term) yang sama")
	}

	// is_current tidak boleh di-set dari jalur create
	period.AcademicPeriodIsCurrent = false
	return s.Periods.Create(ctx, period)
}

func (s *AcademicPeriodService) SetCurrent(ctx context.Context, id uuid.UUID) error {
	return s.Periods.SetCurrent(ctx, id)
}

func (s *AcademicPeriodService) GetByDate(ctx context.Context, date time.Time) (*model.AcademicPeriodModel, error) {
	return s.Periods.GetByDate(ctx, date)
}

func (s *AcademicPeriodService) GetCurrent(ctx context.Context) (*model.AcademicPeriodModel, error) {
	return s.Periods.GetCurrent(ctx)
}

func (s *AcademicPeriodService) GetByID(ctx context.Context, id uuid.UUID) (*model.AcademicPeriodModel, error) {
	return s.Periods.GetByID(ctx, id)
}

func (s *AcademicPeriodService) List(ctx context.Context) ([]model.AcademicPeriodModel, error) {
	return s.Periods.List(ctx)
}
