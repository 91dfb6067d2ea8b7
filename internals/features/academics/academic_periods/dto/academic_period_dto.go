// file: internals/features/academics/academic_periods/dto/academic_period_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	m "kampusku_backend/internals/features/academics/academic_periods/model"
)

/* =========================================================
 * REQUESTS
 * ========================================================= */

type CreateAcademicPeriodRequest struct {
	// Wajib: tahun akademik, mis. "2025/2026"
	AcademicPeriodYear string `json:"academic_period_year" validate:"required,max=16"`
	// Wajib: term, mis. "ganjil" / "genap"
	AcademicPeriodTerm string `json:"academic_period_term" validate:"required,max=16"`

	AcademicPeriodStartDate time.Time `json:"academic_period_start_date" validate:"required"`
	AcademicPeriodEndDate   time.Time `json:"academic_period_end_date"   validate:"required"`
}

func (r *CreateAcademicPeriodRequest) ToModel() *m.AcademicPeriodModel {
	return &m.AcademicPeriodModel{
		AcademicPeriodYear:      r.AcademicPeriodYear,
		AcademicPeriodTerm:      r.AcademicPeriodTerm,
		AcademicPeriodStartDate: r.AcademicPeriodStartDate,
		AcademicPeriodEndDate:   r.AcademicPeriodEndDate,
	}
}

/* =========================================================
 * RESPONSE
 * ========================================================= */

type AcademicPeriodResponse struct {
	AcademicPeriodID        uuid.UUID `json:"academic_period_id"`
	AcademicPeriodYear      string    `json:"academic_period_year"`
	AcademicPeriodTerm      string    `json:"academic_period_term"`
	AcademicPeriodStartDate time.Time `json:"academic_period_start_date"`
	AcademicPeriodEndDate   time.Time `json:"academic_period_end_date"`
	AcademicPeriodIsCurrent bool      `json:"academic_period_is_current"`
}

func FromModel(p *m.AcademicPeriodModel) AcademicPeriodResponse {
	return AcademicPeriodResponse{
		AcademicPeriodID:        p.AcademicPeriodID,
		AcademicPeriodYear:      p.AcademicPeriodYear,
		AcademicPeriodTerm:      p.AcademicPeriodTerm,
		AcademicPeriodStartDate: p.AcademicPeriodStartDate,
		AcademicPeriodEndDate:   p.AcademicPeriodEndDate,
		AcademicPeriodIsCurrent: p.AcademicPeriodIsCurrent,
	}
}

func FromModels(list []m.AcademicPeriodModel) []AcademicPeriodResponse {
	out := make([]AcademicPeriodResponse, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}
