package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AcademicPeriodModel struct {
	AcademicPeriodID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:academic_period_id" json:"academic_period_id"`

	// Tahun akademik format "2025/2026", term "ganjil"/"genap" (atau semester 1/2)
	AcademicPeriodYear string `gorm:"type:varchar(16);not null;column:academic_period_year" json:"academic_period_year"`
	AcademicPeriodTerm string `gorm:"type:varchar(16);not null;column:academic_period_term" json:"academic_period_term"`

	AcademicPeriodStartDate time.Time `gorm:"type:date;not null;column:academic_period_start_date" json:"academic_period_start_date"`
	AcademicPeriodEndDate   time.Time `gorm:"type:date;not null;column:academic_period_end_date"   json:"academic_period_end_date"`

	// Invariant: maksimal satu baris is_current=true; dijaga lewat SetCurrent (satu transaksi)
	AcademicPeriodIsCurrent bool `gorm:"not null;default:false;column:academic_period_is_current;index" json:"academic_period_is_current"`

	AcademicPeriodCreatedAt time.Time      `gorm:"column:academic_period_created_at;autoCreateTime" json:"academic_period_created_at"`
	AcademicPeriodUpdatedAt *time.Time     `gorm:"column:academic_period_updated_at;autoUpdateTime" json:"academic_period_updated_at,omitempty"`
	AcademicPeriodDeletedAt gorm.DeletedAt `gorm:"column:academic_period_deleted_at;index"          json:"academic_period_deleted_at,omitempty"`
}

func (AcademicPeriodModel) TableName() string { return "academic_periods" }

// Contains: true jika date jatuh di [start_date, end_date] (inklusif, granularitas hari).
func (m *AcademicPeriodModel) Contains(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(m.AcademicPeriodStartDate.Truncate(24*time.Hour)) &&
		!d.After(m.AcademicPeriodEndDate.Truncate(24*time.Hour))
}
