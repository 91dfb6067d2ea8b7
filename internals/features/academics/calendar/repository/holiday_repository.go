package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"kampusku_backend/internals/features/academics/calendar/model"
)

// HolidayCalendar: kolaborator eksternal bagi generator sesi.
// Implementasi default membaca tabel holidays; boleh diganti service kalender kampus.
type HolidayCalendar interface {
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
}

type holidayRepo struct {
	db *gorm.DB
}

func NewHolidayCalendar(db *gorm.DB) HolidayCalendar {
	return &holidayRepo{db: db}
}

func (r *holidayRepo) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	var n int64
	d := date.Format("2006-01-02")
	err := r.db.WithContext(ctx).
		Model(&model.HolidayModel{}).
		Where("holiday_date = ?", d).
		Count(&n).Error
	return n > 0, err
}
