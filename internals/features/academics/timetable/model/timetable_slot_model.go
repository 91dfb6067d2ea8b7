package model

import (
	"time"

	"github.com/google/uuid"
)

// TimetableSlotModel: slot jadwal berulang milik konfigurasi penjadwalan.
// Read-only bagi core attendance; hanya jadi input generate sesi.
type TimetableSlotModel struct {
	TimetableSlotID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:timetable_slot_id" json:"timetable_slot_id"`

	TimetableSlotSectionID uuid.UUID `gorm:"type:uuid;not null;column:timetable_slot_section_id;index" json:"timetable_slot_section_id"`
	TimetableSlotFacultyID uuid.UUID `gorm:"type:uuid;not null;column:timetable_slot_faculty_id"       json:"timetable_slot_faculty_id"`

	// 0=Minggu .. 6=Sabtu (time.Weekday)
	TimetableSlotWeekday int `gorm:"not null;column:timetable_slot_weekday" json:"timetable_slot_weekday"`

	// Jam dinding "HH:MM" (dipadukan dengan tanggal saat generate)
	TimetableSlotStartTime string `gorm:"type:varchar(5);not null;column:timetable_slot_start_time" json:"timetable_slot_start_time"`
	TimetableSlotEndTime   string `gorm:"type:varchar(5);not null;column:timetable_slot_end_time"   json:"timetable_slot_end_time"`

	TimetableSlotRoom *string `gorm:"type:varchar(64);column:timetable_slot_room" json:"timetable_slot_room,omitempty"`

	TimetableSlotCreatedAt time.Time `gorm:"column:timetable_slot_created_at;autoCreateTime" json:"timetable_slot_created_at"`
}

func (TimetableSlotModel) TableName() string { return "timetable_slots" }

// StartOn / EndOn: gabungkan jam slot dengan tanggal kalender (lokasi waktu ikut date).
func (m *TimetableSlotModel) StartOn(date time.Time) time.Time {
	return combine(date, m.TimetableSlotStartTime)
}

func (m *TimetableSlotModel) EndOn(date time.Time) time.Time {
	return combine(date, m.TimetableSlotEndTime)
}

func combine(date time.Time, hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
}
