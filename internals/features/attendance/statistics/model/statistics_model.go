package model

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceStatModel: snapshot turunan murni; tidak pernah dimutasi jalur capture.
// Replaceable, keyed (student, section, period).
type AttendanceStatModel struct {
	AttendanceStatID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:attendance_stat_id" json:"attendance_stat_id"`

	AttendanceStatStudentID uuid.UUID `gorm:"type:uuid;not null;column:attendance_stat_student_id;uniqueIndex:uq_attendance_stat_key,priority:1" json:"attendance_stat_student_id"`
	AttendanceStatSectionID uuid.UUID `gorm:"type:uuid;not null;column:attendance_stat_section_id;uniqueIndex:uq_attendance_stat_key,priority:2" json:"attendance_stat_section_id"`
	AttendanceStatPeriodID  uuid.UUID `gorm:"type:uuid;not null;column:attendance_stat_period_id;uniqueIndex:uq_attendance_stat_key,priority:3"  json:"attendance_stat_period_id"`

	AttendanceStatTotalSessions int `gorm:"not null;default:0;column:attendance_stat_total_sessions" json:"attendance_stat_total_sessions"`
	AttendanceStatPresentCount  int `gorm:"not null;default:0;column:attendance_stat_present_count"  json:"attendance_stat_present_count"`
	AttendanceStatExcusedCount  int `gorm:"not null;default:0;column:attendance_stat_excused_count"  json:"attendance_stat_excused_count"`

	AttendanceStatPercentage float64 `gorm:"type:numeric(5,2);not null;default:0;column:attendance_stat_percentage" json:"attendance_stat_percentage"`
	AttendanceStatEligible   bool    `gorm:"not null;default:false;column:attendance_stat_eligible"                 json:"attendance_stat_eligible"`

	AttendanceStatComputedAt time.Time `gorm:"not null;column:attendance_stat_computed_at" json:"attendance_stat_computed_at"`
}

func (AttendanceStatModel) TableName() string { return "attendance_statistics" }
