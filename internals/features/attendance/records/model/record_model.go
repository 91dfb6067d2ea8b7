package model

import (
	"time"

	"github.com/google/uuid"
)

/* =========================
   Mark & Source (enum tertutup)
========================= */

const (
	MarkPresent = "present"
	MarkLate    = "late"
	MarkAbsent  = "absent"
	MarkExcused = "excused"
)

const (
	SourceManual    = "manual"
	SourceQR        = "qr"
	SourceBiometric = "biometric"
	SourceOffline   = "offline"
)

func ValidMark(mark string) bool {
	switch mark {
	case MarkPresent, MarkLate, MarkAbsent, MarkExcused:
		return true
	}
	return false
}

func ValidSource(source string) bool {
	switch source {
	case SourceManual, SourceQR, SourceBiometric, SourceOffline:
		return true
	}
	return false
}

// sourcePriority: tabel prioritas eksplisit, bukan hirarki tipe.
// manual > biometric > qr > offline.
var sourcePriority = map[string]int{
	SourceManual:    4,
	SourceBiometric: 3,
	SourceQR:        2,
	SourceOffline:   1,
}

func SourcePriority(source string) int {
	return sourcePriority[source]
}

// Supersedes: total order penentu menang antar write ke pasangan (session, student).
// Prioritas source dulu, lalu timestamp lebih baru, lalu device_id terkecil
// (tie-break terakhir murni demi reproducibility).
func Supersedes(newSource string, newAt time.Time, newDevice string,
	oldSource string, oldAt time.Time, oldDevice string) bool {

	np, op := SourcePriority(newSource), SourcePriority(oldSource)
	if np != op {
		return np > op
	}
	if !newAt.Equal(oldAt) {
		return newAt.After(oldAt)
	}
	return newDevice < oldDevice
}

/* =========================
   Model
========================= */

// AttendanceRecordModel: SATU mark per (session, student). Selalu target upsert,
// tidak pernah di-append.
type AttendanceRecordModel struct {
	AttendanceRecordID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:attendance_record_id" json:"attendance_record_id"`

	AttendanceRecordSessionID uuid.UUID `gorm:"type:uuid;not null;column:attendance_record_session_id;uniqueIndex:uq_attendance_record_pair,priority:1" json:"attendance_record_session_id"`
	AttendanceRecordStudentID uuid.UUID `gorm:"type:uuid;not null;column:attendance_record_student_id;uniqueIndex:uq_attendance_record_pair,priority:2" json:"attendance_record_student_id"`

	AttendanceRecordMark     string    `gorm:"type:varchar(10);not null;column:attendance_record_mark"   json:"attendance_record_mark"`
	AttendanceRecordMarkedAt time.Time `gorm:"not null;column:attendance_record_marked_at"               json:"attendance_record_marked_at"`
	AttendanceRecordSource   string    `gorm:"type:varchar(10);not null;column:attendance_record_source" json:"attendance_record_source"`
	AttendanceRecordDeviceID string    `gorm:"type:varchar(80);column:attendance_record_device_id"       json:"attendance_record_device_id,omitempty"`

	AttendanceRecordCreatedAt time.Time  `gorm:"column:attendance_record_created_at;autoCreateTime" json:"attendance_record_created_at"`
	AttendanceRecordUpdatedAt *time.Time `gorm:"column:attendance_record_updated_at;autoUpdateTime" json:"attendance_record_updated_at,omitempty"`
}

func (AttendanceRecordModel) TableName() string { return "attendance_records" }

// SupersededBy: apakah record existing kalah dari kandidat baru.
func (m *AttendanceRecordModel) SupersededBy(source string, at time.Time, device string) bool {
	return Supersedes(source, at, device,
		m.AttendanceRecordSource, m.AttendanceRecordMarkedAt, m.AttendanceRecordDeviceID)
}
