package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* =========================
   Status sesi (state machine)
========================= */

const (
	SessionStatusScheduled = "scheduled"
	SessionStatusOpen      = "open"
	SessionStatusClosed    = "closed"
	SessionStatusLocked    = "locked"
	SessionStatusCancelled = "cancelled"
)

// legalTransitions: satu-satunya sumber kebenaran arah transisi.
// Scheduled→Open→Closed→Locked, Cancelled dari Scheduled/Open. Tidak ada jalan mundur.
var legalTransitions = map[string][]string{
	SessionStatusScheduled: {SessionStatusOpen, SessionStatusCancelled},
	SessionStatusOpen:      {SessionStatusClosed, SessionStatusCancelled},
	SessionStatusClosed:    {SessionStatusLocked},
	SessionStatusLocked:    {},
	SessionStatusCancelled: {},
}

func CanTransition(from, to string) bool {
	for _, t := range legalTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func IsTerminalStatus(status string) bool {
	return len(legalTransitions[status]) == 0
}

/* =========================
   Model
========================= */

type AttendanceSessionModel struct {
	AttendanceSessionID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:attendance_session_id" json:"attendance_session_id"`

	AttendanceSessionSectionID uuid.UUID `gorm:"type:uuid;not null;column:attendance_session_section_id;uniqueIndex:uq_attendance_session_natural,priority:1" json:"attendance_session_section_id"`
	AttendanceSessionFacultyID uuid.UUID `gorm:"type:uuid;not null;column:attendance_session_faculty_id"  json:"attendance_session_faculty_id"`
	AttendanceSessionPeriodID  uuid.UUID `gorm:"type:uuid;not null;column:attendance_session_period_id;index" json:"attendance_session_period_id"`

	// Natural key generate: (section_id, date, start_at) — generate ulang idempoten
	AttendanceSessionDate    time.Time `gorm:"type:date;not null;column:attendance_session_date;uniqueIndex:uq_attendance_session_natural,priority:2" json:"attendance_session_date"`
	AttendanceSessionStartAt time.Time `gorm:"not null;column:attendance_session_start_at;uniqueIndex:uq_attendance_session_natural,priority:3" json:"attendance_session_start_at"`
	AttendanceSessionEndAt   time.Time `gorm:"not null;column:attendance_session_end_at" json:"attendance_session_end_at"`

	AttendanceSessionRoom *string `gorm:"type:varchar(64);column:attendance_session_room" json:"attendance_session_room,omitempty"`

	AttendanceSessionStatus string `gorm:"type:varchar(16);not null;default:'scheduled';column:attendance_session_status;index" json:"attendance_session_status"`

	// Optimistic concurrency: naik 1 tiap transisi status (conditional update)
	AttendanceSessionVersion int `gorm:"not null;default:0;column:attendance_session_version" json:"attendance_session_version"`

	AttendanceSessionCancelReason *string    `gorm:"column:attendance_session_cancel_reason" json:"attendance_session_cancel_reason,omitempty"`
	AttendanceSessionClosedAt     *time.Time `gorm:"column:attendance_session_closed_at"     json:"attendance_session_closed_at,omitempty"`
	AttendanceSessionLockedAt     *time.Time `gorm:"column:attendance_session_locked_at"     json:"attendance_session_locked_at,omitempty"`

	AttendanceSessionCreatedAt time.Time      `gorm:"column:attendance_session_created_at;autoCreateTime" json:"attendance_session_created_at"`
	AttendanceSessionUpdatedAt *time.Time     `gorm:"column:attendance_session_updated_at;autoUpdateTime" json:"attendance_session_updated_at,omitempty"`
	AttendanceSessionDeletedAt gorm.DeletedAt `gorm:"column:attendance_session_deleted_at;index"          json:"attendance_session_deleted_at,omitempty"`
}

func (AttendanceSessionModel) TableName() string { return "attendance_sessions" }

func (m *AttendanceSessionModel) IsOpen() bool {
	return m.AttendanceSessionStatus == SessionStatusOpen
}

// InCorrectionWindow: Closed/Locked masih boleh menerima excused override
// selama now <= end_at + window.
func (m *AttendanceSessionModel) InCorrectionWindow(now time.Time, window time.Duration) bool {
	return !now.After(m.AttendanceSessionEndAt.Add(window))
}
