// file: internals/features/attendance/sessions/dto/session_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	m "kampusku_backend/internals/features/attendance/sessions/model"
)

/* =========================================================
 * REQUESTS
 * ========================================================= */

type GenerateSessionsRequest struct {
	// Wajib: id slot jadwal (UUID)
	TimetableSlotID uuid.UUID `json:"timetable_slot_id" validate:"required"`

	// Range tanggal kalender inklusif
	FromDate time.Time `json:"from_date" validate:"required"`
	ToDate   time.Time `json:"to_date"   validate:"required"`
}

type CancelSessionRequest struct {
	// Wajib: alasan cancel, masuk audit
	Reason string `json:"reason" validate:"required,max=255"`
	Actor  string `json:"actor"  validate:"omitempty,max=80"`
}

type TransitionRequest struct {
	Actor string `json:"actor" validate:"omitempty,max=80"`
}

type ListSessionsQuery struct {
	FromDate *time.Time `query:"from_date" validate:"omitempty"`
	ToDate   *time.Time `query:"to_date"   validate:"omitempty"`
}

/* =========================================================
 * RESPONSE
 * ========================================================= */

type SessionResponse struct {
	AttendanceSessionID        uuid.UUID  `json:"attendance_session_id"`
	AttendanceSessionSectionID uuid.UUID  `json:"attendance_session_section_id"`
	AttendanceSessionFacultyID uuid.UUID  `json:"attendance_session_faculty_id"`
	AttendanceSessionPeriodID  uuid.UUID  `json:"attendance_session_period_id"`
	AttendanceSessionDate      time.Time  `json:"attendance_session_date"`
	AttendanceSessionStartAt   time.Time  `json:"attendance_session_start_at"`
	AttendanceSessionEndAt     time.Time  `json:"attendance_session_end_at"`
	AttendanceSessionRoom      *string    `json:"attendance_session_room,omitempty"`
	AttendanceSessionStatus    string     `json:"attendance_session_status"`
	AttendanceSessionVersion   int        `json:"attendance_session_version"`
	AttendanceSessionClosedAt  *time.Time `json:"attendance_session_closed_at,omitempty"`
	AttendanceSessionLockedAt  *time.Time `json:"attendance_session_locked_at,omitempty"`
}

func FromModel(s *m.AttendanceSessionModel) SessionResponse {
	return SessionResponse{
		AttendanceSessionID:        s.AttendanceSessionID,
		AttendanceSessionSectionID: s.AttendanceSessionSectionID,
		AttendanceSessionFacultyID: s.AttendanceSessionFacultyID,
		AttendanceSessionPeriodID:  s.AttendanceSessionPeriodID,
		AttendanceSessionDate:      s.AttendanceSessionDate,
		AttendanceSessionStartAt:   s.AttendanceSessionStartAt,
		AttendanceSessionEndAt:     s.AttendanceSessionEndAt,
		AttendanceSessionRoom:      s.AttendanceSessionRoom,
		AttendanceSessionStatus:    s.AttendanceSessionStatus,
		AttendanceSessionVersion:   s.AttendanceSessionVersion,
		AttendanceSessionClosedAt:  s.AttendanceSessionClosedAt,
		AttendanceSessionLockedAt:  s.AttendanceSessionLockedAt,
	}
}

func FromModels(list []m.AttendanceSessionModel) []SessionResponse {
	out := make([]SessionResponse, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}

type IssueTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
