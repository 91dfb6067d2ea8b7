// file: internals/features/attendance/records/dto/capture_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

/* =========================================================
 * REQUESTS
 * ========================================================= */

// CaptureRequest: jalur manual / biometric (session_id eksplisit).
type CaptureRequest struct {
	SessionID uuid.UUID `json:"session_id" validate:"required"`
	StudentID uuid.UUID `json:"student_id" validate:"required"`

	// excused sengaja TIDAK ada di oneof — hanya lewat jalur koreksi
	Mark   string `json:"mark"   validate:"required,oneof=present late absent"`
	Source string `json:"source" validate:"required,oneof=manual biometric"`

	MarkedAt time.Time `json:"marked_at" validate:"omitempty"`
	DeviceID string    `json:"device_id" validate:"omitempty,max=80"`
	Actor    string    `json:"actor"     validate:"omitempty,max=80"`

	DurationSeconds *int `json:"duration_seconds" validate:"omitempty,min=0"`
}

// QRCaptureRequest: session_id datang dari token, bukan dari client.
type QRCaptureRequest struct {
	Token     string    `json:"token"      validate:"required"`
	StudentID uuid.UUID `json:"student_id" validate:"required"`

	MarkedAt time.Time `json:"marked_at" validate:"omitempty"`
	DeviceID string    `json:"device_id" validate:"omitempty,max=80"`

	DurationSeconds *int `json:"duration_seconds" validate:"omitempty,min=0"`
}

// BiometricEventRequest: MatchEvent dari matcher eksternal.
type BiometricEventRequest struct {
	SessionID    uuid.UUID `json:"session_id"    validate:"required"`
	StudentID    uuid.UUID `json:"student_id"    validate:"required"`
	DeviceID     string    `json:"device_id"     validate:"required,max=80"`
	Timestamp    time.Time `json:"timestamp"     validate:"required"`
	QualityScore float64   `json:"quality_score" validate:"min=0,max=1"`

	DurationSeconds *int `json:"duration_seconds" validate:"omitempty,min=0"`
}

type ExcusedOverrideRequest struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
	Reason    string    `json:"reason"     validate:"required,max=255"`
	Actor     string    `json:"actor"      validate:"omitempty,max=80"`
}
