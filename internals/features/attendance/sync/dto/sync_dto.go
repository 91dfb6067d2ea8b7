// file: internals/features/attendance/sync/dto/sync_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

// OfflineEventInput: satu event hasil antrian perangkat offline / delayed channel.
type OfflineEventInput struct {
	SessionID       uuid.UUID `json:"session_id"        validate:"required"`
	StudentID       uuid.UUID `json:"student_id"        validate:"required"`
	Mark            string    `json:"mark"              validate:"required,oneof=present late absent"`
	Source          string    `json:"source"            validate:"required,oneof=manual qr biometric offline"`
	ClientTimestamp time.Time `json:"client_timestamp"  validate:"required"`
	DeviceID        string    `json:"device_id"         validate:"required,max=80"`
}

type SyncBatchRequest struct {
	Events []OfflineEventInput `json:"events" validate:"required,min=1,dive"`
	Actor  string              `json:"actor"  validate:"omitempty,max=80"`
}

// Status per event: tidak ada event yang hilang diam-diam.
const (
	EventStatusApplied    = "applied"    // menang dan menimpa/membuat record
	EventStatusKept       = "kept"       // record existing menang prioritas
	EventStatusSuperseded = "superseded" // kalah dari event lain di batch yang sama
	EventStatusRejected   = "rejected"   // invalid (stale, sesi tidak dikenal, dst)
	EventStatusConflict   = "conflict"   // ambigu → dipersist sebagai SyncConflict
)

type EventResult struct {
	Index  int    `json:"index"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type ResolveConflictRequest struct {
	// Index event pemenang di competing_events
	WinnerIndex int    `json:"winner_index" validate:"min=0"`
	Actor       string `json:"actor"        validate:"omitempty,max=80"`
}
