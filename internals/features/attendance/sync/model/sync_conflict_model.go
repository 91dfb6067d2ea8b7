package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SyncConflictStatusPending  = "pending"
	SyncConflictStatusResolved = "resolved"
)

// SyncConflictModel: dibuat HANYA saat resolver tidak bisa memilih pemenang
// secara deterministik. Butuh resolusi manual sebelum status jadi resolved.
type SyncConflictModel struct {
	SyncConflictID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:sync_conflict_id" json:"sync_conflict_id"`

	SyncConflictSessionID uuid.UUID `gorm:"type:uuid;not null;column:sync_conflict_session_id;index" json:"sync_conflict_session_id"`
	SyncConflictStudentID uuid.UUID `gorm:"type:uuid;not null;column:sync_conflict_student_id"       json:"sync_conflict_student_id"`

	// Semua event yang bersaing, apa adanya, untuk ditimbang manusia
	SyncConflictCompetingEvents datatypes.JSON `gorm:"not null;column:sync_conflict_competing_events" json:"sync_conflict_competing_events"`

	SyncConflictStatus string `gorm:"type:varchar(10);not null;default:'pending';column:sync_conflict_status;index" json:"sync_conflict_status"`

	SyncConflictCreatedAt  time.Time  `gorm:"column:sync_conflict_created_at;autoCreateTime" json:"sync_conflict_created_at"`
	SyncConflictResolvedAt *time.Time `gorm:"column:sync_conflict_resolved_at"               json:"sync_conflict_resolved_at,omitempty"`
}

func (SyncConflictModel) TableName() string { return "sync_conflicts" }
