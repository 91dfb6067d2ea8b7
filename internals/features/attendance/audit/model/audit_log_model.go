package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLogEntryModel: append-only. Tidak ada operasi update/delete di mana pun.
type AuditLogEntryModel struct {
	AuditLogID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:audit_log_id" json:"audit_log_id"`

	AuditLogEntityType string `gorm:"type:varchar(32);not null;column:audit_log_entity_type;index:idx_audit_log_entity,priority:1" json:"audit_log_entity_type"`
	AuditLogEntityID   string `gorm:"type:varchar(80);not null;column:audit_log_entity_id;index:idx_audit_log_entity,priority:2"   json:"audit_log_entity_id"`

	AuditLogAction string `gorm:"type:varchar(40);not null;column:audit_log_action" json:"audit_log_action"`
	AuditLogActor  string `gorm:"type:varchar(80);not null;column:audit_log_actor"  json:"audit_log_actor"`

	AuditLogBefore datatypes.JSON `gorm:"column:audit_log_before" json:"audit_log_before,omitempty"`
	AuditLogAfter  datatypes.JSON `gorm:"column:audit_log_after"  json:"audit_log_after,omitempty"`

	AuditLogSource        string `gorm:"type:varchar(16);column:audit_log_source"                json:"audit_log_source,omitempty"`
	AuditLogCorrelationID string `gorm:"type:varchar(80);column:audit_log_correlation_id;index"  json:"audit_log_correlation_id,omitempty"`

	AuditLogCreatedAt time.Time `gorm:"column:audit_log_created_at;autoCreateTime" json:"audit_log_created_at"`
}

func (AuditLogEntryModel) TableName() string { return "audit_log_entries" }
