package service

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"kampusku_backend/internals/features/attendance/audit/model"
)

// AuditWriter: kontrak tunggal append. Implementasi gorm menulis lewat tx yang
// diberikan caller supaya entry ikut commit/rollback mutasi yang dia catat.
type AuditWriter interface {
	Append(ctx context.Context, tx *gorm.DB, entry *model.AuditLogEntryModel) error
}

type auditWriter struct {
	db *gorm.DB
}

func NewAuditWriter(db *gorm.DB) AuditWriter {
	return &auditWriter{db: db}
}

func (w *auditWriter) Append(ctx context.Context, tx *gorm.DB, entry *model.AuditLogEntryModel) error {
	conn := w.db
	if tx != nil {
		conn = tx
	}
	return conn.WithContext(ctx).Create(entry).Error
}

// Snapshot: marshal state entity jadi kolom before/after. nil → null.
func Snapshot(v any) []byte {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
