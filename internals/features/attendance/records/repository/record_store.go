// file: internals/features/attendance/records/repository/record_store.go
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	auditModel "kampusku_backend/internals/features/attendance/audit/model"
	auditSvc "kampusku_backend/internals/features/attendance/audit/service"
	"kampusku_backend/internals/features/attendance/records/model"
	sessModel "kampusku_backend/internals/features/attendance/sessions/model"
	"kampusku_backend/internals/helpers/errs"
)

type UpsertOutcome string

const (
	OutcomeCreated UpsertOutcome = "created"
	OutcomeUpdated UpsertOutcome = "updated"
	// OutcomeKept: record existing menang prioritas / event identik; tidak ada overwrite.
	OutcomeKept UpsertOutcome = "kept"
)

// RecordStore: satu-satunya jalur write record. Status sesi dicek ULANG di dalam
// transaksi commit (bukan cuma saat request masuk) supaya sesi yang keburu
// ditutup menolak write, bukan balapan dengannya.
type RecordStore interface {
	UpsertWithStatusCheck(ctx context.Context, rec *model.AttendanceRecordModel,
		allowedStatuses []string, entry *auditModel.AuditLogEntryModel) (UpsertOutcome, *model.AttendanceRecordModel, error)
	GetBySessionStudent(ctx context.Context, sessionID, studentID uuid.UUID) (*model.AttendanceRecordModel, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.AttendanceRecordModel, error)
}

type recordStore struct {
	db *gorm.DB
}

func NewRecordStore(db *gorm.DB) RecordStore {
	return &recordStore{db: db}
}

func (s *recordStore) GetBySessionStudent(ctx context.Context, sessionID, studentID uuid.UUID) (*model.AttendanceRecordModel, error) {
	var m model.AttendanceRecordModel
	err := s.db.WithContext(ctx).
		Where("attendance_record_session_id = ? AND attendance_record_student_id = ?", sessionID, studentID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("record kehadiran tidak ditemukan")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *recordStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.AttendanceRecordModel, error) {
	var out []model.AttendanceRecordModel
	err := s.db.WithContext(ctx).
		Where("attendance_record_session_id = ?", sessionID).
		Order("attendance_record_student_id ASC").
		Find(&out).Error
	return out, err
}

func (s *recordStore) UpsertWithStatusCheck(ctx context.Context, rec *model.AttendanceRecordModel,
	allowedStatuses []string, entry *auditModel.AuditLogEntryModel) (UpsertOutcome, *model.AttendanceRecordModel, error) {

	var (
		outcome UpsertOutcome
		final   *model.AttendanceRecordModel
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) Lock row sesi + recheck status di dalam transaksi
		var sess sessModel.AttendanceSessionModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("attendance_session_id = ?", rec.AttendanceRecordSessionID).
			Take(&sess).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("sesi tidak ditemukan")
		}
		if err != nil {
			return err
		}
		if !statusAllowed(sess.AttendanceSessionStatus, allowedStatuses) {
			return errs.State("sesi sudah " + sess.AttendanceSessionStatus + ", write ditolak")
		}

		// 2) Ambil record existing pasangan (session, student)
		var existing model.AttendanceRecordModel
		err = tx.Where("attendance_record_session_id = ? AND attendance_record_student_id = ?",
			rec.AttendanceRecordSessionID, rec.AttendanceRecordStudentID).
			Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if cerr := tx.Create(rec).Error; cerr != nil {
				if isUniqueViolation(cerr) {
					// Kalah race insert pasangan yang sama; caller retry operasi ini
					return errs.Conflict("record pasangan (session, student) baru saja dibuat proses lain")
				}
				return cerr
			}
			outcome = OutcomeCreated
			final = rec
		case err != nil:
			return err
		default:
			if existing.SupersededBy(rec.AttendanceRecordSource, rec.AttendanceRecordMarkedAt, rec.AttendanceRecordDeviceID) {
				updates := map[string]interface{}{
					"attendance_record_mark":      rec.AttendanceRecordMark,
					"attendance_record_marked_at": rec.AttendanceRecordMarkedAt,
					"attendance_record_source":    rec.AttendanceRecordSource,
					"attendance_record_device_id": rec.AttendanceRecordDeviceID,
				}
				if uerr := tx.Model(&model.AttendanceRecordModel{}).
					Where("attendance_record_id = ?", existing.AttendanceRecordID).
					Updates(updates).Error; uerr != nil {
					return uerr
				}
				updated := existing
				updated.AttendanceRecordMark = rec.AttendanceRecordMark
				updated.AttendanceRecordMarkedAt = rec.AttendanceRecordMarkedAt
				updated.AttendanceRecordSource = rec.AttendanceRecordSource
				updated.AttendanceRecordDeviceID = rec.AttendanceRecordDeviceID
				outcome = OutcomeUpdated
				final = &updated
			} else {
				// Existing menang prioritas (mis. manual vs qr): biarkan
				outcome = OutcomeKept
				final = &existing
			}
		}

		// 3) Audit di transaksi yang sama, satu entry per attempt
		if entry != nil {
			if outcome != OutcomeCreated {
				before := existing
				entry.AuditLogBefore = auditSvc.Snapshot(before)
			}
			entry.AuditLogAfter = auditSvc.Snapshot(final)
			if entry.AuditLogAction == "" {
				entry.AuditLogAction = "record." + string(outcome)
			}
			if aerr := tx.Create(entry).Error; aerr != nil {
				return aerr
			}
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return outcome, final, nil
}

func statusAllowed(status string, allowed []string) bool {
	for _, a := range allowed {
		if a == status {
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
