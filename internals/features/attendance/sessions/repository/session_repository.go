package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kampusku_backend/internals/features/attendance/sessions/model"
	"kampusku_backend/internals/helpers/errs"
)

type SessionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.AttendanceSessionModel, error)
	ListBySection(ctx context.Context, sectionID uuid.UUID, from, to time.Time) ([]model.AttendanceSessionModel, error)

	// UpsertGenerated: insert batch hasil generate; bentrok natural key = skip (idempoten).
	// Return jumlah baris yang benar-benar baru.
	UpsertGenerated(ctx context.Context, sessions []model.AttendanceSessionModel) (int64, error)

	// Kandidat sweep. Limit mencegah satu tick memborong semuanya.
	DueForOpen(ctx context.Context, now time.Time, grace time.Duration, limit int) ([]model.AttendanceSessionModel, error)
	DueForClose(ctx context.Context, now time.Time, limit int) ([]model.AttendanceSessionModel, error)
	DueForLock(ctx context.Context, now time.Time, window time.Duration, limit int) ([]model.AttendanceSessionModel, error)

	// CASTransition: conditional update WHERE status=from AND version=v.
	// 0 baris ter-update = kalah race → errs.Conflict; caller yang memutuskan no-op atau retry.
	CASTransition(ctx context.Context, id uuid.UUID, fromStatus string, version int, updates map[string]interface{}) error
}

type sessionRepo struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.AttendanceSessionModel, error) {
	var m model.AttendanceSessionModel
	err := r.db.WithContext(ctx).
		Where("attendance_session_id = ?", id).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("sesi tidak ditemukan")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *sessionRepo) ListBySection(ctx context.Context, sectionID uuid.UUID, from, to time.Time) ([]model.AttendanceSessionModel, error) {
	var out []model.AttendanceSessionModel
	q := r.db.WithContext(ctx).
		Where("attendance_session_section_id = ?", sectionID)
	if !from.IsZero() {
		q = q.Where("attendance_session_date >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("attendance_session_date <= ?", to)
	}
	err := q.Order("attendance_session_start_at ASC").Find(&out).Error
	return out, err
}

func (r *sessionRepo) UpsertGenerated(ctx context.Context, sessions []model.AttendanceSessionModel) (int64, error) {
	if len(sessions) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "attendance_session_section_id"},
				{Name: "attendance_session_date"},
				{Name: "attendance_session_start_at"},
			},
			DoNothing: true,
		}).
		Create(&sessions)
	return res.RowsAffected, res.Error
}

func (r *sessionRepo) DueForOpen(ctx context.Context, now time.Time, grace time.Duration, limit int) ([]model.AttendanceSessionModel, error) {
	var out []model.AttendanceSessionModel
	err := r.db.WithContext(ctx).
		Where("attendance_session_status = ?", model.SessionStatusScheduled).
		Where("attendance_session_start_at <= ?", now.Add(grace)).
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *sessionRepo) DueForClose(ctx context.Context, now time.Time, limit int) ([]model.AttendanceSessionModel, error) {
	var out []model.AttendanceSessionModel
	err := r.db.WithContext(ctx).
		Where("attendance_session_status = ?", model.SessionStatusOpen).
		Where("attendance_session_end_at <= ?", now).
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *sessionRepo) DueForLock(ctx context.Context, now time.Time, window time.Duration, limit int) ([]model.AttendanceSessionModel, error) {
	var out []model.AttendanceSessionModel
	err := r.db.WithContext(ctx).
		Where("attendance_session_status = ?", model.SessionStatusClosed).
		Where("attendance_session_end_at <= ?", now.Add(-window)).
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *sessionRepo) CASTransition(ctx context.Context, id uuid.UUID, fromStatus string, version int, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&model.AttendanceSessionModel{}).
		Where("attendance_session_id = ? AND attendance_session_status = ? AND attendance_session_version = ?",
			id, fromStatus, version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.Conflict("transisi kalah race, status sesi sudah berubah")
	}
	return nil
}
