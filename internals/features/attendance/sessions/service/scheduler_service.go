// file: internals/features/attendance/sessions/service/scheduler_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	periodRepo "kampusku_backend/internals/features/academics/academic_periods/repository"
	calRepo "kampusku_backend/internals/features/academics/calendar/repository"
	slotModel "kampusku_backend/internals/features/academics/timetable/model"
	auditModel "kampusku_backend/internals/features/attendance/audit/model"
	auditSvc "kampusku_backend/internals/features/attendance/audit/service"
	"kampusku_backend/internals/features/attendance/sessions/model"
	"kampusku_backend/internals/features/attendance/sessions/repository"
	"kampusku_backend/internals/features/attendance/statistics/queue"
	"kampusku_backend/internals/helpers/errs"
)

// TokenRevoker: dipenuhi TokenIssuer; interface tipis supaya service ini
// bisa dites tanpa JWT/redis.
type TokenRevoker interface {
	RevokeSession(ctx context.Context, sessionID uuid.UUID) error
}

const sweepBatchLimit = 200

// SchedulerService: state machine sesi + generator + sweep.
// Semua transisi lewat conditional update (status, version) — aman dijalankan
// dari banyak instance sekaligus; yang kalah race dapat no-op, bukan error.
type SchedulerService struct {
	Sessions repository.SessionRepository
	Periods  periodRepo.AcademicPeriodRepository
	Holidays calRepo.HolidayCalendar
	Tokens   TokenRevoker
	Stats    queue.Queue
	Audit    auditSvc.AuditWriter

	GracePeriod      time.Duration
	CorrectionWindow time.Duration

	Log *logrus.Logger
	now func() time.Time
}

func NewSchedulerService(
	sessions repository.SessionRepository,
	periods periodRepo.AcademicPeriodRepository,
	holidays calRepo.HolidayCalendar,
	tokens TokenRevoker,
	stats queue.Queue,
	audit auditSvc.AuditWriter,
	grace, correctionWindow time.Duration,
	log *logrus.Logger,
) *SchedulerService {
	return &SchedulerService{
		Sessions:         sessions,
		Periods:          periods,
		Holidays:         holidays,
		Tokens:           tokens,
		Stats:            stats,
		Audit:            audit,
		GracePeriod:      grace,
		CorrectionWindow: correctionWindow,
		Log:              log,
		now:              time.Now,
	}
}

func (s *SchedulerService) WithClock(now func() time.Time) *SchedulerService {
	s.now = now
	return s
}

/* =========================
   Generate
========================= */

// GenerateSessions: satu sesi per tanggal kalender dalam range yang cocok
// weekday slot dan bukan hari libur. Idempoten pada natural key
// (section_id, date, start_at): re-run tidak menduplikasi.
func (s *SchedulerService) GenerateSessions(ctx context.Context, slot *slotModel.TimetableSlotModel, from, to time.Time) (int64, error) {
	if to.Before(from) {
		return 0, errs.Validation("range tanggal tidak valid")
	}

	var batch []model.AttendanceSessionModel
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if int(d.Weekday()) != slot.TimetableSlotWeekday {
			continue
		}
		holiday, err := s.Holidays.IsHoliday(ctx, d)
		if err != nil {
			return 0, err
		}
		if holiday {
			continue
		}
		period, err := s.Periods.GetByDate(ctx, d)
		if err != nil {
			if errs.IsKind(err, errs.KindNotFound) {
				// di luar periode akademik (libur antar semester): skip
				continue
			}
			return 0, err
		}

		batch = append(batch, model.AttendanceSessionModel{
			AttendanceSessionSectionID: slot.TimetableSlotSectionID,
			AttendanceSessionFacultyID: slot.TimetableSlotFacultyID,
			AttendanceSessionPeriodID:  period.AcademicPeriodID,
			AttendanceSessionDate:      d,
			AttendanceSessionStartAt:   slot.StartOn(d),
			AttendanceSessionEndAt:     slot.EndOn(d),
			AttendanceSessionRoom:      slot.TimetableSlotRoom,
			AttendanceSessionStatus:    model.SessionStatusScheduled,
		})
	}

	created, err := s.Sessions.UpsertGenerated(ctx, batch)
	if err != nil {
		return 0, err
	}
	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"section_id": slot.TimetableSlotSectionID,
			"candidates": len(batch),
			"created":    created,
		}).Info("sessions generated")
	}
	return created, nil
}

/* =========================
   Transisi manual
========================= */

// Close: Open→Closed lebih awal oleh dosen (atau dipanggil sweep saat end_at lewat).
func (s *SchedulerService) Close(ctx context.Context, id uuid.UUID, actor string) error {
	sess, err := s.Sessions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.close(ctx, sess, actor)
}

// Cancel: Scheduled/Open→Cancelled. Reason wajib; token yang beredar di-denylist
// supaya capture in-flight gagal StateError, bukan diam-diam sukses.
func (s *SchedulerService) Cancel(ctx context.Context, id uuid.UUID, reason, actor string) error {
	if reason == "" {
		return errs.Validation("reason wajib diisi saat cancel sesi")
	}
	sess, err := s.Sessions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	err = s.transition(ctx, sess, model.SessionStatusCancelled, map[string]interface{}{
		"attendance_session_cancel_reason": reason,
	}, actor)
	if err != nil {
		return err
	}
	if s.Tokens != nil {
		if terr := s.Tokens.RevokeSession(ctx, id); terr != nil && s.Log != nil {
			s.Log.WithError(terr).Warn("revoke token sesi gagal setelah cancel")
		}
	}
	return nil
}

// Lock: Closed→Locked eksplisit oleh admin (tanpa menunggu correction window).
func (s *SchedulerService) Lock(ctx context.Context, id uuid.UUID, actor string) error {
	sess, err := s.Sessions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	now := s.now()
	return s.transition(ctx, sess, model.SessionStatusLocked, map[string]interface{}{
		"attendance_session_locked_at": now,
	}, actor)
}

/* =========================
   Sweep (auto-transisi)
========================= */

type SweepReport struct {
	Opened int `json:"opened"`
	Closed int `json:"closed"`
	Locked int `json:"locked"`
	Failed int `json:"failed"`
}

// Sweep: jalan tiap interval, boleh dari banyak worker sekaligus.
// Tiap sesi diproses terpisah; satu gagal tidak memblokir yang lain.
func (s *SchedulerService) Sweep(ctx context.Context, now time.Time) SweepReport {
	var report SweepReport

	open, err := s.Sessions.DueForOpen(ctx, now, s.GracePeriod, sweepBatchLimit)
	if err != nil {
		s.logSweepErr("due-for-open", err)
		report.Failed++
	}
	for i := range open {
		if terr := s.transition(ctx, &open[i], model.SessionStatusOpen, nil, "sweeper"); terr != nil {
			report.Failed++
			s.logSweepErr("open", terr)
			continue
		}
		report.Opened++
	}

	closeDue, err := s.Sessions.DueForClose(ctx, now, sweepBatchLimit)
	if err != nil {
		s.logSweepErr("due-for-close", err)
		report.Failed++
	}
	for i := range closeDue {
		if terr := s.close(ctx, &closeDue[i], "sweeper"); terr != nil {
			report.Failed++
			s.logSweepErr("close", terr)
			continue
		}
		report.Closed++
	}

	lockDue, err := s.Sessions.DueForLock(ctx, now, s.CorrectionWindow, sweepBatchLimit)
	if err != nil {
		s.logSweepErr("due-for-lock", err)
		report.Failed++
	}
	for i := range lockDue {
		if terr := s.transition(ctx, &lockDue[i], model.SessionStatusLocked, map[string]interface{}{
			"attendance_session_locked_at": now,
		}, "sweeper"); terr != nil {
			report.Failed++
			s.logSweepErr("lock", terr)
			continue
		}
		report.Locked++
	}

	return report
}

/* =========================
   Internal
========================= */

func (s *SchedulerService) close(ctx context.Context, sess *model.AttendanceSessionModel, actor string) error {
	now := s.now()
	if err := s.transition(ctx, sess, model.SessionStatusClosed, map[string]interface{}{
		"attendance_session_closed_at": now,
	}, actor); err != nil {
		return err
	}
	// Publish event recompute SETELAH transisi sukses — bukan hook tersembunyi.
	if s.Stats != nil {
		job := queue.RecomputeJob{
			SessionID: sess.AttendanceSessionID,
			SectionID: sess.AttendanceSessionSectionID,
			PeriodID:  sess.AttendanceSessionPeriodID,
		}
		if qerr := s.Stats.Enqueue(ctx, job); qerr != nil && s.Log != nil {
			// Statistik eventual-consistent; gagal enqueue tidak membatalkan close
			s.Log.WithError(qerr).Warn("enqueue recompute gagal")
		}
	}
	return nil
}

func (s *SchedulerService) transition(ctx context.Context, sess *model.AttendanceSessionModel, to string, extra map[string]interface{}, actor string) error {
	from := sess.AttendanceSessionStatus
	if !model.CanTransition(from, to) {
		return errs.State("transisi " + from + " → " + to + " tidak diizinkan")
	}

	updates := map[string]interface{}{
		"attendance_session_status":  to,
		"attendance_session_version": sess.AttendanceSessionVersion + 1,
	}
	for k, v := range extra {
		updates[k] = v
	}

	err := s.Sessions.CASTransition(ctx, sess.AttendanceSessionID, from, sess.AttendanceSessionVersion, updates)
	if err != nil {
		if errs.IsKind(err, errs.KindConflict) {
			// Double-fire sweep: kalau proses lain sudah mendaratkan status target,
			// yang kalah cukup no-op.
			cur, gerr := s.Sessions.GetByID(ctx, sess.AttendanceSessionID)
			if gerr == nil && cur.AttendanceSessionStatus == to {
				return nil
			}
		}
		return err
	}

	if s.Audit != nil {
		entry := &auditModel.AuditLogEntryModel{
			AuditLogEntityType:    "attendance_session",
			AuditLogEntityID:      sess.AttendanceSessionID.String(),
			AuditLogAction:        "session." + to,
			AuditLogActor:         actor,
			AuditLogBefore:        auditSvc.Snapshot(map[string]any{"status": from, "version": sess.AttendanceSessionVersion}),
			AuditLogAfter:         auditSvc.Snapshot(map[string]any{"status": to, "version": sess.AttendanceSessionVersion + 1}),
			AuditLogCorrelationID: sess.AttendanceSessionID.String(),
		}
		if aerr := s.Audit.Append(ctx, nil, entry); aerr != nil && s.Log != nil {
			s.Log.WithError(aerr).Warn("audit transisi sesi gagal")
		}
	}

	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"session_id": sess.AttendanceSessionID,
			"from":       from,
			"to":         to,
			"actor":      actor,
		}).Info("session transitioned")
	}
	return nil
}

func (s *SchedulerService) logSweepErr(phase string, err error) {
	if s.Log != nil {
		s.Log.WithError(err).WithField("phase", phase).Error("sweep error")
	}
}
