// file: internals/features/attendance/records/service/capture_gateway_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	enrollRepo "kampusku_backend/internals/features/academics/enrollments/repository"
	auditModel "kampusku_backend/internals/features/attendance/audit/model"
	"kampusku_backend/internals/features/attendance/records/model"
	"kampusku_backend/internals/features/attendance/records/repository"
	sessModel "kampusku_backend/internals/features/attendance/sessions/model"
	sessRepo "kampusku_backend/internals/features/attendance/sessions/repository"
	"kampusku_backend/internals/helpers/errs"
)

// CaptureGatewayService: pintu masuk TUNGGAL semua mark kehadiran,
// apapun sumbernya (manual, qr, biometric; offline lewat resolver yang
// tetap menulis lewat store yang sama).
type CaptureGatewayService struct {
	Sessions   sessRepo.SessionRepository
	Store      repository.RecordStore
	Enrollment enrollRepo.EnrollmentRegistry

	MinPresenceSeconds int
	CorrectionWindow   time.Duration

	Log *logrus.Logger
	now func() time.Time
}

func NewCaptureGatewayService(
	sessions sessRepo.SessionRepository,
	store repository.RecordStore,
	enrollment enrollRepo.EnrollmentRegistry,
	minPresenceSeconds int,
	correctionWindow time.Duration,
	log *logrus.Logger,
) *CaptureGatewayService {
	return &CaptureGatewayService{
		Sessions:           sessions,
		Store:              store,
		Enrollment:         enrollment,
		MinPresenceSeconds: minPresenceSeconds,
		CorrectionWindow:   correctionWindow,
		Log:                log,
		now:                time.Now,
	}
}

func (s *CaptureGatewayService) WithClock(now func() time.Time) *CaptureGatewayService {
	s.now = now
	return s
}

type CaptureInput struct {
	SessionID uuid.UUID
	StudentID uuid.UUID
	Mark      string
	Source    string
	MarkedAt  time.Time
	DeviceID  string
	Actor     string
	// DurationSeconds: durasi kehadiran terukur (nil kalau channel tidak mengukur)
	DurationSeconds *int
}

type CaptureResult struct {
	Outcome repository.UpsertOutcome         `json:"outcome"`
	Record  *model.AttendanceRecordModel     `json:"record"`
}

// RecordAttendance: validasi → (mungkin) downgrade durasi → upsert transaksional
// dengan recheck status Open saat commit + audit entry per attempt.
func (s *CaptureGatewayService) RecordAttendance(ctx context.Context, in CaptureInput) (*CaptureResult, error) {
	if !model.ValidSource(in.Source) {
		return nil, errs.Validation("source tidak dikenal: " + in.Source)
	}
	if !model.ValidMark(in.Mark) {
		return nil, errs.Validation("mark tidak dikenal: " + in.Mark)
	}
	if in.Mark == model.MarkExcused {
		// Excused hanya lewat workflow koreksi/izin pada sesi Closed/Locked
		return nil, errs.Validation("mark excused tidak boleh lewat jalur capture")
	}
	if in.MarkedAt.IsZero() {
		in.MarkedAt = s.now()
	}

	sess, err := s.Sessions.GetByID(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if !sess.IsOpen() {
		return nil, errs.State("sesi sudah " + sess.AttendanceSessionStatus + ", bukan open")
	}

	enrolled, err := s.Enrollment.IsEnrolled(ctx, in.StudentID, sess.AttendanceSessionSectionID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, errs.Validation("mahasiswa tidak terdaftar di section sesi ini")
	}

	// Aturan durasi: present turun jadi absent kalau durasi < minimum,
	// KECUALI source manual (keputusan manusia eksplisit, trusted).
	mark := in.Mark
	if mark == model.MarkPresent && in.Source != model.SourceManual &&
		in.DurationSeconds != nil && *in.DurationSeconds < s.MinPresenceSeconds {
		mark = model.MarkAbsent
	}

	rec := &model.AttendanceRecordModel{
		AttendanceRecordSessionID: in.SessionID,
		AttendanceRecordStudentID: in.StudentID,
		AttendanceRecordMark:      mark,
		AttendanceRecordMarkedAt:  in.MarkedAt,
		AttendanceRecordSource:    in.Source,
		AttendanceRecordDeviceID:  in.DeviceID,
	}

	outcome, final, err := s.Store.UpsertWithStatusCheck(ctx, rec,
		[]string{sessModel.SessionStatusOpen},
		s.auditEntry(in.SessionID, in.StudentID, in.Source, in.Actor))
	if err != nil {
		return nil, err
	}

	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"session_id": in.SessionID,
			"student_id": in.StudentID,
			"source":     in.Source,
			"mark":       final.AttendanceRecordMark,
			"outcome":    outcome,
		}).Info("attendance recorded")
	}
	return &CaptureResult{Outcome: outcome, Record: final}, nil
}

// ApplyExcusedOverride: satu-satunya jalur mark excused. Hanya sesi Closed/Locked
// dan masih di dalam correction window; hasil approval workflow izin eksternal.
func (s *CaptureGatewayService) ApplyExcusedOverride(ctx context.Context, sessionID, studentID uuid.UUID, reason, actor string) (*CaptureResult, error) {
	if reason == "" {
		return nil, errs.Validation("reason wajib diisi untuk excused override")
	}

	sess, err := s.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.AttendanceSessionStatus != sessModel.SessionStatusClosed &&
		sess.AttendanceSessionStatus != sessModel.SessionStatusLocked {
		return nil, errs.State("excused override hanya untuk sesi closed/locked")
	}
	if !sess.InCorrectionWindow(s.now(), s.CorrectionWindow) {
		return nil, errs.State("correction window sudah lewat")
	}

	enrolled, err := s.Enrollment.IsEnrolled(ctx, studentID, sess.AttendanceSessionSectionID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, errs.Validation("mahasiswa tidak terdaftar di section sesi ini")
	}

	rec := &model.AttendanceRecordModel{
		AttendanceRecordSessionID: sessionID,
		AttendanceRecordStudentID: studentID,
		AttendanceRecordMark:      model.MarkExcused,
		AttendanceRecordMarkedAt:  s.now(),
		// Override datang dari workflow manusia; pakai prioritas manual
		AttendanceRecordSource:   model.SourceManual,
		AttendanceRecordDeviceID: "correction-workflow",
	}

	entry := s.auditEntry(sessionID, studentID, model.SourceManual, actor)
	entry.AuditLogAction = "record.excused_override"

	outcome, final, err := s.Store.UpsertWithStatusCheck(ctx, rec,
		[]string{sessModel.SessionStatusClosed, sessModel.SessionStatusLocked}, entry)
	if err != nil {
		return nil, err
	}
	return &CaptureResult{Outcome: outcome, Record: final}, nil
}

func (s *CaptureGatewayService) auditEntry(sessionID, studentID uuid.UUID, source, actor string) *auditModel.AuditLogEntryModel {
	if actor == "" {
		actor = "system"
	}
	return &auditModel.AuditLogEntryModel{
		AuditLogEntityType:    "attendance_record",
		AuditLogEntityID:      sessionID.String() + ":" + studentID.String(),
		AuditLogActor:         actor,
		AuditLogSource:        source,
		AuditLogCorrelationID: sessionID.String() + ":" + studentID.String(),
	}
}
