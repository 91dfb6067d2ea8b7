package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	auditModel "kampusku_backend/internals/features/attendance/audit/model"
	"kampusku_backend/internals/features/attendance/records/model"
	"kampusku_backend/internals/features/attendance/records/repository"
	sessModel "kampusku_backend/internals/features/attendance/sessions/model"
	"kampusku_backend/internals/helpers/errs"
)

/* =========================
   Fakes in-memory
========================= */

type fakeSessionReader struct {
	sessions map[uuid.UUID]*sessModel.AttendanceSessionModel
}

func (f *fakeSessionReader) GetByID(_ context.Context, id uuid.UUID) (*sessModel.AttendanceSessionModel, error) {
	sess, ok := f.sessions[id]
	if !ok {
		return nil, errs.NotFound("sesi tidak ditemukan")
	}
	cp := *sess
	return &cp, nil
}

func (f *fakeSessionReader) ListBySection(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]sessModel.AttendanceSessionModel, error) {
	return nil, nil
}

func (f *fakeSessionReader) UpsertGenerated(_ context.Context, _ []sessModel.AttendanceSessionModel) (int64, error) {
	return 0, nil
}

func (f *fakeSessionReader) DueForOpen(_ context.Context, _ time.Time, _ time.Duration, _ int) ([]sessModel.AttendanceSessionModel, error) {
	return nil, nil
}

func (f *fakeSessionReader) DueForClose(_ context.Context, _ time.Time, _ int) ([]sessModel.AttendanceSessionModel, error) {
	return nil, nil
}

func (f *fakeSessionReader) DueForLock(_ context.Context, _ time.Time, _ time.Duration, _ int) ([]sessModel.AttendanceSessionModel, error) {
	return nil, nil
}

func (f *fakeSessionReader) CASTransition(_ context.Context, _ uuid.UUID, _ string, _ int, _ map[string]interface{}) error {
	return nil
}

type recordPair struct {
	sessionID uuid.UUID
	studentID uuid.UUID
}

// fakeRecordStore meniru semantik store asli: status sesi dicek saat commit,
// precedence diputuskan lewat SupersededBy.
type fakeRecordStore struct {
	sessions *fakeSessionReader
	records  map[recordPair]*model.AttendanceRecordModel
	audits   []*auditModel.AuditLogEntryModel
}

func newFakeRecordStore(sessions *fakeSessionReader) *fakeRecordStore {
	return &fakeRecordStore{
		sessions: sessions,
		records:  map[recordPair]*model.AttendanceRecordModel{},
	}
}

func (f *fakeRecordStore) UpsertWithStatusCheck(_ context.Context, rec *model.AttendanceRecordModel,
	allowedStatuses []string, entry *auditModel.AuditLogEntryModel) (repository.UpsertOutcome, *model.AttendanceRecordModel, error) {

	sess, ok := f.sessions.sessions[rec.AttendanceRecordSessionID]
	if !ok {
		return "", nil, errs.NotFound("sesi tidak ditemukan")
	}
	allowed := false
	for _, a := range allowedStatuses {
		if a == sess.AttendanceSessionStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", nil, errs.State("sesi sudah " + sess.AttendanceSessionStatus + ", write ditolak")
	}

	key := recordPair{sessionID: rec.AttendanceRecordSessionID, studentID: rec.AttendanceRecordStudentID}
	var outcome repository.UpsertOutcome
	existing, found := f.records[key]
	switch {
	case !found:
		if rec.AttendanceRecordID == uuid.Nil {
			rec.AttendanceRecordID = uuid.New()
		}
		cp := *rec
		f.records[key] = &cp
		outcome = repository.OutcomeCreated
	case existing.SupersededBy(rec.AttendanceRecordSource, rec.AttendanceRecordMarkedAt, rec.AttendanceRecordDeviceID):
		existing.AttendanceRecordMark = rec.AttendanceRecordMark
		existing.AttendanceRecordMarkedAt = rec.AttendanceRecordMarkedAt
		existing.AttendanceRecordSource = rec.AttendanceRecordSource
		existing.AttendanceRecordDeviceID = rec.AttendanceRecordDeviceID
		outcome = repository.OutcomeUpdated
	default:
		outcome = repository.OutcomeKept
	}

	if entry != nil {
		if entry.AuditLogAction == "" {
			entry.AuditLogAction = "record." + string(outcome)
		}
		f.audits = append(f.audits, entry)
	}
	final := *f.records[key]
	return outcome, &final, nil
}

func (f *fakeRecordStore) GetBySessionStudent(_ context.Context, sessionID, studentID uuid.UUID) (*model.AttendanceRecordModel, error) {
	rec, ok := f.records[recordPair{sessionID: sessionID, studentID: studentID}]
	if !ok {
		return nil, errs.NotFound("record kehadiran tidak ditemukan")
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeRecordStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]model.AttendanceRecordModel, error) {
	var out []model.AttendanceRecordModel
	for key, rec := range f.records {
		if key.sessionID == sessionID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

type fakeEnrollment struct {
	pairs map[recordPair]bool
}

func (f *fakeEnrollment) enroll(studentID, sectionID uuid.UUID) {
	f.pairs[recordPair{sessionID: sectionID, studentID: studentID}] = true
}

func (f *fakeEnrollment) IsEnrolled(_ context.Context, studentID, sectionID uuid.UUID) (bool, error) {
	return f.pairs[recordPair{sessionID: sectionID, studentID: studentID}], nil
}

func (f *fakeEnrollment) ListStudentIDs(_ context.Context, sectionID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for pair, ok := range f.pairs {
		if ok && pair.sessionID == sectionID {
			ids = append(ids, pair.studentID)
		}
	}
	return ids, nil
}

/* =========================
   Harness
========================= */

type gatewayFixture struct {
	svc        *CaptureGatewayService
	sessions   *fakeSessionReader
	store      *fakeRecordStore
	enrollment *fakeEnrollment
	now        time.Time
	sessionID  uuid.UUID
	sectionID  uuid.UUID
	studentID  uuid.UUID
}

func newGatewayFixture(t *testing.T, status string) *gatewayFixture {
	t.Helper()
	fx := &gatewayFixture{
		sessions:   &fakeSessionReader{sessions: map[uuid.UUID]*sessModel.AttendanceSessionModel{}},
		enrollment: &fakeEnrollment{pairs: map[recordPair]bool{}},
		now:        time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		sessionID:  uuid.New(),
		sectionID:  uuid.New(),
		studentID:  uuid.New(),
	}
	fx.store = newFakeRecordStore(fx.sessions)
	fx.sessions.sessions[fx.sessionID] = &sessModel.AttendanceSessionModel{
		AttendanceSessionID:        fx.sessionID,
		AttendanceSessionSectionID: fx.sectionID,
		AttendanceSessionStartAt:   fx.now.Add(-time.Hour),
		AttendanceSessionEndAt:     fx.now.Add(40 * time.Minute),
		AttendanceSessionStatus:    status,
	}
	fx.enrollment.enroll(fx.studentID, fx.sectionID)

	fx.svc = NewCaptureGatewayService(fx.sessions, fx.store, fx.enrollment, 600, 7*24*time.Hour, nil).
		WithClock(func() time.Time { return fx.now })
	return fx
}

func (fx *gatewayFixture) capture(mark, source string, duration *int) (*CaptureResult, error) {
	return fx.svc.RecordAttendance(context.Background(), CaptureInput{
		SessionID:       fx.sessionID,
		StudentID:       fx.studentID,
		Mark:            mark,
		Source:          source,
		MarkedAt:        fx.now,
		DeviceID:        "device-1",
		Actor:           "tester",
		DurationSeconds: duration,
	})
}

func intp(v int) *int { return &v }

/* =========================
   Tests
========================= */

func TestRecordAttendanceRejectsNonOpenSession(t *testing.T) {
	for _, status := range []string{
		sessModel.SessionStatusScheduled,
		sessModel.SessionStatusClosed,
		sessModel.SessionStatusLocked,
		sessModel.SessionStatusCancelled,
	} {
		fx := newGatewayFixture(t, status)
		_, err := fx.capture(model.MarkPresent, model.SourceManual, nil)
		if !errs.IsKind(err, errs.KindState) {
			t.Errorf("capture ke sesi %s harus StateError, got %v", status, err)
		}
	}
}

func TestRecordAttendanceRejectsInvalidInput(t *testing.T) {
	fx := newGatewayFixture(t, sessModel.SessionStatusOpen)

	if _, err := fx.capture(model.MarkPresent, "sms", nil); !errs.IsKind(err, errs.KindValidation) {
		t.Errorf("source tidak dikenal harus ValidationError, got %v", err)
	}
	if _, err := fx.capture("hadir", model.SourceManual, nil); !errs.IsKind(err, errs.KindValidation) {
		t.Errorf("mark tidak dikenal harus ValidationError, got %v", err)
	}
	// Excused hanya lewat workflow koreksi
	if _, err := fx.capture(model.MarkExcused, model.SourceManual, nil); !errs.IsKind(err, errs.KindValidation) {
		t.Errorf("mark excused via capture harus ValidationError, got %v", err)
	}
}

func TestRecordAttendanceRejectsUnenrolledStudent(t *testing.T) {
	fx := newGatewayFixture(t, sessModel.SessionStatusOpen)
	fx.studentID = uuid.New() // bukan peserta section

	_, err := fx.capture(model.MarkPresent, model.SourceQR, nil)
	if !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("mahasiswa tidak terdaftar harus ValidationError, got %v", err)
	}
}

func TestDurationDowngradeAppliesToMachineSources(t *testing.T) {
	fx := newGatewayFixture(t, sessModel.SessionStatusOpen)

	// qr present dengan durasi < minimum → absent
	res, err := fx.capture(model.MarkPresent, model.SourceQR, intp(300))
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if res.Record.AttendanceRecordMark != model.MarkAbsent {
		t.Fatalf("mark = %s, want absent (durasi 300s < 600s)", res.Record.AttendanceRecordMark)
	}
}

func TestDurationDowngradeSkipsManualSource(t *testing.T) {
	fx := newGatewayFixture(t, sessModel.SessionStatusOpen)

	// manual = keputusan manusia eksplisit; durasi tidak menurunkan mark
	res, err := fx.capture(model.MarkPresent, model.SourceManual, intp(300))
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if res.Record.AttendanceRecordMark != model.MarkPresent {
		t.Fatalf("mark = %s, want present (manual bypass durasi)", res.Record.AttendanceRecordMark)
	}
}

func TestDurationAtMinimumIsNotDowngraded(t *testing.T) {
	fx := newGatewayFixture(t, sessModel.SessionStatusOpen)

	res, err := fx.capture(model.MarkPresent, model.SourceBiometric, intp(600))
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if res.Record.AttendanceRecordMark != model.MarkPresent {
		t.Fatalf("mark = %s, want present (durasi tepat di minimum)", res.Record.AttendanceRecordMark)
	}
}

func TestQRDoesNotOverwriteManualRecord(t *testing.T) {
	fx := newGatewayFixture(t, sessModel.SessionStatusOpen)

	// Dosen sudah menandai absent secara manual
	if _, err := fx.capture(model.MarkAbsent, model.SourceManual, nil); err != nil {
		t.Fatalf("capture manual: %v", err)
	}

	// Scan QR datang belakangan — tidak boleh menimpa
	fx.now = fx.now.Add(5 * time.Minute)
	res, err := fx.capture(model.MarkPresent, model.SourceQR, nil)
	if err != nil {
		t.Fatalf("capture qr: %v", err)
	}
	if res.Outcome != repository.OutcomeKept {
		t.Fatalf("outcome = %s, want kept", res.Outcome)
	}
	if res.Record.AttendanceRecordMark != model.MarkAbsent || res.Record.AttendanceRecordSource != model.SourceManual {
		t.Fatal("record manual harus tetap utuh")
	}
}

func TestManualOverwritesQRRecord(t *testing.T) {
	fx := newGatewayFixture(t, sessModel.SessionStatusOpen)

	if _, err := fx.capture(model.MarkPresent, model.SourceQR, nil); err != nil {
		t.Fatalf("capture qr: %v", err)
	}
	res, err := fx.capture(model.MarkLate, model.SourceManual, nil)
	if err != nil {
		t.Fatalf("capture manual: %v", err)
	}
	if res.Outcome != repository.OutcomeUpdated {
		t.Fatalf("outcome = %s, want updated", res.Outcome)
	}
	if res.Record.AttendanceRecordMark != model.MarkLate {
		t.Fatalf("mark = %s, want late", res.Record.AttendanceRecordMark)
	}
}

func TestEveryCaptureAttemptIsAudited(t *testing.T) {
	fx := newGatewayFixture(t, sessModel.SessionStatusOpen)

	_, _ = fx.capture(model.MarkAbsent, model.SourceManual, nil)
	_, _ = fx.capture(model.MarkPresent, model.SourceQR, nil) // kept, tetap diaudit

	if len(fx.store.audits) != 2 {
		t.Fatalf("audit entries = %d, want 2 (termasuk attempt yang kept)", len(fx.store.audits))
	}
	if fx.store.audits[1].AuditLogAction != "record.kept" {
		t.Fatalf("audit kedua action = %s, want record.kept", fx.store.audits[1].AuditLogAction)
	}
}

/* =========================
   Excused override
========================= */

func TestExcusedOverrideOnlyForClosedOrLocked(t *testing.T) {
	fx := newGatewayFixture(t, sessModel.SessionStatusOpen)
	_, err := fx.svc.ApplyExcusedOverride(context.Background(), fx.sessionID, fx.studentID, "sakit", "admin-1")
	if !errs.IsKind(err, errs.KindState) {
		t.Fatalf("excused override pada sesi open harus StateError, got %v", err)
	}
}

func TestExcusedOverrideWithinCorrectionWindow(t *testing.T) {
	fx := newGatewayFixture(t, sessModel.SessionStatusClosed)
	fx.now = fx.now.Add(48 * time.Hour) // 2 hari setelah sesi, window 7 hari

	res, err := fx.svc.ApplyExcusedOverride(context.Background(), fx.sessionID, fx.studentID, "surat dokter", "admin-1")
	if err != nil {
		t.Fatalf("ApplyExcusedOverride: %v", err)
	}
	if res.Record.AttendanceRecordMark != model.MarkExcused {
		t.Fatalf("mark = %s, want excused", res.Record.AttendanceRecordMark)
	}
	if res.Record.AttendanceRecordSource != model.SourceManual {
		t.Fatal("override harus tercatat dengan prioritas manual")
	}
	if fx.store.audits[len(fx.store.audits)-1].AuditLogAction != "record.excused_override" {
		t.Fatal("audit action harus record.excused_override")
	}
}

func TestExcusedOverrideRejectedAfterWindow(t *testing.T) {
	fx := newGatewayFixture(t, sessModel.SessionStatusLocked)
	fx.now = fx.now.Add(8 * 24 * time.Hour) // lewat window 7 hari

	_, err := fx.svc.ApplyExcusedOverride(context.Background(), fx.sessionID, fx.studentID, "terlambat lapor", "admin-1")
	if !errs.IsKind(err, errs.KindState) {
		t.Fatalf("override setelah window harus StateError, got %v", err)
	}
}

func TestExcusedOverrideRequiresReason(t *testing.T) {
	fx := newGatewayFixture(t, sessModel.SessionStatusClosed)
	_, err := fx.svc.ApplyExcusedOverride(context.Background(), fx.sessionID, fx.studentID, "", "admin-1")
	if !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("override tanpa reason harus ValidationError, got %v", err)
	}
}
