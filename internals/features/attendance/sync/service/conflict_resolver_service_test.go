package service

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	auditModel "kampusku_backend/internals/features/attendance/audit/model"
	recModel "kampusku_backend/internals/features/attendance/records/model"
	recRepo "kampusku_backend/internals/features/attendance/records/repository"
	sessModel "kampusku_backend/internals/features/attendance/sessions/model"
	"kampusku_backend/internals/features/attendance/sync/dto"
	"kampusku_backend/internals/features/attendance/sync/model"
	"kampusku_backend/internals/helpers/errs"
)

/* =========================
   Fakes in-memory
========================= */

type fakeSessions struct {
	sessions map[uuid.UUID]*sessModel.AttendanceSessionModel
}

func (f *fakeSessions) GetByID(_ context.Context, id uuid.UUID) (*sessModel.AttendanceSessionModel, error) {
	sess, ok := f.sessions[id]
	if !ok {
		return nil, errs.NotFound("sesi tidak ditemukan")
	}
	cp := *sess
	return &cp, nil
}

func (f *fakeSessions) ListBySection(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]sessModel.AttendanceSessionModel, error) {
	return nil, nil
}

func (f *fakeSessions) UpsertGenerated(_ context.Context, _ []sessModel.AttendanceSessionModel) (int64, error) {
	return 0, nil
}

func (f *fakeSessions) DueForOpen(_ context.Context, _ time.Time, _ time.Duration, _ int) ([]sessModel.AttendanceSessionModel, error) {
	return nil, nil
}

func (f *fakeSessions) DueForClose(_ context.Context, _ time.Time, _ int) ([]sessModel.AttendanceSessionModel, error) {
	return nil, nil
}

func (f *fakeSessions) DueForLock(_ context.Context, _ time.Time, _ time.Duration, _ int) ([]sessModel.AttendanceSessionModel, error) {
	return nil, nil
}

func (f *fakeSessions) CASTransition(_ context.Context, _ uuid.UUID, _ string, _ int, _ map[string]interface{}) error {
	return nil
}

type pair struct {
	sessionID uuid.UUID
	studentID uuid.UUID
}

type fakeStore struct {
	sessions *fakeSessions
	records  map[pair]*recModel.AttendanceRecordModel
}

func (f *fakeStore) UpsertWithStatusCheck(_ context.Context, rec *recModel.AttendanceRecordModel,
	allowedStatuses []string, _ *auditModel.AuditLogEntryModel) (recRepo.UpsertOutcome, *recModel.AttendanceRecordModel, error) {

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

	key := pair{sessionID: rec.AttendanceRecordSessionID, studentID: rec.AttendanceRecordStudentID}
	existing, found := f.records[key]
	var outcome recRepo.UpsertOutcome
	switch {
	case !found:
		cp := *rec
		cp.AttendanceRecordID = uuid.New()
		f.records[key] = &cp
		outcome = recRepo.OutcomeCreated
	case existing.SupersededBy(rec.AttendanceRecordSource, rec.AttendanceRecordMarkedAt, rec.AttendanceRecordDeviceID):
		existing.AttendanceRecordMark = rec.AttendanceRecordMark
		existing.AttendanceRecordMarkedAt = rec.AttendanceRecordMarkedAt
		existing.AttendanceRecordSource = rec.AttendanceRecordSource
		existing.AttendanceRecordDeviceID = rec.AttendanceRecordDeviceID
		outcome = recRepo.OutcomeUpdated
	default:
		outcome = recRepo.OutcomeKept
	}
	final := *f.records[key]
	return outcome, &final, nil
}

func (f *fakeStore) GetBySessionStudent(_ context.Context, sessionID, studentID uuid.UUID) (*recModel.AttendanceRecordModel, error) {
	rec, ok := f.records[pair{sessionID: sessionID, studentID: studentID}]
	if !ok {
		return nil, errs.NotFound("record kehadiran tidak ditemukan")
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]recModel.AttendanceRecordModel, error) {
	var out []recModel.AttendanceRecordModel
	for k, rec := range f.records {
		if k.sessionID == sessionID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

type fakeConflicts struct {
	conflicts map[uuid.UUID]*model.SyncConflictModel
}

func (f *fakeConflicts) Create(_ context.Context, c *model.SyncConflictModel) error {
	if c.SyncConflictID == uuid.Nil {
		c.SyncConflictID = uuid.New()
	}
	cp := *c
	f.conflicts[c.SyncConflictID] = &cp
	return nil
}

func (f *fakeConflicts) GetByID(_ context.Context, id uuid.UUID) (*model.SyncConflictModel, error) {
	c, ok := f.conflicts[id]
	if !ok {
		return nil, errs.NotFound("sync conflict tidak ditemukan")
	}
	cp := *c
	return &cp, nil
}

func (f *fakeConflicts) ListPending(_ context.Context) ([]model.SyncConflictModel, error) {
	var out []model.SyncConflictModel
	for _, c := range f.conflicts {
		if c.SyncConflictStatus == model.SyncConflictStatusPending {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeConflicts) MarkResolved(_ context.Context, id uuid.UUID) error {
	c, ok := f.conflicts[id]
	if !ok || c.SyncConflictStatus != model.SyncConflictStatusPending {
		return errs.Conflict("sync conflict sudah diresolve atau tidak ditemukan")
	}
	c.SyncConflictStatus = model.SyncConflictStatusResolved
	now := time.Now()
	c.SyncConflictResolvedAt = &now
	return nil
}

type fakeEnrollments struct {
	pairs map[pair]bool
}

func (f *fakeEnrollments) IsEnrolled(_ context.Context, studentID, sectionID uuid.UUID) (bool, error) {
	return f.pairs[pair{sessionID: sectionID, studentID: studentID}], nil
}

func (f *fakeEnrollments) ListStudentIDs(_ context.Context, sectionID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for p, ok := range f.pairs {
		if ok && p.sessionID == sectionID {
			ids = append(ids, p.studentID)
		}
	}
	return ids, nil
}

/* =========================
   Harness
========================= */

type resolverFixture struct {
	svc       *ConflictResolverService
	sessions  *fakeSessions
	store     *fakeStore
	conflicts *fakeConflicts
	now       time.Time
	sessionID uuid.UUID
	sectionID uuid.UUID
	studentID uuid.UUID
	endAt     time.Time
}

func newResolverFixture(t *testing.T, status string) *resolverFixture {
	t.Helper()
	fx := &resolverFixture{
		sessions:  &fakeSessions{sessions: map[uuid.UUID]*sessModel.AttendanceSessionModel{}},
		conflicts: &fakeConflicts{conflicts: map[uuid.UUID]*model.SyncConflictModel{}},
		now:       time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		sessionID: uuid.New(),
		sectionID: uuid.New(),
		studentID: uuid.New(),
	}
	fx.store = &fakeStore{sessions: fx.sessions, records: map[pair]*recModel.AttendanceRecordModel{}}
	fx.endAt = fx.now.Add(-time.Hour)
	fx.sessions.sessions[fx.sessionID] = &sessModel.AttendanceSessionModel{
		AttendanceSessionID:        fx.sessionID,
		AttendanceSessionSectionID: fx.sectionID,
		AttendanceSessionStartAt:   fx.endAt.Add(-100 * time.Minute),
		AttendanceSessionEndAt:     fx.endAt,
		AttendanceSessionStatus:    status,
	}
	enr := &fakeEnrollments{pairs: map[pair]bool{
		{sessionID: fx.sectionID, studentID: fx.studentID}: true,
	}}
	fx.svc = NewConflictResolverService(fx.sessions, fx.store, fx.conflicts, enr, 2*time.Hour, nil).
		WithClock(func() time.Time { return fx.now })
	return fx
}

func (fx *resolverFixture) event(mark, source, device string, at time.Time) dto.OfflineEventInput {
	return dto.OfflineEventInput{
		SessionID:       fx.sessionID,
		StudentID:       fx.studentID,
		Mark:            mark,
		Source:          source,
		ClientTimestamp: at,
		DeviceID:        device,
	}
}

func (fx *resolverFixture) record() *recModel.AttendanceRecordModel {
	rec, ok := fx.store.records[pair{sessionID: fx.sessionID, studentID: fx.studentID}]
	if !ok {
		return nil
	}
	return rec
}

/* =========================
   Tests
========================= */

func TestBatchLaterTimestampWins(t *testing.T) {
	fx := newResolverFixture(t, sessModel.SessionStatusClosed)
	t1 := fx.endAt.Add(-30 * time.Minute)
	t2 := fx.endAt.Add(-10 * time.Minute)

	results := fx.svc.ResolveBatch(context.Background(), []dto.OfflineEventInput{
		fx.event(recModel.MarkPresent, recModel.SourceOffline, "device-a", t1),
		fx.event(recModel.MarkAbsent, recModel.SourceOffline, "device-b", t2),
	}, "sync-agent")

	if results[0].Status != dto.EventStatusSuperseded {
		t.Errorf("event lebih tua status = %s, want superseded", results[0].Status)
	}
	if results[1].Status != dto.EventStatusApplied {
		t.Errorf("event lebih baru status = %s, want applied", results[1].Status)
	}
	rec := fx.record()
	if rec == nil || rec.AttendanceRecordMark != recModel.MarkAbsent {
		t.Fatal("record final harus absent (timestamp lebih baru menang)")
	}
}

func TestBatchResultIsOrderIndependent(t *testing.T) {
	base := []struct {
		mark, source, device string
		offset               time.Duration
	}{
		{recModel.MarkPresent, recModel.SourceOffline, "device-a", -40 * time.Minute},
		{recModel.MarkLate, recModel.SourceQR, "kiosk-1", -35 * time.Minute},
		{recModel.MarkAbsent, recModel.SourceOffline, "device-b", -5 * time.Minute},
	}

	type eventKey struct {
		mark, device string
	}
	var wantMark string
	var wantStatuses map[eventKey]string

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 6; trial++ {
		fx := newResolverFixture(t, sessModel.SessionStatusClosed)
		order := rng.Perm(len(base))

		events := make([]dto.OfflineEventInput, 0, len(base))
		for _, i := range order {
			events = append(events, fx.event(base[i].mark, base[i].source, base[i].device, fx.endAt.Add(base[i].offset)))
		}
		results := fx.svc.ResolveBatch(context.Background(), events, "")

		statuses := map[eventKey]string{}
		for i, ev := range events {
			statuses[eventKey{mark: ev.Mark, device: ev.DeviceID}] = results[i].Status
		}
		rec := fx.record()
		if rec == nil {
			t.Fatalf("trial %d: tidak ada record final", trial)
		}

		if trial == 0 {
			wantMark = rec.AttendanceRecordMark
			wantStatuses = statuses
			continue
		}
		if rec.AttendanceRecordMark != wantMark {
			t.Fatalf("trial %d: mark final %s != %s, hasil tergantung urutan upload", trial, rec.AttendanceRecordMark, wantMark)
		}
		for k, want := range wantStatuses {
			if statuses[k] != want {
				t.Fatalf("trial %d: status event %+v = %s, want %s", trial, k, statuses[k], want)
			}
		}
	}
}

func TestStaleEventRejected(t *testing.T) {
	fx := newResolverFixture(t, sessModel.SessionStatusClosed)
	// delta 2 jam: timestamp lebih tua dari end_at - 2h dianggap stale
	stale := fx.endAt.Add(-2*time.Hour - time.Minute)

	results := fx.svc.ResolveBatch(context.Background(), []dto.OfflineEventInput{
		fx.event(recModel.MarkPresent, recModel.SourceOffline, "device-a", stale),
	}, "")
	if results[0].Status != dto.EventStatusRejected {
		t.Fatalf("status = %s, want rejected", results[0].Status)
	}
	if fx.record() != nil {
		t.Fatal("event stale tidak boleh menghasilkan record")
	}
}

func TestEventsForLockedOrCancelledSessionRejected(t *testing.T) {
	for _, status := range []string{sessModel.SessionStatusLocked, sessModel.SessionStatusCancelled} {
		fx := newResolverFixture(t, status)
		results := fx.svc.ResolveBatch(context.Background(), []dto.OfflineEventInput{
			fx.event(recModel.MarkPresent, recModel.SourceOffline, "device-a", fx.endAt.Add(-10*time.Minute)),
		}, "")
		if results[0].Status != dto.EventStatusRejected {
			t.Errorf("sesi %s: status = %s, want rejected", status, results[0].Status)
		}
	}
}

func TestOneBadEventDoesNotFailBatch(t *testing.T) {
	fx := newResolverFixture(t, sessModel.SessionStatusClosed)

	bad := fx.event(recModel.MarkPresent, recModel.SourceOffline, "device-x", fx.endAt.Add(-10*time.Minute))
	bad.SessionID = uuid.New() // sesi tidak dikenal

	good := fx.event(recModel.MarkPresent, recModel.SourceOffline, "device-a", fx.endAt.Add(-10*time.Minute))

	results := fx.svc.ResolveBatch(context.Background(), []dto.OfflineEventInput{bad, good}, "")
	if results[0].Status != dto.EventStatusRejected || results[0].Error == "" {
		t.Fatalf("event sesi tak dikenal harus rejected dengan pesan, got %+v", results[0])
	}
	if results[1].Status != dto.EventStatusApplied {
		t.Fatalf("event valid harus tetap applied, got %s", results[1].Status)
	}
}

func TestExistingManualRecordKeptAgainstOfflineEvents(t *testing.T) {
	fx := newResolverFixture(t, sessModel.SessionStatusClosed)
	fx.store.records[pair{sessionID: fx.sessionID, studentID: fx.studentID}] = &recModel.AttendanceRecordModel{
		AttendanceRecordID:        uuid.New(),
		AttendanceRecordSessionID: fx.sessionID,
		AttendanceRecordStudentID: fx.studentID,
		AttendanceRecordMark:      recModel.MarkAbsent,
		AttendanceRecordMarkedAt:  fx.endAt.Add(-20 * time.Minute),
		AttendanceRecordSource:    recModel.SourceManual,
		AttendanceRecordDeviceID:  "faculty-tablet",
	}

	results := fx.svc.ResolveBatch(context.Background(), []dto.OfflineEventInput{
		fx.event(recModel.MarkPresent, recModel.SourceOffline, "device-a", fx.endAt.Add(-5*time.Minute)),
	}, "")
	if results[0].Status != dto.EventStatusKept {
		t.Fatalf("status = %s, want kept (existing manual menang)", results[0].Status)
	}
	if fx.record().AttendanceRecordMark != recModel.MarkAbsent {
		t.Fatal("record manual tidak boleh berubah")
	}
}

/* =========================
   Ambiguity → SyncConflict
========================= */

func TestAmbiguousEventsPersistSyncConflict(t *testing.T) {
	fx := newResolverFixture(t, sessModel.SessionStatusClosed)
	at := fx.endAt.Add(-10 * time.Minute)

	// (prioritas, timestamp, device) identik tapi mark beda → ambigu
	results := fx.svc.ResolveBatch(context.Background(), []dto.OfflineEventInput{
		fx.event(recModel.MarkPresent, recModel.SourceOffline, "device-a", at),
		fx.event(recModel.MarkAbsent, recModel.SourceOffline, "device-a", at),
	}, "")

	for i, r := range results {
		if r.Status != dto.EventStatusConflict {
			t.Errorf("event %d status = %s, want conflict", i, r.Status)
		}
	}
	if fx.record() != nil {
		t.Fatal("pasangan ambigu tidak boleh menghasilkan record")
	}

	pending, _ := fx.conflicts.ListPending(context.Background())
	if len(pending) != 1 {
		t.Fatalf("pending conflicts = %d, want 1", len(pending))
	}
	var competing []dto.OfflineEventInput
	if err := json.Unmarshal(pending[0].SyncConflictCompetingEvents, &competing); err != nil {
		t.Fatalf("competing events korup: %v", err)
	}
	if len(competing) != 2 {
		t.Fatalf("competing events = %d, want 2", len(competing))
	}
}

func TestResolveConflictAppliesWinnerAndMarksResolved(t *testing.T) {
	fx := newResolverFixture(t, sessModel.SessionStatusClosed)
	at := fx.endAt.Add(-10 * time.Minute)
	fx.svc.ResolveBatch(context.Background(), []dto.OfflineEventInput{
		fx.event(recModel.MarkPresent, recModel.SourceOffline, "device-a", at),
		fx.event(recModel.MarkAbsent, recModel.SourceOffline, "device-a", at),
	}, "")

	pending, _ := fx.conflicts.ListPending(context.Background())
	conflictID := pending[0].SyncConflictID

	var competing []dto.OfflineEventInput
	_ = json.Unmarshal(pending[0].SyncConflictCompetingEvents, &competing)
	winnerIdx := 0
	for i, ev := range competing {
		if ev.Mark == recModel.MarkPresent {
			winnerIdx = i
		}
	}

	if err := fx.svc.ResolveConflict(context.Background(), conflictID, winnerIdx, "kaprodi"); err != nil {
		t.Fatalf("ResolveConflict: %v", err)
	}

	rec := fx.record()
	if rec == nil || rec.AttendanceRecordMark != recModel.MarkPresent {
		t.Fatal("record final harus mark pemenang")
	}
	if rec.AttendanceRecordSource != recModel.SourceManual {
		t.Fatal("resolusi manusia harus tercatat sebagai source manual")
	}

	// Resolve kedua kali harus ditolak
	err := fx.svc.ResolveConflict(context.Background(), conflictID, winnerIdx, "kaprodi")
	if !errs.IsKind(err, errs.KindState) {
		t.Fatalf("resolve ulang harus StateError, got %v", err)
	}
}

func TestResolveConflictRejectsOutOfRangeWinner(t *testing.T) {
	fx := newResolverFixture(t, sessModel.SessionStatusClosed)
	at := fx.endAt.Add(-10 * time.Minute)
	fx.svc.ResolveBatch(context.Background(), []dto.OfflineEventInput{
		fx.event(recModel.MarkPresent, recModel.SourceOffline, "device-a", at),
		fx.event(recModel.MarkAbsent, recModel.SourceOffline, "device-a", at),
	}, "")
	pending, _ := fx.conflicts.ListPending(context.Background())

	err := fx.svc.ResolveConflict(context.Background(), pending[0].SyncConflictID, 5, "kaprodi")
	if !errs.IsKind(err, errs.KindValidation) {
		t.Fatalf("winner_index di luar jangkauan harus ValidationError, got %v", err)
	}
}
