// file: internals/features/attendance/sync/service/conflict_resolver_service.go
package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	enrollRepo "kampusku_backend/internals/features/academics/enrollments/repository"
	auditModel "kampusku_backend/internals/features/attendance/audit/model"
	recModel "kampusku_backend/internals/features/attendance/records/model"
	recRepo "kampusku_backend/internals/features/attendance/records/repository"
	sessModel "kampusku_backend/internals/features/attendance/sessions/model"
	sessRepo "kampusku_backend/internals/features/attendance/sessions/repository"
	"kampusku_backend/internals/features/attendance/sync/dto"
	"kampusku_backend/internals/features/attendance/sync/model"
	"kampusku_backend/internals/features/attendance/sync/repository"
	"kampusku_backend/internals/helpers/errs"
)

// ConflictResolverService: rekonsiliasi batch event offline/delayed.
// Tiap event diproses independen; satu event busuk tidak menggugurkan batch.
// Hasil akhir order-independent: total order (prioritas source, timestamp,
// device_id) yang menentukan, bukan urutan upload.
type ConflictResolverService struct {
	Sessions   sessRepo.SessionRepository
	Store      recRepo.RecordStore
	Conflicts  repository.SyncConflictRepository
	Enrollment enrollRepo.EnrollmentRegistry

	AllowedOfflineDelta time.Duration

	Log *logrus.Logger
	now func() time.Time
}

func NewConflictResolverService(
	sessions sessRepo.SessionRepository,
	store recRepo.RecordStore,
	conflicts repository.SyncConflictRepository,
	enrollment enrollRepo.EnrollmentRegistry,
	allowedOfflineDelta time.Duration,
	log *logrus.Logger,
) *ConflictResolverService {
	return &ConflictResolverService{
		Sessions:            sessions,
		Store:               store,
		Conflicts:           conflicts,
		Enrollment:          enrollment,
		AllowedOfflineDelta: allowedOfflineDelta,
		Log:                 log,
		now:                 time.Now,
	}
}

func (s *ConflictResolverService) WithClock(now func() time.Time) *ConflictResolverService {
	s.now = now
	return s
}

type pairKey struct {
	sessionID uuid.UUID
	studentID uuid.UUID
}

// ResolveBatch: return hasil per event, urutan sama dengan input.
// Tidak pernah return error batch-level selain context/storage fatal;
// kegagalan per event ada di EventResult.
func (s *ConflictResolverService) ResolveBatch(ctx context.Context, events []dto.OfflineEventInput, actor string) []dto.EventResult {
	results := make([]dto.EventResult, len(events))
	for i := range results {
		results[i].Index = i
	}

	sessions := map[uuid.UUID]*sessModel.AttendanceSessionModel{}
	groups := map[pairKey][]int{}

	// Fase 1: validasi per event, independen
	for i, ev := range events {
		if rejectMsg := s.validateEvent(ctx, sessions, ev); rejectMsg != "" {
			results[i].Status = dto.EventStatusRejected
			results[i].Error = rejectMsg
			continue
		}
		key := pairKey{sessionID: ev.SessionID, studentID: ev.StudentID}
		groups[key] = append(groups[key], i)
	}

	// Fase 2: per pasangan (session, student), tentukan pemenang deterministik
	for key, idxs := range groups {
		s.resolvePair(ctx, events, results, key, idxs, actor)
	}
	return results
}

func (s *ConflictResolverService) validateEvent(ctx context.Context, cache map[uuid.UUID]*sessModel.AttendanceSessionModel, ev dto.OfflineEventInput) string {
	if !recModel.ValidSource(ev.Source) {
		return "source tidak dikenal: " + ev.Source
	}
	if !recModel.ValidMark(ev.Mark) || ev.Mark == recModel.MarkExcused {
		return "mark tidak valid untuk jalur sync: " + ev.Mark
	}
	if ev.ClientTimestamp.IsZero() {
		return "client_timestamp wajib diisi"
	}

	sess, ok := cache[ev.SessionID]
	if !ok {
		loaded, err := s.Sessions.GetByID(ctx, ev.SessionID)
		if err != nil {
			if errs.IsKind(err, errs.KindNotFound) {
				return "sesi tidak ditemukan"
			}
			return "gagal membaca sesi: " + err.Error()
		}
		sess = loaded
		cache[ev.SessionID] = sess
	}

	switch sess.AttendanceSessionStatus {
	case sessModel.SessionStatusLocked:
		return "sesi sudah locked"
	case sessModel.SessionStatusCancelled:
		return "sesi sudah cancelled"
	}

	// StaleEvent: terlalu tua relatif terhadap akhir sesi
	if ev.ClientTimestamp.Before(sess.AttendanceSessionEndAt.Add(-s.AllowedOfflineDelta)) {
		return "event stale: client_timestamp di luar toleransi offline"
	}

	enrolled, err := s.Enrollment.IsEnrolled(ctx, ev.StudentID, sess.AttendanceSessionSectionID)
	if err != nil {
		return "gagal cek enrollment: " + err.Error()
	}
	if !enrolled {
		return "mahasiswa tidak terdaftar di section sesi ini"
	}
	return ""
}

func (s *ConflictResolverService) resolvePair(ctx context.Context, events []dto.OfflineEventInput, results []dto.EventResult, key pairKey, idxs []int, actor string) {
	// Urut menurun: pemenang di depan. sort.Slice stabil tidak perlu —
	// comparator total order sudah membedakan semua kecuali duplikat persis.
	sorted := append([]int(nil), idxs...)
	sort.Slice(sorted, func(a, b int) bool {
		ea, eb := events[sorted[a]], events[sorted[b]]
		return recModel.Supersedes(ea.Source, ea.ClientTimestamp, ea.DeviceID,
			eb.Source, eb.ClientTimestamp, eb.DeviceID)
	})
	top := events[sorted[0]]

	// Ambigu: ada event lain dengan (prioritas, timestamp, device) identik
	// tapi mark beda → bukan urusan resolver menebak niat bisnis.
	ambiguous := false
	for _, i := range sorted[1:] {
		e := events[i]
		if sameEventKey(e, top) && e.Mark != top.Mark {
			ambiguous = true
			break
		}
	}

	// Cek juga terhadap record yang sudah commit
	existing, err := s.Store.GetBySessionStudent(ctx, key.sessionID, key.studentID)
	if err != nil && !errs.IsKind(err, errs.KindNotFound) {
		s.failPair(results, idxs, "gagal membaca record existing: "+err.Error())
		return
	}
	if !ambiguous && existing != nil &&
		recModel.SourcePriority(existing.AttendanceRecordSource) == recModel.SourcePriority(top.Source) &&
		existing.AttendanceRecordMarkedAt.Equal(top.ClientTimestamp) &&
		existing.AttendanceRecordDeviceID == top.DeviceID &&
		existing.AttendanceRecordMark != top.Mark {
		ambiguous = true
	}

	if ambiguous {
		s.persistConflict(ctx, results, events, key, idxs, top)
		return
	}

	// Tulis pemenang lewat jalur upsert yang sama dengan gateway;
	// precedence vs existing diputuskan atomik di dalam transaksi store.
	rec := &recModel.AttendanceRecordModel{
		AttendanceRecordSessionID: key.sessionID,
		AttendanceRecordStudentID: key.studentID,
		AttendanceRecordMark:      top.Mark,
		AttendanceRecordMarkedAt:  top.ClientTimestamp,
		AttendanceRecordSource:    top.Source,
		AttendanceRecordDeviceID:  top.DeviceID,
	}
	if actor == "" {
		actor = "offline-sync"
	}
	entry := &auditModel.AuditLogEntryModel{
		AuditLogEntityType:    "attendance_record",
		AuditLogEntityID:      key.sessionID.String() + ":" + key.studentID.String(),
		AuditLogActor:         actor,
		AuditLogSource:        top.Source,
		AuditLogCorrelationID: key.sessionID.String() + ":" + key.studentID.String(),
	}

	outcome, _, err := s.Store.UpsertWithStatusCheck(ctx, rec,
		[]string{sessModel.SessionStatusOpen, sessModel.SessionStatusClosed}, entry)
	if err != nil {
		s.failPair(results, idxs, err.Error())
		return
	}

	winnerStatus := dto.EventStatusApplied
	if outcome == recRepo.OutcomeKept {
		winnerStatus = dto.EventStatusKept
	}
	for _, i := range idxs {
		if sameEventKey(events[i], top) && events[i].Mark == top.Mark {
			results[i].Status = winnerStatus
		} else {
			results[i].Status = dto.EventStatusSuperseded
		}
	}
}

func (s *ConflictResolverService) persistConflict(ctx context.Context, results []dto.EventResult, events []dto.OfflineEventInput, key pairKey, idxs []int, top dto.OfflineEventInput) {
	competing := make([]dto.OfflineEventInput, 0, len(idxs))
	for _, i := range idxs {
		competing = append(competing, events[i])
	}
	// Deterministik juga di penyimpanan: urutkan isi competing_events
	sort.Slice(competing, func(a, b int) bool {
		if !sameEventKey(competing[a], competing[b]) {
			return recModel.Supersedes(competing[a].Source, competing[a].ClientTimestamp, competing[a].DeviceID,
				competing[b].Source, competing[b].ClientTimestamp, competing[b].DeviceID)
		}
		return competing[a].Mark < competing[b].Mark
	})

	raw, err := json.Marshal(competing)
	if err != nil {
		s.failPair(results, idxs, "gagal serialisasi competing events: "+err.Error())
		return
	}
	conflict := &model.SyncConflictModel{
		SyncConflictSessionID:       key.sessionID,
		SyncConflictStudentID:       key.studentID,
		SyncConflictCompetingEvents: raw,
		SyncConflictStatus:          model.SyncConflictStatusPending,
	}
	if err := s.Conflicts.Create(ctx, conflict); err != nil {
		s.failPair(results, idxs, "gagal menyimpan sync conflict: "+err.Error())
		return
	}

	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"session_id": key.sessionID,
			"student_id": key.studentID,
			"events":     len(idxs),
		}).Warn("ambiguous offline events, sync conflict persisted")
	}

	for _, i := range idxs {
		if sameEventKey(events[i], top) {
			results[i].Status = dto.EventStatusConflict
		} else {
			results[i].Status = dto.EventStatusSuperseded
		}
	}
}

// ResolveConflict: terapkan pemenang pilihan manusia lewat jalur write ber-audit
// yang sama, lalu tandai conflict resolved.
func (s *ConflictResolverService) ResolveConflict(ctx context.Context, conflictID uuid.UUID, winnerIndex int, actor string) error {
	conflict, err := s.Conflicts.GetByID(ctx, conflictID)
	if err != nil {
		return err
	}
	if conflict.SyncConflictStatus != model.SyncConflictStatusPending {
		return errs.State("sync conflict sudah diresolve")
	}

	var competing []dto.OfflineEventInput
	if err := json.Unmarshal(conflict.SyncConflictCompetingEvents, &competing); err != nil {
		return errs.Wrap(errs.KindConsistency, "competing events korup", err)
	}
	if winnerIndex < 0 || winnerIndex >= len(competing) {
		return errs.Validation("winner_index di luar jangkauan")
	}
	winner := competing[winnerIndex]

	if actor == "" {
		actor = "manual-resolution"
	}
	rec := &recModel.AttendanceRecordModel{
		AttendanceRecordSessionID: conflict.SyncConflictSessionID,
		AttendanceRecordStudentID: conflict.SyncConflictStudentID,
		AttendanceRecordMark:      winner.Mark,
		// Resolusi manual = keputusan manusia; menang atas event mesin manapun
		AttendanceRecordMarkedAt: s.now(),
		AttendanceRecordSource:   recModel.SourceManual,
		AttendanceRecordDeviceID: winner.DeviceID,
	}
	entry := &auditModel.AuditLogEntryModel{
		AuditLogEntityType:    "attendance_record",
		AuditLogEntityID:      conflict.SyncConflictSessionID.String() + ":" + conflict.SyncConflictStudentID.String(),
		AuditLogAction:        "record.conflict_resolution",
		AuditLogActor:         actor,
		AuditLogSource:        recModel.SourceManual,
		AuditLogCorrelationID: conflict.SyncConflictID.String(),
	}

	if _, _, err := s.Store.UpsertWithStatusCheck(ctx, rec,
		[]string{sessModel.SessionStatusOpen, sessModel.SessionStatusClosed, sessModel.SessionStatusLocked}, entry); err != nil {
		return err
	}
	return s.Conflicts.MarkResolved(ctx, conflictID)
}

func (s *ConflictResolverService) failPair(results []dto.EventResult, idxs []int, msg string) {
	for _, i := range idxs {
		results[i].Status = dto.EventStatusRejected
		results[i].Error = msg
	}
}

func sameEventKey(a, b dto.OfflineEventInput) bool {
	return recModel.SourcePriority(a.Source) == recModel.SourcePriority(b.Source) &&
		a.ClientTimestamp.Equal(b.ClientTimestamp) &&
		a.DeviceID == b.DeviceID
}
