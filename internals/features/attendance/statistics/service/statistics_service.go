// file: internals/features/attendance/statistics/service/statistics_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	enrollRepo "kampusku_backend/internals/features/academics/enrollments/repository"
	"kampusku_backend/internals/features/attendance/statistics/model"
	"kampusku_backend/internals/features/attendance/statistics/repository"
)

// StatisticsService: hitung ulang persentase kehadiran + kelayakan ujian.
// Idempoten — tanpa perubahan record, recompute menghasilkan snapshot identik.
// Jalan async di luar hot path capture; tidak pernah memegang lock yang
// memblokir gateway.
type StatisticsService struct {
	Stats      repository.StatisticsRepository
	Enrollment enrollRepo.EnrollmentRegistry

	EligibilityThreshold float64

	Log *logrus.Logger
	now func() time.Time
}

func NewStatisticsService(
	stats repository.StatisticsRepository,
	enrollment enrollRepo.EnrollmentRegistry,
	threshold float64,
	log *logrus.Logger,
) *StatisticsService {
	return &StatisticsService{
		Stats:                stats,
		Enrollment:           enrollment,
		EligibilityThreshold: threshold,
		Log:                  log,
		now:                  time.Now,
	}
}

func (s *StatisticsService) WithClock(now func() time.Time) *StatisticsService {
	s.now = now
	return s
}

// ComputePercentage: excused keluar dari penyebut.
// effective_total == 0 → 100 (tidak ada sesi yang bisa dihadiri = tidak dirugikan).
func ComputePercentage(totalSessions, presentCount, excusedCount int) float64 {
	effective := totalSessions - excusedCount
	if effective <= 0 {
		return 100
	}
	pct := decimal.NewFromInt(int64(presentCount) * 100).
		Div(decimal.NewFromInt(int64(effective))).
		Round(2)
	f, _ := pct.Float64()
	return f
}

func (s *StatisticsService) Recompute(ctx context.Context, studentID, sectionID, periodID uuid.UUID) (*model.AttendanceStatModel, error) {
	total, err := s.Stats.CountCountedSessions(ctx, sectionID, periodID)
	if err != nil {
		return nil, err
	}
	counts, err := s.Stats.CountMarks(ctx, studentID, sectionID, periodID)
	if err != nil {
		return nil, err
	}

	pct := ComputePercentage(total, counts.Present, counts.Excused)
	stat := &model.AttendanceStatModel{
		AttendanceStatStudentID:     studentID,
		AttendanceStatSectionID:     sectionID,
		AttendanceStatPeriodID:      periodID,
		AttendanceStatTotalSessions: total,
		AttendanceStatPresentCount:  counts.Present,
		AttendanceStatExcusedCount:  counts.Excused,
		AttendanceStatPercentage:    pct,
		AttendanceStatEligible:      pct >= s.EligibilityThreshold,
		AttendanceStatComputedAt:    s.now(),
	}
	if err := s.Stats.UpsertSnapshot(ctx, stat); err != nil {
		return nil, err
	}
	return stat, nil
}

// RecomputeSection: kipas per mahasiswa terdaftar; dipakai consumer event close.
// Satu mahasiswa gagal tidak menghentikan yang lain.
func (s *StatisticsService) RecomputeSection(ctx context.Context, sectionID, periodID uuid.UUID) (int, error) {
	studentIDs, err := s.Enrollment.ListStudentIDs(ctx, sectionID)
	if err != nil {
		return 0, err
	}

	done := 0
	for _, sid := range studentIDs {
		if _, rerr := s.Recompute(ctx, sid, sectionID, periodID); rerr != nil {
			if s.Log != nil {
				s.Log.WithError(rerr).WithFields(logrus.Fields{
					"student_id": sid,
					"section_id": sectionID,
				}).Error("recompute statistik gagal")
			}
			continue
		}
		done++
	}
	return done, nil
}

func (s *StatisticsService) Get(ctx context.Context, studentID, sectionID, periodID uuid.UUID) (*model.AttendanceStatModel, error) {
	return s.Stats.Get(ctx, studentID, sectionID, periodID)
}
