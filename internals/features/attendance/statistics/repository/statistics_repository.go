package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	recModel "kampusku_backend/internals/features/attendance/records/model"
	sessModel "kampusku_backend/internals/features/attendance/sessions/model"
	"kampusku_backend/internals/features/attendance/statistics/model"
	"kampusku_backend/internals/helpers/errs"
)

// MarkCounts: hasil agregasi record seorang mahasiswa pada sesi yang sudah dihitung.
type MarkCounts struct {
	Present int
	Excused int
}

type StatisticsRepository interface {
	// CountCountedSessions: sesi (section, period) berstatus Closed/Locked.
	// Cancelled dan yang masih jalan TIDAK masuk penyebut.
	CountCountedSessions(ctx context.Context, sectionID, periodID uuid.UUID) (int, error)
	CountMarks(ctx context.Context, studentID, sectionID, periodID uuid.UUID) (MarkCounts, error)
	UpsertSnapshot(ctx context.Context, stat *model.AttendanceStatModel) error
	Get(ctx context.Context, studentID, sectionID, periodID uuid.UUID) (*model.AttendanceStatModel, error)
}

type statisticsRepo struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepo{db: db}
}

func (r *statisticsRepo) CountCountedSessions(ctx context.Context, sectionID, periodID uuid.UUID) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&sessModel.AttendanceSessionModel{}).
		Where("attendance_session_section_id = ? AND attendance_session_period_id = ?", sectionID, periodID).
		Where("attendance_session_status IN ?", []string{sessModel.SessionStatusClosed, sessModel.SessionStatusLocked}).
		Count(&n).Error
	return int(n), err
}

func (r *statisticsRepo) CountMarks(ctx context.Context, studentID, sectionID, periodID uuid.UUID) (MarkCounts, error) {
	type row struct {
		Mark string `gorm:"column:mark"`
		N    int    `gorm:"column:n"`
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("attendance_records AS r").
		Select("r.attendance_record_mark AS mark, COUNT(*) AS n").
		Joins("JOIN attendance_sessions AS s ON s.attendance_session_id = r.attendance_record_session_id").
		Where("r.attendance_record_student_id = ?", studentID).
		Where("s.attendance_session_section_id = ? AND s.attendance_session_period_id = ?", sectionID, periodID).
		Where("s.attendance_session_status IN ?", []string{sessModel.SessionStatusClosed, sessModel.SessionStatusLocked}).
		Group("r.attendance_record_mark").
		Scan(&rows).Error
	if err != nil {
		return MarkCounts{}, err
	}

	var counts MarkCounts
	for _, rw := range rows {
		switch rw.Mark {
		case recModel.MarkPresent, recModel.MarkLate:
			counts.Present += rw.N
		case recModel.MarkExcused:
			counts.Excused += rw.N
		}
	}
	return counts, nil
}

func (r *statisticsRepo) UpsertSnapshot(ctx context.Context, stat *model.AttendanceStatModel) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "attendance_stat_student_id"},
				{Name: "attendance_stat_section_id"},
				{Name: "attendance_stat_period_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"attendance_stat_total_sessions",
				"attendance_stat_present_count",
				"attendance_stat_excused_count",
				"attendance_stat_percentage",
				"attendance_stat_eligible",
				"attendance_stat_computed_at",
			}),
		}).
		Create(stat).Error
}

func (r *statisticsRepo) Get(ctx context.Context, studentID, sectionID, periodID uuid.UUID) (*model.AttendanceStatModel, error) {
	var m model.AttendanceStatModel
	err := r.db.WithContext(ctx).
		Where("attendance_stat_student_id = ? AND attendance_stat_section_id = ? AND attendance_stat_period_id = ?",
			studentID, sectionID, periodID).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("statistik belum pernah dihitung untuk kombinasi ini")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
