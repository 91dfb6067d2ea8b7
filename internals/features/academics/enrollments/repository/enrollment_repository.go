package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kampusku_backend/internals/features/academics/enrollments/model"
)

// EnrollmentRegistry: kolaborator eksternal Capture Gateway & worker statistik.
type EnrollmentRegistry interface {
	IsEnrolled(ctx context.Context, studentID, sectionID uuid.UUID) (bool, error)
	ListStudentIDs(ctx context.Context, sectionID uuid.UUID) ([]uuid.UUID, error)
}

type enrollmentRepo struct {
	db *gorm.DB
}

func NewEnrollmentRegistry(db *gorm.DB) EnrollmentRegistry {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) IsEnrolled(ctx context.Context, studentID, sectionID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.EnrollmentModel{}).
		Where("enrollment_student_id = ? AND enrollment_section_id = ?", studentID, sectionID).
		Count(&n).Error
	return n > 0, err
}

func (r *enrollmentRepo) ListStudentIDs(ctx context.Context, sectionID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.EnrollmentModel{}).
		Where("enrollment_section_id = ?", sectionID).
		Pluck("enrollment_student_id", &ids).Error
	return ids, err
}
