package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EnrollmentModel: keanggotaan mahasiswa pada course section.
// Dimiliki modul akademik (luar core); core hanya baca lewat EnrollmentRegistry.
type EnrollmentModel struct {
	EnrollmentID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:enrollment_id" json:"enrollment_id"`

	EnrollmentStudentID uuid.UUID `gorm:"type:uuid;not null;column:enrollment_student_id;uniqueIndex:uq_enrollment_student_section,priority:1" json:"enrollment_student_id"`
	EnrollmentSectionID uuid.UUID `gorm:"type:uuid;not null;column:enrollment_section_id;uniqueIndex:uq_enrollment_student_section,priority:2" json:"enrollment_section_id"`

	EnrollmentCreatedAt time.Time      `gorm:"column:enrollment_created_at;autoCreateTime" json:"enrollment_created_at"`
	EnrollmentDeletedAt gorm.DeletedAt `gorm:"column:enrollment_deleted_at;index"          json:"enrollment_deleted_at,omitempty"`
}

func (EnrollmentModel) TableName() string { return "enrollments" }
