package model

import (
	"time"

	"github.com/google/uuid"
)

type HolidayModel struct {
	HolidayID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:holiday_id" json:"holiday_id"`
	HolidayDate time.Time `gorm:"type:date;not null;uniqueIndex;column:holiday_date"               json:"holiday_date"`
	HolidayName string    `gorm:"type:varchar(120);not null;column:holiday_name"                   json:"holiday_name"`

	HolidayCreatedAt time.Time `gorm:"column:holiday_created_at;autoCreateTime" json:"holiday_created_at"`
}

func (HolidayModel) TableName() string { return "holidays" }
