package model

import "time"

type Issue struct {
	ID           uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	InspectionID uint64  `gorm:"column:inspection_id;not null;index"`
	DepartmentID uint64  `gorm:"column:department_id;not null;index"`
	PhotoRef     string  `gorm:"column:photo_ref;type:text;not null"`
	Comment      *string `gorm:"column:comment;type:text"`
	Status       string  `gorm:"column:status;type:text;not null;default:open"`

	CreatedAt     time.Time  `gorm:"column:created_at;not null"`
	FixedAt       *time.Time `gorm:"column:fixed_at"`
	FixPhotoRef   *string    `gorm:"column:fix_photo_ref;type:text"`
	FixedByChatID *int64     `gorm:"column:fixed_by_chat_id"`
}

func (Issue) TableName() string {
	return "issues"
}
