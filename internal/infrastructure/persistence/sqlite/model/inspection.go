package model

import "time"

type Inspection struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	DepartmentID uint64    `gorm:"column:department_id;not null;index"`
	InspectorID  uint64    `gorm:"column:inspector_id;not null;index"`
	Date         time.Time `gorm:"column:date;not null;index"`
	Status       string    `gorm:"column:status;type:text;not null;default:open"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}

func (Inspection) TableName() string {
	return "inspections"
}
