package model

type Department struct {
	ID   uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Name string `gorm:"column:name;type:text;not null"`
}

func (Department) TableName() string {
	return "departments"
}
