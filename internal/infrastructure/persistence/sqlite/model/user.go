package model

type User struct {
	ID     uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	ChatID int64  `gorm:"column:chat_id;uniqueIndex;not null"`
	Name   string `gorm:"column:name;type:text"`
}

func (User) TableName() string {
	return "users"
}
