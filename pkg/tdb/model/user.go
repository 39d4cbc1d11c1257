package model

import "time"

type User struct {
	ID        int    `json:"id"`
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	Email     string `json:"email" gorm:"uniqueIndex"`
	ApiToken  string `json:"-"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}
