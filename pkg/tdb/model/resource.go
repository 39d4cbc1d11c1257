package model

import (
	"path/filepath"
	"time"
)

// Resource is a tracked reference to a file. Source is the provider tag the
// bytes currently live at, Path the locator relative to that source. A
// Resource is never deleted by the transfer core; once it has been
// successfully downloaded out of the system, or it expires, it is marked
// inactive.
type Resource struct {
	ID             int        `json:"id"`
	UUID           string     `json:"uuid"`
	Source         string     `json:"source"`
	Path           string     `json:"path"`
	Size           int64      `json:"size"`
	OwnerID        int        `json:"owner_id"`
	Owner          *User      `json:"owner,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
	IsActive       bool       `json:"is_active"`
	ExpirationDate *time.Time `json:"expiration_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Resource) TableName() string {
	return "resources"
}

// Filename returns the last path element, used in user-facing conflict
// messages.
func (r Resource) Filename() string {
	return filepath.Base(r.Path)
}
