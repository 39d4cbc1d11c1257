package model

import "time"

// Transfer is one directed move of a Resource. Download=true means the bytes
// are leaving our storage, false means they are entering it. Completed does
// NOT imply success; Success is only meaningful once Completed is true.
type Transfer struct {
	ID            int                  `json:"id"`
	UUID          string               `json:"uuid"`
	Download      bool                 `json:"download"`
	ResourceID    int                  `json:"resource_id"`
	Resource      *Resource            `json:"resource,omitempty" gorm:"foreignKey:ResourceID;references:ID;constraint:OnDelete:CASCADE"`
	Destination   string               `json:"destination"`
	Completed     bool                 `json:"completed"`
	Success       bool                 `json:"success"`
	StartTime     time.Time            `json:"start_time" gorm:"autoCreateTime"`
	FinishTime    *time.Time           `json:"finish_time"`
	CoordinatorID int                  `json:"coordinator_id"`
	Coordinator   *TransferCoordinator `json:"coordinator,omitempty" gorm:"foreignKey:CoordinatorID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Transfer) TableName() string {
	return "transfers"
}
