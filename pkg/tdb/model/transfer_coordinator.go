package model

import "time"

// TransferCoordinator tracks one batch of transfers submitted together.
// Completed flips to true exactly once, when every child Transfer has
// completed; FinishTime is set at that moment and never moves afterwards.
type TransferCoordinator struct {
	ID         int        `json:"id"`
	UUID       string     `json:"uuid"`
	Completed  bool       `json:"completed"`
	StartTime  time.Time  `json:"start_time" gorm:"autoCreateTime"`
	FinishTime *time.Time `json:"finish_time"`
}

func (TransferCoordinator) TableName() string {
	return "transfer_coordinators"
}
