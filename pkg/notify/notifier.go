// Package notify publishes batch completion events. The reconciler fires a
// notification exactly once per coordinator, when its last transfer reports
// in.
package notify

import (
	"time"

	"github.com/apex/log"
)

// BatchCompletedEvent is the payload published when every transfer of a
// coordinator has completed.
type BatchCompletedEvent struct {
	CoordinatorID   int       `json:"coordinator_id"`
	CoordinatorUUID string    `json:"coordinator_uuid"`
	TransferCount   int       `json:"transfer_count"`
	SuccessCount    int       `json:"success_count"`
	FinishedAt      time.Time `json:"finished_at"`
}

type Notifier interface {
	BatchCompleted(event BatchCompletedEvent) error
}

// LogNotifier is the fallback when no message broker is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) BatchCompleted(event BatchCompletedEvent) error {
	log.Infof("batch %d (%s) completed: %d/%d transfers succeeded",
		event.CoordinatorID, event.CoordinatorUUID, event.SuccessCount, event.TransferCount)
	return nil
}
