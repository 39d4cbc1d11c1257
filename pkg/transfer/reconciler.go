package transfer

import (
	"errors"
	"time"

	"github.com/apex/log"
	"github.com/cccb/transferd/pkg/lock"
	"github.com/cccb/transferd/pkg/notify"
	"github.com/cccb/transferd/pkg/tdb/model"
	"github.com/cccb/transferd/pkg/tdb/stor"
)

// CompletionPayload is what a worker posts back when its transfer finishes.
// The token is the shared secret encrypted under the shared key; ids are
// pointers so a missing field is distinguishable from a zero.
type CompletionPayload struct {
	Token         string `json:"token"`
	TransferID    *int   `json:"transfer_pk"`
	CoordinatorID *int   `json:"coordinator_pk"`
	Success       *bool  `json:"success"`
}

// CompletionResult reports what a completion callback changed.
type CompletionResult struct {
	Transfer        *model.Transfer
	BatchCompleted  bool
	ResourceRetired bool
}

// Reconciler applies worker completion reports: it authenticates the
// callback, marks the transfer complete, retires the resource of a
// successful download, and closes out the coordinator when the last transfer
// reports in.
type Reconciler struct {
	secrets  CallbackSecrets
	stors    *stor.Stors
	locker   *lock.IdLocker
	notifier notify.Notifier
}

func NewReconciler(secrets CallbackSecrets, stors *stor.Stors, notifier notify.Notifier) *Reconciler {
	return &Reconciler{
		secrets:  secrets,
		stors:    stors,
		locker:   lock.NewIdLocker(),
		notifier: notifier,
	}
}

// ReportCompletion handles one worker callback. Authentication failures and
// unknown ids are both reported to the web layer as errors it renders as an
// opaque not-found, so a caller probing the endpoint learns nothing. A second
// report for an already completed transfer is rejected; success and
// finish_time never change once set.
func (r *Reconciler) ReportCompletion(payload CompletionPayload) (*CompletionResult, error) {
	if err := r.authenticate(payload.Token); err != nil {
		return nil, err
	}

	if payload.TransferID == nil || payload.CoordinatorID == nil || payload.Success == nil {
		return nil, ErrMalformedCallback
	}

	existing, err := r.stors.TransferStor.GetTransferByID(*payload.TransferID)
	if err != nil {
		return nil, ErrUnknownTransfer
	}

	if existing.CoordinatorID != *payload.CoordinatorID {
		return nil, ErrUnknownCoordinator
	}

	now := time.Now()

	transfer, err := r.stors.TransferStor.MarkTransferCompleted(*payload.TransferID, *payload.Success, now)
	switch {
	case errors.Is(err, stor.ErrAlreadyCompleted):
		return nil, ErrAlreadyCompleted
	case err != nil:
		return nil, ErrUnknownTransfer
	}

	result := &CompletionResult{Transfer: transfer}

	if transfer.Download && *payload.Success {
		if err := r.stors.ResourceStor.MarkResourceInactive(transfer.ResourceID); err != nil {
			log.Errorf("retiring resource %d after download %d failed: %s", transfer.ResourceID, transfer.ID, err)
		} else {
			result.ResourceRetired = true
		}
	}

	err = r.locker.WithLock(transfer.CoordinatorID, func() error {
		becameComplete, err := r.stors.TransferCoordinatorStor.MarkCoordinatorCompleteIfAllDone(transfer.CoordinatorID, now)
		if err != nil {
			return err
		}

		result.BatchCompleted = becameComplete
		return nil
	})
	if err != nil {
		log.Errorf("completing coordinator %d failed: %s", transfer.CoordinatorID, err)
		return result, nil
	}

	if result.BatchCompleted {
		r.notifyBatchCompleted(transfer.CoordinatorID, now)
	}

	return result, nil
}

func (r *Reconciler) authenticate(token string) error {
	if token == "" {
		return ErrCallbackAuthFailed
	}

	decrypted, err := DecryptToken(r.secrets.EncryptionKey, token)
	if err != nil || decrypted != r.secrets.Token {
		return ErrCallbackAuthFailed
	}

	return nil
}

func (r *Reconciler) notifyBatchCompleted(coordinatorID int, finishedAt time.Time) {
	coordinator, err := r.stors.TransferCoordinatorStor.GetTransferCoordinatorByID(coordinatorID)
	if err != nil {
		log.Errorf("loading completed coordinator %d failed: %s", coordinatorID, err)
		return
	}

	transfers, err := r.stors.TransferStor.GetTransfersForCoordinator(coordinatorID)
	if err != nil {
		log.Errorf("loading transfers for coordinator %d failed: %s", coordinatorID, err)
		return
	}

	successes := 0
	for _, t := range transfers {
		if t.Success {
			successes++
		}
	}

	event := notify.BatchCompletedEvent{
		CoordinatorID:   coordinator.ID,
		CoordinatorUUID: coordinator.UUID,
		TransferCount:   len(transfers),
		SuccessCount:    successes,
		FinishedAt:      finishedAt,
	}

	if err := r.notifier.BatchCompleted(event); err != nil {
		log.Errorf("notifying completion of coordinator %d failed: %s", coordinatorID, err)
	}
}
