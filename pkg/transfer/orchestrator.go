package transfer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/cccb/transferd/pkg/launcher"
	"github.com/cccb/transferd/pkg/tdb/model"
	"github.com/cccb/transferd/pkg/tdb/stor"
)

// LaunchOutcome is the per-item result of a worker launch. A failed launch is
// reported here and nowhere else: the transfer entity stays in place so the
// batch can still reconcile, and sibling launches are unaffected.
type LaunchOutcome struct {
	TransferID   int    `json:"transfer_id"`
	InstanceName string `json:"instance_name"`
	Error        string `json:"error,omitempty"`
}

// BatchResult is what a transfer initiation returns: the created coordinator
// and transfers, the launch outcome for each, and the conflict messages for
// items that were excluded before the batch was created.
type BatchResult struct {
	Coordinator *model.TransferCoordinator `json:"coordinator"`
	Transfers   []model.Transfer           `json:"transfers"`
	Launches    []LaunchOutcome            `json:"launches"`
	Conflicts   []string                   `json:"conflicts,omitempty"`
}

// Orchestrator drives a transfer request end to end: dispatch, validation,
// conflict filtering, batch creation, and the concurrent worker launch fan
// out. It holds its settings explicitly; nothing is read from globals at
// request time.
type Orchestrator struct {
	settings  *Settings
	stors     *stor.Stors
	validator *Validator
	launcher  launcher.Launcher
}

func NewOrchestrator(settings *Settings, stors *stor.Stors, l launcher.Launcher) *Orchestrator {
	return &Orchestrator{
		settings:  settings,
		stors:     stors,
		validator: NewValidator(stors, settings.UploadBucket),
		launcher:  l,
	}
}

// StartUpload validates the upload items, drops items whose file already has
// a transfer in flight, creates the coordinator with one transfer (and one
// resource) per remaining item, and launches a worker per transfer. Launch
// failures are reported in the result but never roll the batch back.
func (o *Orchestrator) StartUpload(ctx context.Context, provider Provider, requester *model.User, items []UploadItem) (*BatchResult, error) {
	impl, err := SelectImplementation(o.settings.Environment, provider)
	if err != nil {
		return nil, err
	}

	items, err = o.validator.ValidateUploadItems(impl, requester, items)
	if err != nil {
		return nil, err
	}

	items, conflicts, err := o.filterConflicts(items)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %d items already in progress", ErrNoTransferableItems, len(conflicts))
	}

	transfers := make([]model.Transfer, len(items))
	for i, item := range items {
		transfers[i] = model.Transfer{
			Download:    false,
			Destination: item.Destination,
			Resource: &model.Resource{
				Source:  string(provider),
				Path:    item.Path,
				Size:    item.SizeInBytes,
				OwnerID: item.Owner,
			},
		}
	}

	coordinator, transfers, err := o.stors.TransferCoordinatorStor.CreateBatch(transfers)
	if err != nil {
		return nil, err
	}

	for i := range items {
		items[i].TransferID = transfers[i].ID
	}

	cfg := o.settings.ProviderConfigs[provider]
	now := time.Now()
	launches := o.fanOut(ctx, len(items), func(i int) launcher.LaunchSpec {
		return impl.Builder.BuildUploadLaunch(cfg, o.settings.Secrets, items[i], coordinator.ID, i, now)
	}, func(i int) int {
		return items[i].TransferID
	})

	return &BatchResult{
		Coordinator: coordinator,
		Transfers:   transfers,
		Launches:    launches,
		Conflicts:   conflicts,
	}, nil
}

// StartDownload validates and authorizes every requested resource, creates
// the coordinator with one transfer per resource, and launches a worker per
// transfer. Validation is all or nothing; launches are not.
func (o *Orchestrator) StartDownload(ctx context.Context, provider Provider, requester *model.User, resourceIDs []int, accessToken string) (*BatchResult, error) {
	impl, err := SelectImplementation(o.settings.Environment, provider)
	if err != nil {
		return nil, err
	}

	items, err := o.validator.ValidateDownloadRequest(requester, resourceIDs, accessToken)
	if err != nil {
		return nil, err
	}

	transfers := make([]model.Transfer, len(items))
	for i, item := range items {
		transfers[i] = model.Transfer{
			Download:    true,
			ResourceID:  item.ResourceID,
			Destination: string(provider),
		}
	}

	coordinator, transfers, err := o.stors.TransferCoordinatorStor.CreateBatch(transfers)
	if err != nil {
		return nil, err
	}

	for i := range items {
		items[i].TransferID = transfers[i].ID
	}

	cfg := o.settings.ProviderConfigs[provider]
	now := time.Now()
	launches := o.fanOut(ctx, len(items), func(i int) launcher.LaunchSpec {
		return impl.Builder.BuildDownloadLaunch(cfg, o.settings.Secrets, items[i], coordinator.ID, i, now)
	}, func(i int) int {
		return items[i].TransferID
	})

	return &BatchResult{
		Coordinator: coordinator,
		Transfers:   transfers,
		Launches:    launches,
	}, nil
}

// filterConflicts drops upload items whose path already has an incomplete
// transfer for the same owner, returning a conflict message per dropped item.
// Incomplete resource paths are looked up once per distinct owner.
func (o *Orchestrator) filterConflicts(items []UploadItem) ([]UploadItem, []string, error) {
	inFlightByOwner := make(map[int]map[string]bool)

	var (
		kept      []UploadItem
		conflicts []string
	)

	for _, item := range items {
		inFlight, ok := inFlightByOwner[item.Owner]
		if !ok {
			resources, err := o.stors.TransferStor.GetResourcesWithIncompleteTransfersForUser(item.Owner)
			if err != nil {
				return nil, nil, err
			}

			inFlight = make(map[string]bool, len(resources))
			for _, r := range resources {
				inFlight[r.Path] = true
			}
			inFlightByOwner[item.Owner] = inFlight
		}

		if inFlight[item.Path] {
			conflicts = append(conflicts, fmt.Sprintf("%s: %s", ErrAlreadyInProgress, item.Name))
			continue
		}

		kept = append(kept, item)
	}

	return kept, conflicts, nil
}

// fanOut launches every item concurrently and collects one outcome per item,
// in item order. One launch failing neither cancels its siblings nor fails
// the call.
func (o *Orchestrator) fanOut(ctx context.Context, n int, buildSpec func(i int) launcher.LaunchSpec, transferID func(i int) int) []LaunchOutcome {
	outcomes := make([]LaunchOutcome, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			spec := buildSpec(i)
			outcomes[i] = LaunchOutcome{
				TransferID:   transferID(i),
				InstanceName: spec.InstanceName,
			}

			if _, err := o.launcher.Launch(ctx, spec); err != nil {
				log.Errorf("launch of %s for transfer %d failed: %s", spec.InstanceName, transferID(i), err)
				outcomes[i].Error = fmt.Sprintf("%s: %s", ErrProviderLaunchFailed, err)
			}
		}(i)
	}
	wg.Wait()

	return outcomes
}
