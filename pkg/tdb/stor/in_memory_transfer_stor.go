package stor

import (
	"fmt"
	"time"

	"github.com/cccb/transferd/pkg/tdb/model"
)

type InMemoryTransferStor struct {
	ErrToReturn error
	transfers   []model.Transfer
	resources   map[int]*model.Resource
}

func NewInMemoryTransferStor(transfers []model.Transfer) *InMemoryTransferStor {
	s := &InMemoryTransferStor{transfers: transfers, resources: make(map[int]*model.Resource)}
	for _, t := range transfers {
		if t.Resource != nil {
			s.resources[t.ResourceID] = t.Resource
		}
	}
	return s
}

func (s *InMemoryTransferStor) GetTransferByID(transferID int) (*model.Transfer, error) {
	if s.ErrToReturn != nil {
		return nil, s.ErrToReturn
	}

	for _, t := range s.transfers {
		if t.ID == transferID {
			transfer := t
			return &transfer, nil
		}
	}

	return nil, fmt.Errorf("no such transfer %d", transferID)
}

func (s *InMemoryTransferStor) ListTransfers() ([]model.Transfer, error) {
	transfers := make([]model.Transfer, len(s.transfers))
	copy(transfers, s.transfers)
	return transfers, s.ErrToReturn
}

func (s *InMemoryTransferStor) GetTransfersForCoordinator(coordinatorID int) ([]model.Transfer, error) {
	var transfers []model.Transfer
	for _, t := range s.transfers {
		if t.CoordinatorID == coordinatorID {
			transfers = append(transfers, t)
		}
	}
	return transfers, s.ErrToReturn
}

func (s *InMemoryTransferStor) GetTransfersForUser(ownerID int) ([]model.Transfer, error) {
	var transfers []model.Transfer
	for _, t := range s.transfers {
		if t.Resource != nil && t.Resource.OwnerID == ownerID {
			transfers = append(transfers, t)
		}
	}
	return transfers, s.ErrToReturn
}

func (s *InMemoryTransferStor) GetResourcesWithIncompleteTransfersForUser(ownerID int) ([]model.Resource, error) {
	var resources []model.Resource
	for _, t := range s.transfers {
		if !t.Completed && t.Resource != nil && t.Resource.OwnerID == ownerID {
			resources = append(resources, *t.Resource)
		}
	}
	return resources, s.ErrToReturn
}

func (s *InMemoryTransferStor) MarkTransferCompleted(transferID int, success bool, finishedAt time.Time) (*model.Transfer, error) {
	if s.ErrToReturn != nil {
		return nil, s.ErrToReturn
	}

	for i := range s.transfers {
		if s.transfers[i].ID != transferID {
			continue
		}

		if s.transfers[i].Completed {
			return nil, ErrAlreadyCompleted
		}

		s.transfers[i].Completed = true
		s.transfers[i].Success = success
		s.transfers[i].FinishTime = &finishedAt
		transfer := s.transfers[i]
		return &transfer, nil
	}

	return nil, fmt.Errorf("no such transfer %d", transferID)
}
