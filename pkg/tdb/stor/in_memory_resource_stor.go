package stor

import (
	"fmt"
	"time"

	"github.com/cccb/transferd/pkg/tdb/model"
)

type InMemoryResourceStor struct {
	ErrToReturn error
	resources   []model.Resource
	lastID      int
}

func NewInMemoryResourceStor(resources []model.Resource) *InMemoryResourceStor {
	return &InMemoryResourceStor{resources: resources, lastID: 10000}
}

func (s *InMemoryResourceStor) CreateResource(resource *model.Resource) (*model.Resource, error) {
	if s.ErrToReturn != nil {
		return nil, s.ErrToReturn
	}

	s.lastID++
	resource.ID = s.lastID
	resource.IsActive = true
	s.resources = append(s.resources, *resource)
	return resource, nil
}

func (s *InMemoryResourceStor) GetResourceByID(resourceID int) (*model.Resource, error) {
	if s.ErrToReturn != nil {
		return nil, s.ErrToReturn
	}

	for _, r := range s.resources {
		if r.ID == resourceID {
			resource := r
			return &resource, nil
		}
	}

	return nil, fmt.Errorf("no such resource %d", resourceID)
}

func (s *InMemoryResourceStor) ListResources() ([]model.Resource, error) {
	resources := make([]model.Resource, len(s.resources))
	copy(resources, s.resources)
	return resources, s.ErrToReturn
}

func (s *InMemoryResourceStor) GetResourcesForUser(ownerID int) ([]model.Resource, error) {
	var resources []model.Resource
	for _, r := range s.resources {
		if r.OwnerID == ownerID {
			resources = append(resources, r)
		}
	}
	return resources, s.ErrToReturn
}

func (s *InMemoryResourceStor) GetActiveResourcesForUser(ownerID int) ([]model.Resource, error) {
	var resources []model.Resource
	for _, r := range s.resources {
		if r.OwnerID == ownerID && r.IsActive {
			resources = append(resources, r)
		}
	}
	return resources, s.ErrToReturn
}

func (s *InMemoryResourceStor) MarkResourceInactive(resourceID int) error {
	for i := range s.resources {
		if s.resources[i].ID == resourceID {
			s.resources[i].IsActive = false
			return nil
		}
	}
	return fmt.Errorf("no such resource %d", resourceID)
}

func (s *InMemoryResourceStor) ExpireResources(now time.Time) (int64, error) {
	var expired int64
	for i := range s.resources {
		r := &s.resources[i]
		if r.IsActive && r.ExpirationDate != nil && !r.ExpirationDate.After(now) {
			r.IsActive = false
			expired++
		}
	}
	return expired, s.ErrToReturn
}
