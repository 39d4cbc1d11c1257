package stor

import (
	"time"

	"github.com/cccb/transferd/pkg/tdb/model"
	"github.com/hashicorp/go-uuid"
	"gorm.io/gorm"
)

type GormResourceStor struct {
	db *gorm.DB
}

func NewGormResourceStor(db *gorm.DB) *GormResourceStor {
	return &GormResourceStor{db: db}
}

func (s *GormResourceStor) CreateResource(resource *model.Resource) (*model.Resource, error) {
	var err error

	if resource.UUID, err = uuid.GenerateUUID(); err != nil {
		return nil, err
	}

	resource.IsActive = true

	err = WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Create(resource).Error
	})

	if err != nil {
		return nil, err
	}

	return resource, nil
}

func (s *GormResourceStor) GetResourceByID(resourceID int) (*model.Resource, error) {
	var resource model.Resource

	if err := s.db.Preload("Owner").First(&resource, resourceID).Error; err != nil {
		return nil, err
	}

	return &resource, nil
}

func (s *GormResourceStor) ListResources() ([]model.Resource, error) {
	var resources []model.Resource
	err := s.db.Find(&resources).Error
	return resources, err
}

func (s *GormResourceStor) GetResourcesForUser(ownerID int) ([]model.Resource, error) {
	var resources []model.Resource
	err := s.db.Where("owner_id = ?", ownerID).Find(&resources).Error
	return resources, err
}

func (s *GormResourceStor) GetActiveResourcesForUser(ownerID int) ([]model.Resource, error) {
	var resources []model.Resource
	err := s.db.Where("owner_id = ? and is_active = ?", ownerID, true).Find(&resources).Error
	return resources, err
}

func (s *GormResourceStor) MarkResourceInactive(resourceID int) error {
	return WithTxRetry(s.db, func(tx *gorm.DB) error {
		return tx.Model(&model.Resource{}).Where("id = ?", resourceID).Update("is_active", false).Error
	})
}

// ExpireResources marks every active resource whose expiration date has
// passed as inactive, returning the number of rows changed.
func (s *GormResourceStor) ExpireResources(now time.Time) (int64, error) {
	var expired int64

	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		result := tx.Model(&model.Resource{}).
			Where("is_active = ? and expiration_date is not null and expiration_date <= ?", true, now).
			Update("is_active", false)
		expired = result.RowsAffected
		return result.Error
	})

	return expired, err
}
