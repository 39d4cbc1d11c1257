package stor

import (
	"time"

	"github.com/cccb/transferd/pkg/tdb/model"
	"gorm.io/gorm"
)

type GormTransferStor struct {
	db *gorm.DB
}

func NewGormTransferStor(db *gorm.DB) *GormTransferStor {
	return &GormTransferStor{db: db}
}

func (s *GormTransferStor) GetTransferByID(transferID int) (*model.Transfer, error) {
	var transfer model.Transfer

	if err := s.db.Preload("Resource").First(&transfer, transferID).Error; err != nil {
		return nil, err
	}

	return &transfer, nil
}

func (s *GormTransferStor) ListTransfers() ([]model.Transfer, error) {
	var transfers []model.Transfer
	err := s.db.Preload("Resource").Find(&transfers).Error
	return transfers, err
}

func (s *GormTransferStor) GetTransfersForCoordinator(coordinatorID int) ([]model.Transfer, error) {
	var transfers []model.Transfer
	err := s.db.Preload("Resource").Where("coordinator_id = ?", coordinatorID).Find(&transfers).Error
	return transfers, err
}

func (s *GormTransferStor) GetTransfersForUser(ownerID int) ([]model.Transfer, error) {
	var transfers []model.Transfer
	err := s.db.Preload("Resource").
		Joins("join resources on resources.id = transfers.resource_id").
		Where("resources.owner_id = ?", ownerID).
		Find(&transfers).Error
	return transfers, err
}

// GetResourcesWithIncompleteTransfersForUser returns the resources that are
// the subject of an incomplete transfer owned by the given user. The
// orchestrator uses this to refuse starting a second transfer for a file that
// is still in flight.
func (s *GormTransferStor) GetResourcesWithIncompleteTransfersForUser(ownerID int) ([]model.Resource, error) {
	var resources []model.Resource
	err := s.db.Model(&model.Resource{}).
		Joins("join transfers on transfers.resource_id = resources.id").
		Where("transfers.completed = ? and resources.owner_id = ?", false, ownerID).
		Find(&resources).Error
	return resources, err
}

// MarkTransferCompleted conditionally marks the transfer completed. The
// update only applies while completed is still false; a second completion
// report gets ErrAlreadyCompleted and leaves success and finish_time
// untouched.
func (s *GormTransferStor) MarkTransferCompleted(transferID int, success bool, finishedAt time.Time) (*model.Transfer, error) {
	// Resolve the transfer first so an unknown id surfaces as a not-found
	// error rather than as ErrAlreadyCompleted.
	if _, err := s.GetTransferByID(transferID); err != nil {
		return nil, err
	}

	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		result := tx.Model(&model.Transfer{}).
			Where("id = ? and completed = ?", transferID, false).
			Updates(map[string]interface{}{
				"completed":   true,
				"success":     success,
				"finish_time": finishedAt,
			})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrAlreadyCompleted
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return s.GetTransferByID(transferID)
}
