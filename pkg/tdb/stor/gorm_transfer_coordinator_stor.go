package stor

import (
	"time"

	"github.com/cccb/transferd/pkg/tdb/model"
	"github.com/hashicorp/go-uuid"
	"gorm.io/gorm"
)

type GormTransferCoordinatorStor struct {
	db *gorm.DB
}

func NewGormTransferCoordinatorStor(db *gorm.DB) *GormTransferCoordinatorStor {
	return &GormTransferCoordinatorStor{db: db}
}

// CreateBatch creates a coordinator and its transfers in a single
// transaction, so no reader can observe a transfer without its parent. A
// transfer carrying an unsaved Resource (ID == 0) gets that resource created
// in the same transaction; transfers for existing resources reference them by
// ResourceID.
func (s *GormTransferCoordinatorStor) CreateBatch(transfers []model.Transfer) (*model.TransferCoordinator, []model.Transfer, error) {
	var (
		err         error
		coordinator model.TransferCoordinator
	)

	if coordinator.UUID, err = uuid.GenerateUUID(); err != nil {
		return nil, nil, err
	}

	err = WithTxRetry(s.db, func(tx *gorm.DB) error {
		coordinator.ID = 0
		coordinator.Completed = false
		if err := tx.Create(&coordinator).Error; err != nil {
			return err
		}

		for i := range transfers {
			t := &transfers[i]

			if t.Resource != nil && t.Resource.ID == 0 {
				if t.Resource.UUID, err = uuid.GenerateUUID(); err != nil {
					return err
				}
				t.Resource.IsActive = true
				if err := tx.Create(t.Resource).Error; err != nil {
					return err
				}
			}
			if t.Resource != nil {
				t.ResourceID = t.Resource.ID
			}

			if t.UUID, err = uuid.GenerateUUID(); err != nil {
				return err
			}
			t.CoordinatorID = coordinator.ID
			if err := tx.Create(t).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, nil, err
	}

	return &coordinator, transfers, nil
}

func (s *GormTransferCoordinatorStor) GetTransferCoordinatorByID(coordinatorID int) (*model.TransferCoordinator, error) {
	var coordinator model.TransferCoordinator

	if err := s.db.First(&coordinator, coordinatorID).Error; err != nil {
		return nil, err
	}

	return &coordinator, nil
}

func (s *GormTransferCoordinatorStor) ListTransferCoordinators() ([]model.TransferCoordinator, error) {
	var coordinators []model.TransferCoordinator
	err := s.db.Find(&coordinators).Error
	return coordinators, err
}

func (s *GormTransferCoordinatorStor) GetTransferCoordinatorsForUser(ownerID int) ([]model.TransferCoordinator, error) {
	var coordinators []model.TransferCoordinator
	err := s.db.
		Joins("join transfers on transfers.coordinator_id = transfer_coordinators.id").
		Joins("join resources on resources.id = transfers.resource_id").
		Where("resources.owner_id = ?", ownerID).
		Distinct().
		Find(&coordinators).Error
	return coordinators, err
}

// MarkCoordinatorCompleteIfAllDone marks the coordinator completed when every
// one of its transfers has completed. The aggregate check and the conditional
// write run in one transaction, so two concurrent completion reports for the
// last transfers of a batch cannot both skip the final write, and at most one
// of them observes the coordinator flipping to completed. It returns true only
// for the caller whose update performed the flip.
func (s *GormTransferCoordinatorStor) MarkCoordinatorCompleteIfAllDone(coordinatorID int, finishedAt time.Time) (bool, error) {
	becameComplete := false

	err := WithTxRetry(s.db, func(tx *gorm.DB) error {
		becameComplete = false

		var coordinator model.TransferCoordinator
		if err := tx.First(&coordinator, coordinatorID).Error; err != nil {
			return err
		}

		var incomplete int64
		err := tx.Model(&model.Transfer{}).
			Where("coordinator_id = ? and completed = ?", coordinatorID, false).
			Count(&incomplete).Error
		if err != nil {
			return err
		}

		if incomplete > 0 {
			return nil
		}

		result := tx.Model(&model.TransferCoordinator{}).
			Where("id = ? and completed = ?", coordinatorID, false).
			Updates(map[string]interface{}{
				"completed":   true,
				"finish_time": finishedAt,
			})
		if result.Error != nil {
			return result.Error
		}

		becameComplete = result.RowsAffected == 1

		return nil
	})

	return becameComplete, err
}
