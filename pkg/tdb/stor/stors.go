package stor

import (
	"errors"
	"time"

	"github.com/cccb/transferd/pkg/tdb/model"
	"gorm.io/gorm"
)

var (
	ErrNotImplemented = errors.New("not implemented")

	// ErrAlreadyCompleted is returned by conditional completion updates when
	// the row was already marked completed. Completion state never regresses:
	// success and finish_time are immutable once set.
	ErrAlreadyCompleted = errors.New("already completed")
)

type UserStor interface {
	CreateUser(user *model.User) (*model.User, error)
	GetUserByID(userID int) (*model.User, error)
	GetUserByAPIToken(apiToken string) (*model.User, error)
}

type ResourceStor interface {
	CreateResource(resource *model.Resource) (*model.Resource, error)
	GetResourceByID(resourceID int) (*model.Resource, error)
	ListResources() ([]model.Resource, error)
	GetResourcesForUser(ownerID int) ([]model.Resource, error)
	GetActiveResourcesForUser(ownerID int) ([]model.Resource, error)
	MarkResourceInactive(resourceID int) error
	ExpireResources(now time.Time) (int64, error)
}

type TransferStor interface {
	GetTransferByID(transferID int) (*model.Transfer, error)
	ListTransfers() ([]model.Transfer, error)
	GetTransfersForCoordinator(coordinatorID int) ([]model.Transfer, error)
	GetTransfersForUser(ownerID int) ([]model.Transfer, error)
	GetResourcesWithIncompleteTransfersForUser(ownerID int) ([]model.Resource, error)
	MarkTransferCompleted(transferID int, success bool, finishedAt time.Time) (*model.Transfer, error)
}

type TransferCoordinatorStor interface {
	CreateBatch(transfers []model.Transfer) (*model.TransferCoordinator, []model.Transfer, error)
	GetTransferCoordinatorByID(coordinatorID int) (*model.TransferCoordinator, error)
	ListTransferCoordinators() ([]model.TransferCoordinator, error)
	GetTransferCoordinatorsForUser(ownerID int) ([]model.TransferCoordinator, error)
	MarkCoordinatorCompleteIfAllDone(coordinatorID int, finishedAt time.Time) (bool, error)
}

type Stors struct {
	UserStor                UserStor
	ResourceStor            ResourceStor
	TransferStor            TransferStor
	TransferCoordinatorStor TransferCoordinatorStor
}

func NewGormStors(db *gorm.DB) *Stors {
	return &Stors{
		UserStor:                NewGormUserStor(db),
		ResourceStor:            NewGormResourceStor(db),
		TransferStor:            NewGormTransferStor(db),
		TransferCoordinatorStor: NewGormTransferCoordinatorStor(db),
	}
}
