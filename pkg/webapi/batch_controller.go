package webapi

import (
	"net/http"
	"strconv"

	"github.com/cccb/transferd/pkg/tdb/model"
	"github.com/cccb/transferd/pkg/tdb/stor"
	"github.com/cccb/transferd/pkg/webapi/apimiddleware"
	"github.com/labstack/echo/v4"
)

type BatchController struct {
	coordinatorStor stor.TransferCoordinatorStor
	transferStor    stor.TransferStor
}

func NewBatchController(coordinatorStor stor.TransferCoordinatorStor, transferStor stor.TransferStor) *BatchController {
	return &BatchController{coordinatorStor: coordinatorStor, transferStor: transferStor}
}

type BatchStatus struct {
	Coordinator *model.TransferCoordinator `json:"coordinator"`
	Transfers   []model.Transfer           `json:"transfers"`
}

// IndexBatches lists the requester's transfer batches; admins see everyone's.
func (c *BatchController) IndexBatches(ctx echo.Context) error {
	user, err := apimiddleware.GetUser(ctx)
	if err != nil {
		return err
	}

	if user.IsAdmin {
		coordinators, err := c.coordinatorStor.ListTransferCoordinators()
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, coordinators)
	}

	coordinators, err := c.coordinatorStor.GetTransferCoordinatorsForUser(user.ID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, coordinators)
}

// GetBatch returns one batch with its transfers. Foreign batches render as
// 404 for non-admins.
func (c *BatchController) GetBatch(ctx echo.Context) error {
	user, err := apimiddleware.GetUser(ctx)
	if err != nil {
		return err
	}

	coordinatorID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return echo.ErrNotFound
	}

	coordinator, err := c.coordinatorStor.GetTransferCoordinatorByID(coordinatorID)
	if err != nil {
		return echo.ErrNotFound
	}

	transfers, err := c.transferStor.GetTransfersForCoordinator(coordinatorID)
	if err != nil {
		return err
	}

	if !user.IsAdmin && !anyOwnedBy(transfers, user.ID) {
		return echo.ErrNotFound
	}

	return ctx.JSON(http.StatusOK, BatchStatus{Coordinator: coordinator, Transfers: transfers})
}

func anyOwnedBy(transfers []model.Transfer, ownerID int) bool {
	for _, t := range transfers {
		if t.Resource != nil && t.Resource.OwnerID == ownerID {
			return true
		}
	}
	return false
}
