package webapi

import (
	"net/http"
	"strconv"

	"github.com/cccb/transferd/pkg/tdb/stor"
	"github.com/cccb/transferd/pkg/webapi/apimiddleware"
	"github.com/labstack/echo/v4"
)

type TransferController struct {
	transferStor stor.TransferStor
}

func NewTransferController(transferStor stor.TransferStor) *TransferController {
	return &TransferController{transferStor: transferStor}
}

// IndexTransfers lists the requester's transfers; admins see everyone's.
func (c *TransferController) IndexTransfers(ctx echo.Context) error {
	user, err := apimiddleware.GetUser(ctx)
	if err != nil {
		return err
	}

	if user.IsAdmin {
		transfers, err := c.transferStor.ListTransfers()
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, transfers)
	}

	transfers, err := c.transferStor.GetTransfersForUser(user.ID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, transfers)
}

func (c *TransferController) GetTransfer(ctx echo.Context) error {
	user, err := apimiddleware.GetUser(ctx)
	if err != nil {
		return err
	}

	transferID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return echo.ErrNotFound
	}

	transfer, err := c.transferStor.GetTransferByID(transferID)
	if err != nil {
		return echo.ErrNotFound
	}

	if !user.IsAdmin && (transfer.Resource == nil || transfer.Resource.OwnerID != user.ID) {
		return echo.ErrNotFound
	}

	return ctx.JSON(http.StatusOK, transfer)
}
