package webapi

import (
	"encoding/json"
	"net/http"

	"github.com/cccb/transferd/pkg/transfer"
	"github.com/cccb/transferd/pkg/webapi/apimiddleware"
	"github.com/labstack/echo/v4"
)

type TransferUploadController struct {
	orchestrator *transfer.Orchestrator
}

func NewTransferUploadController(orchestrator *transfer.Orchestrator) *TransferUploadController {
	return &TransferUploadController{orchestrator: orchestrator}
}

// StartUpload initiates an upload batch. upload_info may be a single item or
// a list of items; which item fields are required depends on upload_source.
func (c *TransferUploadController) StartUpload(ctx echo.Context) error {
	var req struct {
		UploadSource string          `json:"upload_source"`
		UploadInfo   json.RawMessage `json:"upload_info"`
	}

	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := apimiddleware.GetUser(ctx)
	if err != nil {
		return err
	}

	provider, err := transfer.ParseProvider(req.UploadSource)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	items, err := transfer.NormalizeUploadItems(req.UploadInfo)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := c.orchestrator.StartUpload(ctx.Request().Context(), provider, user, items)
	if err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(http.StatusCreated, result)
}
