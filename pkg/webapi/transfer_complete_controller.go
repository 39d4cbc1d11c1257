package webapi

import (
	"net/http"

	"github.com/cccb/transferd/pkg/transfer"
	"github.com/labstack/echo/v4"
)

type TransferCompleteController struct {
	reconciler *transfer.Reconciler
}

func NewTransferCompleteController(reconciler *transfer.Reconciler) *TransferCompleteController {
	return &TransferCompleteController{reconciler: reconciler}
}

// TransferComplete is the callback workers post when they finish. It sits
// outside the api key middleware; the encrypted token in the payload is the
// only authentication, and any auth failure renders as a plain 404.
func (c *TransferCompleteController) TransferComplete(ctx echo.Context) error {
	var payload transfer.CompletionPayload

	if err := ctx.Bind(&payload); err != nil {
		return echo.ErrNotFound
	}

	if _, err := c.reconciler.ReportCompletion(payload); err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(http.StatusOK, map[string]string{"message": "thanks"})
}
