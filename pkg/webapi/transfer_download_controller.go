package webapi

import (
	"net/http"

	"github.com/cccb/transferd/pkg/oauth"
	"github.com/cccb/transferd/pkg/transfer"
	"github.com/cccb/transferd/pkg/webapi/apimiddleware"
	"github.com/labstack/echo/v4"
)

type TransferDownloadController struct {
	orchestrator *transfer.Orchestrator
	tokenClient  *oauth.TokenClient
}

// NewTransferDownloadController creates the download controller. tokenClient
// may be nil when no OAuth exchange is configured; requests must then carry
// an access token directly if the destination needs one.
func NewTransferDownloadController(orchestrator *transfer.Orchestrator, tokenClient *oauth.TokenClient) *TransferDownloadController {
	return &TransferDownloadController{orchestrator: orchestrator, tokenClient: tokenClient}
}

// StartDownload initiates a download batch for the given resources. The
// destination provider may require an access token, supplied either directly
// or as an authorization code to exchange.
func (c *TransferDownloadController) StartDownload(ctx echo.Context) error {
	var req struct {
		ResourcePKs []int  `json:"resource_pks"`
		Destination string `json:"destination"`
		Code        string `json:"code"`
		AccessToken string `json:"access_token"`
	}

	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := apimiddleware.GetUser(ctx)
	if err != nil {
		return err
	}

	provider, err := transfer.ParseProvider(req.Destination)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	accessToken := req.AccessToken
	if accessToken == "" && req.Code != "" {
		if c.tokenClient == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "authorization code exchange is not configured")
		}

		if accessToken, err = c.tokenClient.ExchangeCode(req.Code); err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
	}

	result, err := c.orchestrator.StartDownload(ctx.Request().Context(), provider, user, req.ResourcePKs, accessToken)
	if err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(http.StatusCreated, result)
}
