package cmd

import (
	"github.com/cccb/transferd/pkg/oauth"
	"github.com/cccb/transferd/pkg/tdb/stor"
	"github.com/cccb/transferd/pkg/transfer"
	"github.com/cccb/transferd/pkg/webapi"
	"github.com/cccb/transferd/pkg/webapi/apimiddleware"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type RouteOpts struct {
	stors        *stor.Stors
	orchestrator *transfer.Orchestrator
	reconciler   *transfer.Reconciler
	tokenClient  *oauth.TokenClient
}

func setupRoutes(e *echo.Echo, opts RouteOpts) {
	// The completion callback authenticates through its encrypted payload
	// token, not the api key middleware. Workers have no api key.
	transferCompleteController := webapi.NewTransferCompleteController(opts.reconciler)
	e.POST("/transfers/complete", transferCompleteController.TransferComplete)

	apikeyCache := apimiddleware.NewAPIKeyCache(opts.stors.UserStor)

	g := e.Group("/api")
	g.Use(apimiddleware.APIKeyAuth(apimiddleware.APIKeyConfig{
		Skipper:         middleware.DefaultSkipper,
		Keyname:         "X-API-Key",
		GetUserByAPIKey: apikeyCache.GetUserByAPIKey,
	}))

	transferUploadController := webapi.NewTransferUploadController(opts.orchestrator)
	g.POST("/uploads", transferUploadController.StartUpload)

	transferDownloadController := webapi.NewTransferDownloadController(opts.orchestrator, opts.tokenClient)
	g.POST("/downloads", transferDownloadController.StartDownload)

	resourceController := webapi.NewResourceController(opts.stors.ResourceStor)
	g.GET("/resources", resourceController.IndexResources)
	g.GET("/resources/:id", resourceController.GetResource)

	transferController := webapi.NewTransferController(opts.stors.TransferStor)
	g.GET("/transfers", transferController.IndexTransfers)
	g.GET("/transfers/:id", transferController.GetTransfer)

	batchController := webapi.NewBatchController(opts.stors.TransferCoordinatorStor, opts.stors.TransferStor)
	g.GET("/batches", batchController.IndexBatches)
	g.GET("/batches/:id", batchController.GetBatch)
}
