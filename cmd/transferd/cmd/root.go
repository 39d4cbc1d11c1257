/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"time"

	"github.com/apex/log"
	"github.com/cccb/transferd/pkg/config"
	"github.com/cccb/transferd/pkg/launcher"
	"github.com/cccb/transferd/pkg/notify"
	"github.com/cccb/transferd/pkg/oauth"
	"github.com/cccb/transferd/pkg/tdb"
	"github.com/cccb/transferd/pkg/tdb/stor"
	"github.com/cccb/transferd/pkg/transfer"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "transferd",
	Short: "Run the transfer orchestration server",
	Long: `transferd brokers file transfers between central storage and external
storage providers. It validates transfer requests, launches short-lived worker
instances that move the bytes, and reconciles the completion callbacks those
workers post back.`,
	Run: func(cmd *cobra.Command, args []string) {
		dotenvFilePath := os.Getenv("TRANSFERD_DOTENV_PATH")
		if dotenvFilePath == "" {
			log.Fatalf("TRANSFERD_DOTENV_PATH not set or blank")
		}

		c := config.MustLoadFromDotenv(dotenvFilePath)

		settings, err := transfer.LoadSettings(c)
		if err != nil {
			log.Fatalf("Bad transfer settings: %s", err)
		}

		db := tdb.MustConnectToDB()
		stors := stor.NewGormStors(db)

		launchTimeout := time.Duration(c.GetIntKeyWithDefault("LAUNCH_TIMEOUT_SECONDS", 0)) * time.Second

		notifier := makeNotifier(c)
		orchestrator := transfer.NewOrchestrator(settings, stors, launcher.NewCommandLauncher(launchTimeout))
		reconciler := transfer.NewReconciler(settings.Secrets, stors, notifier)

		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		e.Use(middleware.Recover())

		setupRoutes(e, RouteOpts{
			stors:        stors,
			orchestrator: orchestrator,
			reconciler:   reconciler,
			tokenClient:  makeTokenClient(c),
		})

		log.Infof("Compute environment: %s", settings.Environment)

		if err := e.Start(":" + c.GetKeyWithDefault("TRANSFERD_PORT", "1360")); err != nil {
			log.Fatalf("Unable to start server: %s", err)
		}
	},
}

func makeNotifier(c config.Configer) notify.Notifier {
	natsURL := c.GetKey("NATS_URL")
	if natsURL == "" {
		return notify.NewLogNotifier()
	}

	notifier, err := notify.NewNatsNotifier(natsURL)
	if err != nil {
		log.Fatalf("Unable to connect to NATS at %s: %s", natsURL, err)
	}

	return notifier
}

func makeTokenClient(c config.Configer) *oauth.TokenClient {
	tokenURL := c.GetKey("OAUTH_TOKEN_URL")
	if tokenURL == "" {
		return nil
	}

	return oauth.NewTokenClient(tokenURL,
		c.MustGetKey("OAUTH_CLIENT_ID"),
		c.MustGetKey("OAUTH_CLIENT_SECRET"),
		c.MustGetKey("OAUTH_REDIRECT_URI"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
