/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"time"

	"github.com/apex/log"
	"github.com/cccb/transferd/pkg/config"
	"github.com/cccb/transferd/pkg/tdb"
	"github.com/cccb/transferd/pkg/tdb/stor"
	"github.com/spf13/cobra"
)

// expireCmd is run from cron. It retires resources whose expiration date has
// passed so download validation stops accepting them.
var expireCmd = &cobra.Command{
	Use:   "expire",
	Short: "Mark resources past their expiration date as inactive",
	Run: func(cmd *cobra.Command, args []string) {
		dotenvFilePath := os.Getenv("TRANSFERD_DOTENV_PATH")
		if dotenvFilePath == "" {
			log.Fatalf("TRANSFERD_DOTENV_PATH not set or blank")
		}

		config.MustLoadFromDotenv(dotenvFilePath)

		db := tdb.MustConnectToDB()
		stors := stor.NewGormStors(db)

		expired, err := stors.ResourceStor.ExpireResources(time.Now())
		if err != nil {
			log.Fatalf("Unable to expire resources: %s", err)
		}

		log.Infof("Marked %d resources inactive", expired)
	},
}

func init() {
	rootCmd.AddCommand(expireCmd)
}
