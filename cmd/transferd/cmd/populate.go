/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"os"

	"github.com/apex/log"
	"github.com/cccb/transferd/pkg/config"
	"github.com/cccb/transferd/pkg/tdb"
	"github.com/cccb/transferd/pkg/tdb/model"
	"github.com/cccb/transferd/pkg/tdb/stor"
	"github.com/spf13/cobra"
)

// populateCmd seeds the database from a JSON file. Rows that already exist
// are treated as already satisfied, so the command can run repeatedly.
var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Seed users and resources from the configured bootstrap file",
	Run: func(cmd *cobra.Command, args []string) {
		dotenvFilePath := os.Getenv("TRANSFERD_DOTENV_PATH")
		if dotenvFilePath == "" {
			log.Fatalf("TRANSFERD_DOTENV_PATH not set or blank")
		}

		c := config.MustLoadFromDotenv(dotenvFilePath)
		populatePath := c.MustGetKey("TRANSFERD_POPULATE_FILE")

		contents, err := os.ReadFile(populatePath)
		if err != nil {
			log.Fatalf("Unable to read populate file %s: %s", populatePath, err)
		}

		var seed struct {
			Users     []model.User     `json:"users"`
			Resources []model.Resource `json:"resources"`
		}

		if err := json.Unmarshal(contents, &seed); err != nil {
			log.Fatalf("Unable to parse populate file %s: %s", populatePath, err)
		}

		db := tdb.MustConnectToDB()
		if err := tdb.RunMigrations(db); err != nil {
			log.Fatalf("Unable to run migrations: %s", err)
		}

		stors := stor.NewGormStors(db)

		usersByEmail := make(map[string]*model.User)
		for i := range seed.Users {
			user, err := stors.UserStor.CreateUser(&seed.Users[i])
			if err != nil {
				log.Fatalf("Unable to create user %s: %s", seed.Users[i].Email, err)
			}
			usersByEmail[user.Email] = user
			log.Infof("User %s (id %d)", user.Email, user.ID)
		}

		for i := range seed.Resources {
			resource := &seed.Resources[i]

			// Resources may name their owner by email rather than id.
			if resource.OwnerID == 0 && resource.Owner != nil {
				owner, ok := usersByEmail[resource.Owner.Email]
				if !ok {
					log.Fatalf("Resource %s references unknown owner %s", resource.Path, resource.Owner.Email)
				}
				resource.OwnerID = owner.ID
				resource.Owner = nil
			}

			if _, err := stors.ResourceStor.CreateResource(resource); err != nil {
				log.Fatalf("Unable to create resource %s: %s", resource.Path, err)
			}
			log.Infof("Resource %s (id %d)", resource.Path, resource.ID)
		}
	},
}

func init() {
	rootCmd.AddCommand(populateCmd)
}
