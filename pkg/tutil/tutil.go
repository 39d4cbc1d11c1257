// Package tutil holds shared test helpers: a migrated in-memory database and
// seed functions for the entities most tests need.
package tutil

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cccb/transferd/pkg/tdb"
	"github.com/cccb/transferd/pkg/tdb/model"
	"github.com/cccb/transferd/pkg/tdb/stor"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func IsIntegrationTest() bool {
	testType := os.Getenv("TRANSFERD_TEST")
	return strings.ToLower(testType) == "integration"
}

type NullLogger struct{}

func (l *NullLogger) Printf(_ string, _ ...interface{}) {
}

// NewTestDB opens a private in-memory sqlite database, runs the migrations
// and returns it with its stors. The single connection keeps the shared
// cache database alive for the duration of the test.
func NewTestDB(t *testing.T) (*gorm.DB, *stor.Stors) {
	gormLogger := logger.New(&NullLogger{},
		logger.Config{
			SlowThreshold:             time.Second * 5,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		})

	db, err := gorm.Open(sqlite.Open(tdb.SqliteInMemoryDSN), &gorm.Config{Logger: gormLogger})
	require.NoErrorf(t, err, "gorm.Open failed: %s", err)

	sqlitedb, err := db.DB()
	require.NoError(t, err)
	sqlitedb.SetMaxOpenConns(1)

	err = tdb.RunMigrations(db)
	require.NoErrorf(t, err, "Migration failed with: %s", err)

	t.Cleanup(func() {
		// Drop the tables so the next test's shared cache db starts empty.
		_ = db.Migrator().DropTable(&model.Transfer{}, &model.TransferCoordinator{}, &model.Resource{}, &model.User{})
	})

	return db, stor.NewGormStors(db)
}

func CreateUser(t *testing.T, stors *stor.Stors, email, apiToken string, isAdmin bool) *model.User {
	user, err := stors.UserStor.CreateUser(&model.User{
		Name:     strings.Split(email, "@")[0],
		Email:    email,
		ApiToken: apiToken,
		IsAdmin:  isAdmin,
	})
	require.NoErrorf(t, err, "Failed creating user %s: %s", email, err)
	return user
}

func CreateResource(t *testing.T, stors *stor.Stors, owner *model.User, path string, size int64) *model.Resource {
	resource, err := stors.ResourceStor.CreateResource(&model.Resource{
		Source:  "dropbox",
		Path:    path,
		Size:    size,
		OwnerID: owner.ID,
	})
	require.NoErrorf(t, err, "Failed creating resource %s: %s", path, err)
	return resource
}
