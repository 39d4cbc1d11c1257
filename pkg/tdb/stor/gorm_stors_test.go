package stor_test

import (
	"testing"
	"time"

	"github.com/cccb/transferd/pkg/tdb/model"
	"github.com/cccb/transferd/pkg/tdb/stor"
	"github.com/cccb/transferd/pkg/tutil"
	"github.com/stretchr/testify/require"
)

func createTestBatch(t *testing.T, stors *stor.Stors, owner *model.User, paths ...string) (*model.TransferCoordinator, []model.Transfer) {
	transfers := make([]model.Transfer, len(paths))
	for i, path := range paths {
		transfers[i] = model.Transfer{
			Destination: "users-bucket/1/" + path,
			Resource: &model.Resource{
				Source:  "dropbox",
				Path:    path,
				Size:    100,
				OwnerID: owner.ID,
			},
		}
	}

	coordinator, created, err := stors.TransferCoordinatorStor.CreateBatch(transfers)
	require.NoError(t, err)
	return coordinator, created
}

func TestCreateBatchCreatesCoordinatorTransfersAndResources(t *testing.T) {
	_, stors := tutil.NewTestDB(t)
	user := tutil.CreateUser(t, stors, "owner@test.com", "owner-key", false)

	coordinator, transfers := createTestBatch(t, stors, user, "/files/f1.txt", "/files/f2.txt")

	require.NotZero(t, coordinator.ID)
	require.NotEmpty(t, coordinator.UUID)
	require.False(t, coordinator.Completed)

	for _, tr := range transfers {
		require.NotZero(t, tr.ID)
		require.NotEmpty(t, tr.UUID)
		require.Equal(t, coordinator.ID, tr.CoordinatorID)
		require.NotZero(t, tr.ResourceID)
	}

	resources, err := stors.ResourceStor.GetResourcesForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, resources, 2)
	for _, r := range resources {
		require.True(t, r.IsActive)
	}
}

func TestMarkTransferCompleted(t *testing.T) {
	_, stors := tutil.NewTestDB(t)
	user := tutil.CreateUser(t, stors, "owner@test.com", "owner-key", false)
	_, transfers := createTestBatch(t, stors, user, "/files/f1.txt")

	now := time.Now()
	completed, err := stors.TransferStor.MarkTransferCompleted(transfers[0].ID, true, now)
	require.NoError(t, err)
	require.True(t, completed.Completed)
	require.True(t, completed.Success)
	require.NotNil(t, completed.FinishTime)

	// A second completion must not overwrite the first.
	_, err = stors.TransferStor.MarkTransferCompleted(transfers[0].ID, false, now.Add(time.Minute))
	require.ErrorIs(t, err, stor.ErrAlreadyCompleted)

	unchanged, err := stors.TransferStor.GetTransferByID(transfers[0].ID)
	require.NoError(t, err)
	require.True(t, unchanged.Success)

	// Unknown ids are a not-found error, not ErrAlreadyCompleted.
	_, err = stors.TransferStor.MarkTransferCompleted(99999, true, now)
	require.Error(t, err)
	require.NotErrorIs(t, err, stor.ErrAlreadyCompleted)
}

func TestMarkCoordinatorCompleteIfAllDone(t *testing.T) {
	_, stors := tutil.NewTestDB(t)
	user := tutil.CreateUser(t, stors, "owner@test.com", "owner-key", false)
	coordinator, transfers := createTestBatch(t, stors, user, "/files/f1.txt", "/files/f2.txt")

	now := time.Now()

	// One of two transfers complete: no flip.
	_, err := stors.TransferStor.MarkTransferCompleted(transfers[0].ID, true, now)
	require.NoError(t, err)

	became, err := stors.TransferCoordinatorStor.MarkCoordinatorCompleteIfAllDone(coordinator.ID, now)
	require.NoError(t, err)
	require.False(t, became)

	// All complete: exactly one caller observes the flip.
	_, err = stors.TransferStor.MarkTransferCompleted(transfers[1].ID, true, now)
	require.NoError(t, err)

	became, err = stors.TransferCoordinatorStor.MarkCoordinatorCompleteIfAllDone(coordinator.ID, now)
	require.NoError(t, err)
	require.True(t, became)

	became, err = stors.TransferCoordinatorStor.MarkCoordinatorCompleteIfAllDone(coordinator.ID, now)
	require.NoError(t, err)
	require.False(t, became)
}

func TestGetResourcesWithIncompleteTransfersForUser(t *testing.T) {
	_, stors := tutil.NewTestDB(t)
	user := tutil.CreateUser(t, stors, "owner@test.com", "owner-key", false)
	other := tutil.CreateUser(t, stors, "other@test.com", "other-key", false)

	_, transfers := createTestBatch(t, stors, user, "/files/f1.txt", "/files/f2.txt")
	createTestBatch(t, stors, other, "/files/theirs.txt")

	inFlight, err := stors.TransferStor.GetResourcesWithIncompleteTransfersForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, inFlight, 2)

	_, err = stors.TransferStor.MarkTransferCompleted(transfers[0].ID, true, time.Now())
	require.NoError(t, err)

	inFlight, err = stors.TransferStor.GetResourcesWithIncompleteTransfersForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, inFlight, 1)
	require.Equal(t, "/files/f2.txt", inFlight[0].Path)
}

func TestCreateUserTreatsDuplicateEmailAsSatisfied(t *testing.T) {
	_, stors := tutil.NewTestDB(t)

	first := tutil.CreateUser(t, stors, "owner@test.com", "owner-key", false)

	again, err := stors.UserStor.CreateUser(&model.User{Email: "owner@test.com", ApiToken: "different-key"})
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
}

func TestExpireResources(t *testing.T) {
	_, stors := tutil.NewTestDB(t)
	user := tutil.CreateUser(t, stors, "owner@test.com", "owner-key", false)

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired, err := stors.ResourceStor.CreateResource(&model.Resource{Source: "dropbox", Path: "/files/old.txt", OwnerID: user.ID, ExpirationDate: &past})
	require.NoError(t, err)
	fresh, err := stors.ResourceStor.CreateResource(&model.Resource{Source: "dropbox", Path: "/files/new.txt", OwnerID: user.ID, ExpirationDate: &future})
	require.NoError(t, err)
	unbounded, err := stors.ResourceStor.CreateResource(&model.Resource{Source: "dropbox", Path: "/files/keep.txt", OwnerID: user.ID})
	require.NoError(t, err)

	count, err := stors.ResourceStor.ExpireResources(now)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	active, err := stors.ResourceStor.GetActiveResourcesForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, active, 2)

	retired, err := stors.ResourceStor.GetResourceByID(expired.ID)
	require.NoError(t, err)
	require.False(t, retired.IsActive)

	for _, id := range []int{fresh.ID, unbounded.ID} {
		r, err := stors.ResourceStor.GetResourceByID(id)
		require.NoError(t, err)
		require.True(t, r.IsActive)
	}
}
