package transfer

import (
	"context"
	"errors"
	"testing"

	"github.com/cccb/transferd/pkg/launcher"
	"github.com/cccb/transferd/pkg/tutil"
	"github.com/stretchr/testify/require"
)

func testSettings() *Settings {
	return &Settings{
		Environment:  EnvironmentGoogle,
		UploadBucket: "users-bucket",
		Secrets: CallbackSecrets{
			Token:         "the-shared-token",
			EncryptionKey: "8bytekey",
			CallbackURL:   "https://transfers.test/transfers/complete",
		},
		ProviderConfigs: map[Provider]ProviderConfig{
			ProviderDropbox: {
				InstanceNamePrefix: "dropbox-worker",
				MachineType:        "n1-standard-1",
				SourceImage:        "dropbox-worker-image",
				DiskSizeFactor:     2,
				MinDiskSizeGB:      10,
				CLIPath:            "gcloud",
				ProjectID:          "test-project",
				Zone:               "us-central1-a",
			},
			ProviderGoogleDrive: {
				InstanceNamePrefix: "drive-worker",
				MachineType:        "n1-standard-1",
				SourceImage:        "drive-worker-image",
				DiskSizeFactor:     2,
				MinDiskSizeGB:      10,
				CLIPath:            "gcloud",
				ProjectID:          "test-project",
				Zone:               "us-central1-a",
			},
		},
	}
}

func TestStartUploadCreatesBatchAndLaunchesWorkers(t *testing.T) {
	_, stors := tutil.NewTestDB(t)
	user := tutil.CreateUser(t, stors, "owner@test.com", "owner-key", false)

	mock := launcher.NewMockLauncher()
	orchestrator := NewOrchestrator(testSettings(), stors, mock)

	result, err := orchestrator.StartUpload(context.Background(), ProviderDropbox, user, []UploadItem{
		{Path: "/files/f1.txt", SizeInBytes: 100},
		{Path: "/files/f2.txt", SizeInBytes: 200},
	})
	require.NoError(t, err)

	require.NotZero(t, result.Coordinator.ID)
	require.Len(t, result.Transfers, 2)
	require.Len(t, result.Launches, 2)
	require.Empty(t, result.Conflicts)

	for i, tr := range result.Transfers {
		require.NotZero(t, tr.ID)
		require.False(t, tr.Download)
		require.Equal(t, result.Coordinator.ID, tr.CoordinatorID)
		require.Equal(t, tr.ID, result.Launches[i].TransferID)
		require.Empty(t, result.Launches[i].Error)
	}

	require.Equal(t, "users-bucket/1/f1.txt", result.Transfers[0].Destination)

	// Every transfer got its own resource row.
	resources, err := stors.ResourceStor.GetResourcesForUser(user.ID)
	require.NoError(t, err)
	require.Len(t, resources, 2)

	launched := mock.Launched()
	require.Len(t, launched, 2)
	for _, spec := range launched {
		require.Equal(t, "gcloud", spec.Program)
		require.Contains(t, spec.Args, "create-with-container")
	}
}

func TestStartUploadSkipsConflictingItems(t *testing.T) {
	_, stors := tutil.NewTestDB(t)
	user := tutil.CreateUser(t, stors, "owner@test.com", "owner-key", false)

	mock := launcher.NewMockLauncher()
	orchestrator := NewOrchestrator(testSettings(), stors, mock)

	first, err := orchestrator.StartUpload(context.Background(), ProviderDropbox, user, []UploadItem{
		{Path: "/files/f1.txt", SizeInBytes: 100},
	})
	require.NoError(t, err)

	// f1 is still in flight, so only f2 may start.
	second, err := orchestrator.StartUpload(context.Background(), ProviderDropbox, user, []UploadItem{
		{Path: "/files/f1.txt", SizeInBytes: 100},
		{Path: "/files/f2.txt", SizeInBytes: 200},
	})
	require.NoError(t, err)
	require.Len(t, second.Transfers, 1)
	require.Len(t, second.Conflicts, 1)
	require.Contains(t, second.Conflicts[0], "f1.txt")
	require.NotEqual(t, first.Coordinator.ID, second.Coordinator.ID)

	// Nothing transferable at all is an error, not an empty batch.
	_, err = orchestrator.StartUpload(context.Background(), ProviderDropbox, user, []UploadItem{
		{Path: "/files/f1.txt", SizeInBytes: 100},
	})
	require.ErrorIs(t, err, ErrNoTransferableItems)
}

func TestStartUploadLaunchFailureDoesNotRollBack(t *testing.T) {
	_, stors := tutil.NewTestDB(t)
	user := tutil.CreateUser(t, stors, "owner@test.com", "owner-key", false)

	mock := launcher.NewMockLauncher()
	mock.SetError(errors.New("gcloud exploded"))
	orchestrator := NewOrchestrator(testSettings(), stors, mock)

	result, err := orchestrator.StartUpload(context.Background(), ProviderDropbox, user, []UploadItem{
		{Path: "/files/f1.txt", SizeInBytes: 100},
		{Path: "/files/f2.txt", SizeInBytes: 200},
	})
	require.NoError(t, err)

	for _, outcome := range result.Launches {
		require.Contains(t, outcome.Error, "gcloud exploded")
	}

	// The batch survives so the transfers can still be reconciled or retried.
	coordinator, err := stors.TransferCoordinatorStor.GetTransferCoordinatorByID(result.Coordinator.ID)
	require.NoError(t, err)
	require.False(t, coordinator.Completed)

	transfers, err := stors.TransferStor.GetTransfersForCoordinator(result.Coordinator.ID)
	require.NoError(t, err)
	require.Len(t, transfers, 2)
}

func TestStartUploadRejectsUnsupportedCombination(t *testing.T) {
	_, stors := tutil.NewTestDB(t)
	user := tutil.CreateUser(t, stors, "owner@test.com", "owner-key", false)

	settings := testSettings()
	settings.Environment = "azure"
	orchestrator := NewOrchestrator(settings, stors, launcher.NewMockLauncher())

	_, err := orchestrator.StartUpload(context.Background(), ProviderDropbox, user, []UploadItem{
		{Path: "/files/f1.txt"},
	})
	require.ErrorIs(t, err, ErrUnsupportedCombination)
}

func TestStartDownload(t *testing.T) {
	_, stors := tutil.NewTestDB(t)
	user := tutil.CreateUser(t, stors, "owner@test.com", "owner-key", false)
	r1 := tutil.CreateResource(t, stors, user, "/files/f1.txt", 100)
	r2 := tutil.CreateResource(t, stors, user, "/files/f2.txt", 200)

	mock := launcher.NewMockLauncher()
	orchestrator := NewOrchestrator(testSettings(), stors, mock)

	result, err := orchestrator.StartDownload(context.Background(), ProviderGoogleDrive, user, []int{r1.ID, r2.ID}, "provider-token")
	require.NoError(t, err)

	require.Len(t, result.Transfers, 2)
	for _, tr := range result.Transfers {
		require.True(t, tr.Download)
		require.Equal(t, result.Coordinator.ID, tr.CoordinatorID)
	}
	require.Equal(t, r1.ID, result.Transfers[0].ResourceID)

	require.Len(t, mock.Launched(), 2)
}

func TestStartDownloadRejectsForeignResource(t *testing.T) {
	_, stors := tutil.NewTestDB(t)
	user := tutil.CreateUser(t, stors, "owner@test.com", "owner-key", false)
	other := tutil.CreateUser(t, stors, "other@test.com", "other-key", false)
	foreign := tutil.CreateResource(t, stors, other, "/files/foreign.txt", 100)

	orchestrator := NewOrchestrator(testSettings(), stors, launcher.NewMockLauncher())

	_, err := orchestrator.StartDownload(context.Background(), ProviderDropbox, user, []int{foreign.ID}, "")
	require.ErrorIs(t, err, ErrUnauthorizedOrInactiveResource)
}
