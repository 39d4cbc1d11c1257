package transfer

import (
	"testing"

	"github.com/cccb/transferd/pkg/config"
	"github.com/stretchr/testify/require"
)

func testSettingsConfig(extra map[string]string) config.Configer {
	entries := map[string]string{
		"COMPUTE_ENVIRONMENT":   "google",
		"UPLOAD_BUCKET":         "users-bucket",
		"TRANSFER_TOKEN":        "the-shared-token",
		"TRANSFER_ENC_KEY":      "8bytekey",
		"TRANSFER_CALLBACK_URL": "https://transfers.test/transfers/complete",
		"GOOGLE_PROJECT_ID":     "test-project",
		"GOOGLE_ZONE":           "us-central1-a",

		"GOOGLE_DROPBOX_MACHINE_TYPE":          "n1-standard-1",
		"GOOGLE_DROPBOX_SOURCE_IMAGE":          "dropbox-worker",
		"GOOGLE_DROPBOX_DISK_SIZE_FACTOR":      "3",
		"GOOGLE_DROPBOX_MIN_DISK_SIZE_GB":      "20",
		"GOOGLE_GOOGLE_DRIVE_MACHINE_TYPE":     "n1-standard-2",
		"GOOGLE_GOOGLE_DRIVE_SOURCE_IMAGE":     "drive-worker",
		"GOOGLE_GOOGLE_DRIVE_DISK_SIZE_FACTOR": "2.5",
	}

	for key, value := range extra {
		entries[key] = value
	}

	return config.NewMapConfig(entries)
}

func TestLoadSettings(t *testing.T) {
	settings, err := LoadSettings(testSettingsConfig(nil))
	require.NoError(t, err)

	require.Equal(t, EnvironmentGoogle, settings.Environment)
	require.Equal(t, "users-bucket", settings.UploadBucket)
	require.Equal(t, "the-shared-token", settings.Secrets.Token)

	dropbox := settings.ProviderConfigs[ProviderDropbox]
	require.Equal(t, "n1-standard-1", dropbox.MachineType)
	require.Equal(t, "dropbox-worker", dropbox.SourceImage)
	require.Equal(t, 3.0, dropbox.DiskSizeFactor)
	require.Equal(t, 20, dropbox.MinDiskSizeGB)
	require.Equal(t, "test-project", dropbox.ProjectID)
	require.Equal(t, "gcloud", dropbox.CLIPath)

	drive := settings.ProviderConfigs[ProviderGoogleDrive]
	require.Equal(t, "n1-standard-2", drive.MachineType)
	require.Equal(t, 2.5, drive.DiskSizeFactor)
	require.Equal(t, 10, drive.MinDiskSizeGB)
}

func TestLoadSettingsRejectsBadEncryptionKey(t *testing.T) {
	_, err := LoadSettings(testSettingsConfig(map[string]string{"TRANSFER_ENC_KEY": "too-long-for-des"}))
	require.Error(t, err)
}

func TestLoadSettingsRejectsBadDiskSizeFactor(t *testing.T) {
	_, err := LoadSettings(testSettingsConfig(map[string]string{"GOOGLE_DROPBOX_DISK_SIZE_FACTOR": "lots"}))
	require.Error(t, err)
}
