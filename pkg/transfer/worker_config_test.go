package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDiskSizeGB(t *testing.T) {
	var tests = []struct {
		name        string
		sizeInBytes int64
		factor      float64
		minGB       int
		expected    int
	}{
		{name: "large file scales with factor", sizeInBytes: 100_000_000_000, factor: 3, minGB: 10, expected: 300},
		{name: "small file floors at minimum", sizeInBytes: 1_000_000, factor: 3, minGB: 10, expected: 10},
		{name: "zero size floors at minimum", sizeInBytes: 0, factor: 2, minGB: 25, expected: 25},
		{name: "fractional result truncates", sizeInBytes: 1_500_000_000, factor: 1, minGB: 1, expected: 1},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, DiskSizeGB(test.sizeInBytes, test.factor, test.minGB))
		})
	}
}

func TestInstanceName(t *testing.T) {
	now := time.Date(2026, 3, 7, 14, 5, 9, 0, time.UTC)
	require.Equal(t, "worker-030726140509-2", InstanceName("worker", now, 2))
}

func TestNewWorkerConfigBuildsFreshMetadata(t *testing.T) {
	cfg := ProviderConfig{
		InstanceNamePrefix: "worker",
		MachineType:        "n1-standard-1",
		SourceImage:        "worker-image",
		DiskSizeFactor:     2,
		MinDiskSizeGB:      10,
	}
	secrets := CallbackSecrets{Token: "tok", EncryptionKey: "8bytekey", CallbackURL: "https://transfers.test/complete"}

	now := time.Now()
	first := NewWorkerConfig(cfg, secrets, 1, 100, 0, 0, now)
	second := NewWorkerConfig(cfg, secrets, 2, 100, 0, 1, now)

	first.Metadata["path"] = "/a"
	second.Metadata["path"] = "/b"

	require.Equal(t, "/a", first.Metadata["path"])
	require.Equal(t, "/b", second.Metadata["path"])
	require.Equal(t, "1", first.Metadata["transfer_pk"])
	require.Equal(t, "2", second.Metadata["transfer_pk"])
	require.NotEqual(t, first.InstanceName, second.InstanceName)
}

func TestWorkerConfigMetadataKeysAreSorted(t *testing.T) {
	cfg := ProviderConfig{InstanceNamePrefix: "worker", StartupScriptURL: "https://scripts.test/start.sh"}
	secrets := CallbackSecrets{Token: "tok", EncryptionKey: "8bytekey", CallbackURL: "https://transfers.test/complete"}

	wc := NewWorkerConfig(cfg, secrets, 1, 100, 0, 0, time.Now())
	require.Equal(t, []string{"callback_url", "coordinator_pk", "key", "startup_script_url", "token", "transfer_pk"}, wc.MetadataKeys())
}
