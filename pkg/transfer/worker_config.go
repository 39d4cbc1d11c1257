package transfer

import (
	"fmt"
	"sort"
	"time"
)

// WorkerConfig describes one worker instance to launch. Builders construct a
// fresh value (with its own metadata map) per launch; configs are never
// shared or mutated after construction, so two concurrent launches cannot
// corrupt each other's parameters.
type WorkerConfig struct {
	InstanceName string
	MachineType  string
	DiskSizeGB   int
	SourceImage  string
	Metadata     map[string]string
}

// DiskSizeGB sizes the worker's disk from the file size: the configured
// factor times the size in GB, floored at the configured minimum.
func DiskSizeGB(sizeInBytes int64, factor float64, minGB int) int {
	target := int(factor * float64(sizeInBytes) / 1e9)
	if target < minGB {
		return minGB
	}

	return target
}

// InstanceName builds a per-launch unique instance name from the configured
// prefix, a timestamp, and the item's index within its batch.
func InstanceName(prefix string, now time.Time, index int) string {
	return fmt.Sprintf("%s-%s-%d", prefix, now.Format("010206150405"), index)
}

// NewWorkerConfig builds a worker config for one item. The metadata map holds
// the callback authentication material and per-item launch parameters; the
// builder for each environment turns it into the actual CLI invocation.
func NewWorkerConfig(cfg ProviderConfig, secrets CallbackSecrets, transferID int, coordinatorID int, sizeInBytes int64, index int, now time.Time) WorkerConfig {
	metadata := map[string]string{
		"token":          secrets.Token,
		"key":            secrets.EncryptionKey,
		"transfer_pk":    fmt.Sprintf("%d", transferID),
		"coordinator_pk": fmt.Sprintf("%d", coordinatorID),
		"callback_url":   secrets.CallbackURL,
	}
	if cfg.StartupScriptURL != "" {
		metadata["startup_script_url"] = cfg.StartupScriptURL
	}

	return WorkerConfig{
		InstanceName: InstanceName(cfg.InstanceNamePrefix, now, index),
		MachineType:  cfg.MachineType,
		DiskSizeGB:   DiskSizeGB(sizeInBytes, cfg.DiskSizeFactor, cfg.MinDiskSizeGB),
		SourceImage:  cfg.SourceImage,
		Metadata:     metadata,
	}
}

// MetadataKeys returns the metadata keys in a stable order so commands built
// from a config are deterministic.
func (c WorkerConfig) MetadataKeys() []string {
	keys := make([]string, 0, len(c.Metadata))
	for k := range c.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
