package transfer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cccb/transferd/pkg/launcher"
)

// A LaunchBuilder turns one transfer item into the CLI invocation that brings
// up the worker instance for it. Builders are stateless; every call
// constructs a fresh WorkerConfig so concurrent launches never share mutable
// state.
type LaunchBuilder interface {
	BuildUploadLaunch(cfg ProviderConfig, secrets CallbackSecrets, item UploadItem, coordinatorID int, index int, now time.Time) launcher.LaunchSpec
	BuildDownloadLaunch(cfg ProviderConfig, secrets CallbackSecrets, item DownloadItem, coordinatorID int, index int, now time.Time) launcher.LaunchSpec
}

// gcloudBuilder launches container workers on Compute Engine through the
// gcloud CLI. Worker parameters are passed as container args, one
// "--container-arg=-name" "--container-arg=value" pair per metadata entry.
type gcloudBuilder struct {
	provider Provider
}

func (b gcloudBuilder) BuildUploadLaunch(cfg ProviderConfig, secrets CallbackSecrets, item UploadItem, coordinatorID int, index int, now time.Time) launcher.LaunchSpec {
	wc := NewWorkerConfig(cfg, secrets, item.TransferID, coordinatorID, item.SizeInBytes, index, now)
	wc.Metadata["path"] = item.Path
	wc.Metadata["destination"] = item.Destination
	if b.provider == ProviderGoogleDrive {
		wc.Metadata["access_token"] = item.AccessToken
		wc.Metadata["file_id"] = item.FileID
	}

	return b.buildSpec(cfg, wc)
}

func (b gcloudBuilder) BuildDownloadLaunch(cfg ProviderConfig, secrets CallbackSecrets, item DownloadItem, coordinatorID int, index int, now time.Time) launcher.LaunchSpec {
	wc := NewWorkerConfig(cfg, secrets, item.TransferID, coordinatorID, item.SizeInBytes, index, now)
	wc.Metadata["path"] = item.Path
	wc.Metadata["download"] = "true"
	if item.AccessToken != "" {
		wc.Metadata["access_token"] = item.AccessToken
	}

	return b.buildSpec(cfg, wc)
}

func (b gcloudBuilder) buildSpec(cfg ProviderConfig, wc WorkerConfig) launcher.LaunchSpec {
	args := []string{
		"beta", "compute",
		fmt.Sprintf("--project=%s", cfg.ProjectID),
		"instances", "create-with-container", wc.InstanceName,
		fmt.Sprintf("--zone=%s", cfg.Zone),
		fmt.Sprintf("--machine-type=%s", wc.MachineType),
		fmt.Sprintf("--boot-disk-size=%dGB", wc.DiskSizeGB),
		fmt.Sprintf("--container-image=%s", wc.SourceImage),
		"--container-restart-policy=never",
		"--no-restart-on-failure",
		"--metadata=google-logging-enabled=true",
	}

	if cfg.Scopes != "" {
		args = append(args, fmt.Sprintf("--scopes=%s", cfg.Scopes))
	}

	for _, key := range wc.MetadataKeys() {
		args = append(args,
			fmt.Sprintf("--container-arg=-%s", key),
			fmt.Sprintf("--container-arg=%s", wc.Metadata[key]))
	}

	return launcher.LaunchSpec{
		InstanceName: wc.InstanceName,
		Program:      cfg.CLIPath,
		Args:         args,
	}
}

// awsBuilder launches workers on EC2 through the aws CLI. The worker AMI
// reads its parameters as a JSON document from the instance user data.
type awsBuilder struct {
	provider Provider
}

func (b awsBuilder) BuildUploadLaunch(cfg ProviderConfig, secrets CallbackSecrets, item UploadItem, coordinatorID int, index int, now time.Time) launcher.LaunchSpec {
	wc := NewWorkerConfig(cfg, secrets, item.TransferID, coordinatorID, item.SizeInBytes, index, now)
	wc.Metadata["path"] = item.Path
	wc.Metadata["destination"] = item.Destination
	if b.provider == ProviderGoogleDrive {
		wc.Metadata["access_token"] = item.AccessToken
		wc.Metadata["file_id"] = item.FileID
	}

	return b.buildSpec(cfg, wc)
}

func (b awsBuilder) BuildDownloadLaunch(cfg ProviderConfig, secrets CallbackSecrets, item DownloadItem, coordinatorID int, index int, now time.Time) launcher.LaunchSpec {
	wc := NewWorkerConfig(cfg, secrets, item.TransferID, coordinatorID, item.SizeInBytes, index, now)
	wc.Metadata["path"] = item.Path
	wc.Metadata["download"] = "true"
	if item.AccessToken != "" {
		wc.Metadata["access_token"] = item.AccessToken
	}

	return b.buildSpec(cfg, wc)
}

func (b awsBuilder) buildSpec(cfg ProviderConfig, wc WorkerConfig) launcher.LaunchSpec {
	// Metadata maps marshal cleanly and the worker AMI parses user data as
	// JSON, so no per-key flag encoding is needed here.
	userData, _ := json.Marshal(wc.Metadata)

	args := []string{
		"ec2", "run-instances",
		"--region", cfg.Region,
		"--image-id", wc.SourceImage,
		"--instance-type", wc.MachineType,
		"--instance-initiated-shutdown-behavior", "terminate",
		"--block-device-mappings",
		fmt.Sprintf(`[{"DeviceName":"/dev/sda1","Ebs":{"VolumeSize":%d,"DeleteOnTermination":true}}]`, wc.DiskSizeGB),
		"--tag-specifications",
		fmt.Sprintf("ResourceType=instance,Tags=[{Key=Name,Value=%s}]", wc.InstanceName),
		"--user-data", string(userData),
	}

	return launcher.LaunchSpec{
		InstanceName: wc.InstanceName,
		Program:      cfg.CLIPath,
		Args:         args,
	}
}
