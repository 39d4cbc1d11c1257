package transfer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cccb/transferd/pkg/config"
)

// CallbackSecrets carries the shared secret a worker needs to authenticate
// its completion callback, and the URL it posts that callback to.
type CallbackSecrets struct {
	Token         string
	EncryptionKey string
	CallbackURL   string
}

// ProviderConfig holds the launch parameters for one (environment, provider)
// pair. Values are loaded once at startup and handed to the orchestrator; no
// component reads global settings at request time.
type ProviderConfig struct {
	InstanceNamePrefix string
	MachineType        string
	SourceImage        string
	DiskSizeFactor     float64
	MinDiskSizeGB      int
	Scopes             string
	CLIPath            string
	StartupScriptURL   string

	// google environment
	ProjectID string
	Zone      string

	// aws environment
	Region string
}

// Settings is the orchestration configuration for one deployment: which
// compute environment it launches workers into, where uploaded files land,
// the callback secrets, and the per-pair launch parameters.
type Settings struct {
	Environment     Environment
	UploadBucket    string
	Secrets         CallbackSecrets
	ProviderConfigs map[Provider]ProviderConfig
}

// LoadSettings reads the deployment settings from the given Configer. Pair
// specific keys are prefixed with "<ENVIRONMENT>_<PROVIDER>_", for example
// GOOGLE_DROPBOX_MACHINE_TYPE.
func LoadSettings(c config.Configer) (*Settings, error) {
	env, err := ParseEnvironment(c.MustGetKey("COMPUTE_ENVIRONMENT"))
	if err != nil {
		return nil, err
	}

	settings := &Settings{
		Environment:  env,
		UploadBucket: c.MustGetKey("UPLOAD_BUCKET"),
		Secrets: CallbackSecrets{
			Token:         c.MustGetKey("TRANSFER_TOKEN"),
			EncryptionKey: c.MustGetKey("TRANSFER_ENC_KEY"),
			CallbackURL:   c.MustGetKey("TRANSFER_CALLBACK_URL"),
		},
		ProviderConfigs: make(map[Provider]ProviderConfig),
	}

	if len(settings.Secrets.EncryptionKey) != 8 {
		return nil, fmt.Errorf("TRANSFER_ENC_KEY must be exactly 8 bytes, got %d", len(settings.Secrets.EncryptionKey))
	}

	for _, provider := range []Provider{ProviderDropbox, ProviderGoogleDrive} {
		cfg, err := loadProviderConfig(c, env, provider)
		if err != nil {
			return nil, err
		}
		settings.ProviderConfigs[provider] = cfg
	}

	return settings, nil
}

func loadProviderConfig(c config.Configer, env Environment, provider Provider) (ProviderConfig, error) {
	prefix := strings.ToUpper(fmt.Sprintf("%s_%s_", env, provider))

	factorStr := c.GetKeyWithDefault(prefix+"DISK_SIZE_FACTOR", "1")
	factor, err := strconv.ParseFloat(factorStr, 64)
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("bad %sDISK_SIZE_FACTOR %q: %w", prefix, factorStr, err)
	}

	cfg := ProviderConfig{
		InstanceNamePrefix: c.GetKeyWithDefault(prefix+"INSTANCE_NAME_PREFIX", "transfer-worker"),
		MachineType:        c.MustGetKey(prefix + "MACHINE_TYPE"),
		SourceImage:        c.MustGetKey(prefix + "SOURCE_IMAGE"),
		DiskSizeFactor:     factor,
		MinDiskSizeGB:      c.GetIntKeyWithDefault(prefix+"MIN_DISK_SIZE_GB", 10),
		Scopes:             c.GetKey(prefix + "SCOPES"),
		StartupScriptURL:   c.GetKey(prefix + "STARTUP_SCRIPT_URL"),
	}

	switch env {
	case EnvironmentGoogle:
		cfg.CLIPath = c.GetKeyWithDefault("GCLOUD_PATH", "gcloud")
		cfg.ProjectID = c.MustGetKey("GOOGLE_PROJECT_ID")
		cfg.Zone = c.MustGetKey("GOOGLE_ZONE")
	case EnvironmentAWS:
		cfg.CLIPath = c.GetKeyWithDefault("AWS_CLI_PATH", "aws")
		cfg.Region = c.MustGetKey("AWS_REGION")
	}

	return cfg, nil
}
