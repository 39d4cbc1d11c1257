// Package transfer implements the transfer orchestration engine: request
// validation, the (environment × provider) dispatch table, worker launch
// construction, and completion reconciliation.
package transfer

import "fmt"

// Environment identifies the compute substrate worker instances run in.
type Environment string

// Provider identifies an external storage service files move to or from.
type Provider string

const (
	EnvironmentGoogle Environment = "google"
	EnvironmentAWS    Environment = "aws"

	ProviderGoogleDrive Provider = "google_drive"
	ProviderDropbox     Provider = "dropbox"
)

func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case EnvironmentGoogle, EnvironmentAWS:
		return Environment(s), nil
	default:
		return "", fmt.Errorf("unknown compute environment %q", s)
	}
}

func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderGoogleDrive, ProviderDropbox:
		return Provider(s), nil
	default:
		return "", fmt.Errorf("unknown transfer provider %q", s)
	}
}
