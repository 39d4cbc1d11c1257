package transfer

import "fmt"

// providerSpec captures what a provider requires of an upload item and how
// the item is normalized before entity creation.
type providerSpec struct {
	requiredFields []string
	normalize      func(*UploadItem)
}

func (s providerSpec) missingField(item UploadItem) string {
	for _, field := range s.requiredFields {
		switch field {
		case "path":
			if item.Path == "" {
				return field
			}
		case "file_id":
			if item.FileID == "" {
				return field
			}
		case "token":
			if item.AccessToken == "" {
				return field
			}
		}
	}

	return ""
}

// Implementation is one entry of the dispatch table: the provider's request
// requirements plus the environment's launch builder.
type Implementation struct {
	Environment Environment
	Provider    Provider
	spec        providerSpec
	Builder     LaunchBuilder
}

func (impl *Implementation) RequiredFields() []string {
	fields := make([]string, len(impl.spec.requiredFields))
	copy(fields, impl.spec.requiredFields)
	return fields
}

func (impl *Implementation) ValidateItemFields(item UploadItem) error {
	if field := impl.spec.missingField(item); field != "" {
		return fmt.Errorf("%w: %s", ErrMissingField, field)
	}

	return nil
}

func (impl *Implementation) NormalizeItem(item *UploadItem) {
	if impl.spec.normalize != nil {
		impl.spec.normalize(item)
	}
}

var (
	// Dropbox sends direct links we can fetch, so a path is all that's
	// required. Drive's picker sends an opaque file id plus an OAuth2
	// access token; the file id doubles as the resource path since it
	// uniquely identifies the file on Drive's side.
	dropboxSpec = providerSpec{requiredFields: []string{"path"}}
	driveSpec   = providerSpec{
		requiredFields: []string{"file_id", "token"},
		normalize: func(item *UploadItem) {
			item.Path = item.FileID
		},
	}
)

// implementations is the full dispatch table. Adding a new provider or
// environment means adding a table entry plus, for a new environment, a new
// launch builder. An unmapped pair always fails; there is no default.
var implementations = map[Environment]map[Provider]*Implementation{
	EnvironmentGoogle: {
		ProviderDropbox: {
			Environment: EnvironmentGoogle,
			Provider:    ProviderDropbox,
			spec:        dropboxSpec,
			Builder:     gcloudBuilder{provider: ProviderDropbox},
		},
		ProviderGoogleDrive: {
			Environment: EnvironmentGoogle,
			Provider:    ProviderGoogleDrive,
			spec:        driveSpec,
			Builder:     gcloudBuilder{provider: ProviderGoogleDrive},
		},
	},
	EnvironmentAWS: {
		ProviderDropbox: {
			Environment: EnvironmentAWS,
			Provider:    ProviderDropbox,
			spec:        dropboxSpec,
			Builder:     awsBuilder{provider: ProviderDropbox},
		},
		ProviderGoogleDrive: {
			Environment: EnvironmentAWS,
			Provider:    ProviderGoogleDrive,
			spec:        driveSpec,
			Builder:     awsBuilder{provider: ProviderGoogleDrive},
		},
	},
}

// SelectImplementation is a pure lookup: identical inputs always return the
// identical implementation, and unmapped pairs always fail.
func SelectImplementation(env Environment, provider Provider) (*Implementation, error) {
	byProvider, ok := implementations[env]
	if !ok {
		return nil, fmt.Errorf("%w: environment %q, provider %q", ErrUnsupportedCombination, env, provider)
	}

	impl, ok := byProvider[provider]
	if !ok {
		return nil, fmt.Errorf("%w: environment %q, provider %q", ErrUnsupportedCombination, env, provider)
	}

	return impl, nil
}
