package driven

import "github.com/docsift/docsift/internal/core/domain"

// ConfigStore loads and persists the application configuration.
// Implementations handle the storage format (e.g. TOML files); unset values
// fall back to domain.DefaultSettings.
type ConfigStore interface {
	// Load reads the configuration from storage. A missing file yields
	// the defaults, not an error.
	Load() (domain.Settings, error)

	// Save persists the configuration to storage.
	Save(settings domain.Settings) error

	// Path returns the configuration file path.
	Path() string
}
