package driving

import "github.com/custodia-labs/cardstudio/internal/core/domain"

// SettingsService manages engine settings.
type SettingsService interface {
	// Get retrieves current settings, falling back to defaults for
	// anything not configured.
	Get() (*domain.EngineSettings, error)

	// Save persists settings.
	Save(settings *domain.EngineSettings) error

	// Set updates one setting by its configuration key
	// (e.g. "editor.history_limit") from its textual form.
	Set(key, value string) error

	// Keys returns the configuration keys Set accepts.
	Keys() []string

	// Validate checks that current settings are usable.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.EngineSettings
}
