package services

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driven"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyHistoryLimit     = "editor.history_limit"
	keyDuplicateOffset  = "editor.duplicate_offset"
	keyCanvasWidth      = "canvas.width"
	keyCanvasHeight     = "canvas.height"
	keySourceWidth      = "canvas.source_width"
	keySourceHeight     = "canvas.source_height"
	keyImageHost        = "imagehost.type"
	keyImageDir         = "imagehost.dir"
	keyUploadsPerSecond = "imagehost.uploads_per_second"
	keyDriveFolder      = "imagehost.drive.folder_id"
	keyDriveClientID    = "imagehost.drive.client_id"
	keyDriveSecret      = "imagehost.drive.client_secret"
	keyDriveToken       = "imagehost.drive.refresh_token"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
)

var settingKeys = map[string]valueKind{
	keyHistoryLimit:     kindInt,
	keyDuplicateOffset:  kindFloat,
	keyCanvasWidth:      kindFloat,
	keyCanvasHeight:     kindFloat,
	keySourceWidth:      kindFloat,
	keySourceHeight:     kindFloat,
	keyImageHost:        kindString,
	keyImageDir:         kindString,
	keyUploadsPerSecond: kindFloat,
	keyDriveFolder:      kindString,
	keyDriveClientID:    kindString,
	keyDriveSecret:      kindString,
	keyDriveToken:       kindString,
}

// SettingsService manages engine settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings. Missing or unusable values fall back to
// the defaults.
func (s *SettingsService) Get() (*domain.EngineSettings, error) {
	defaults := domain.DefaultEngineSettings()

	settings := &domain.EngineSettings{
		HistoryLimit:    s.getInt(keyHistoryLimit, defaults.HistoryLimit, 2),
		DuplicateOffset: s.getFloat(keyDuplicateOffset, defaults.DuplicateOffset),
		Target: domain.Size{
			Width:  s.getPositive(keyCanvasWidth, defaults.Target.Width),
			Height: s.getPositive(keyCanvasHeight, defaults.Target.Height),
		},
		DefaultSource: domain.Size{
			Width:  s.getPositive(keySourceWidth, defaults.DefaultSource.Width),
			Height: s.getPositive(keySourceHeight, defaults.DefaultSource.Height),
		},
		ImageHost:        s.getImageHost(defaults.ImageHost),
		ImageDir:         s.configStore.GetString(keyImageDir),
		UploadsPerSecond: s.getPositive(keyUploadsPerSecond, defaults.UploadsPerSecond),
		Drive: domain.DriveSettings{
			FolderID:     s.configStore.GetString(keyDriveFolder),
			ClientID:     s.configStore.GetString(keyDriveClientID),
			ClientSecret: s.configStore.GetString(keyDriveSecret),
			RefreshToken: s.configStore.GetString(keyDriveToken),
		},
	}
	return settings, nil
}

// Save persists settings.
func (s *SettingsService) Save(settings *domain.EngineSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyHistoryLimit, settings.HistoryLimit},
		{keyDuplicateOffset, settings.DuplicateOffset},
		{keyCanvasWidth, settings.Target.Width},
		{keyCanvasHeight, settings.Target.Height},
		{keySourceWidth, settings.DefaultSource.Width},
		{keySourceHeight, settings.DefaultSource.Height},
		{keyImageHost, settings.ImageHost.String()},
		{keyImageDir, settings.ImageDir},
		{keyUploadsPerSecond, settings.UploadsPerSecond},
		{keyDriveFolder, settings.Drive.FolderID},
		{keyDriveClientID, settings.Drive.ClientID},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Secrets are only written when present so a save never clears them.
	if settings.Drive.ClientSecret != "" {
		if err := s.configStore.Set(keyDriveSecret, settings.Drive.ClientSecret); err != nil {
			return fmt.Errorf("save %s: %w", keyDriveSecret, err)
		}
	}
	if settings.Drive.RefreshToken != "" {
		if err := s.configStore.Set(keyDriveToken, settings.Drive.RefreshToken); err != nil {
			return fmt.Errorf("save %s: %w", keyDriveToken, err)
		}
	}
	return nil
}

// Set updates one setting from its textual form.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var typed any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		typed = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		typed = f
	default:
		typed = value
	}

	if key == keyImageHost && !domain.ImageHostType(value).IsValid() {
		return fmt.Errorf("%w: unknown image host %q", domain.ErrInvalidInput, value)
	}
	return s.configStore.Set(key, typed)
}

// Keys returns the configuration keys Set accepts, sorted.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks that current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if v := s.configStore.GetInt(keyHistoryLimit); v != 0 && v < 2 {
		return fmt.Errorf("%w: %s must be at least 2", domain.ErrInvalidInput, keyHistoryLimit)
	}
	if host := s.configStore.GetString(keyImageHost); host != "" && !domain.ImageHostType(host).IsValid() {
		return fmt.Errorf("%w: unknown image host %q", domain.ErrInvalidInput, host)
	}
	if settings.ImageHost == domain.ImageHostDrive {
		d := settings.Drive
		if d.ClientID == "" || d.ClientSecret == "" || d.RefreshToken == "" {
			return fmt.Errorf("%w: gdrive image host needs client_id, client_secret and refresh_token",
				domain.ErrInvalidInput)
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.EngineSettings {
	return domain.DefaultEngineSettings()
}

func (s *SettingsService) getInt(key string, defaultVal, minVal int) int {
	if v := s.configStore.GetInt(key); v >= minVal {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getPositive(key string, defaultVal float64) float64 {
	if v := s.configStore.GetFloat(key); v > 0 {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getImageHost(defaultVal domain.ImageHostType) domain.ImageHostType {
	host := domain.ImageHostType(s.configStore.GetString(keyImageHost))
	if host.IsValid() {
		return host
	}
	return defaultVal
}
