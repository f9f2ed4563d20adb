package domain

// ImageHostType identifies the image hosting backend.
type ImageHostType string

// Available image hosts.
const (
	// ImageHostLocal stores uploads in a local directory.
	ImageHostLocal ImageHostType = "local"

	// ImageHostDrive stores uploads in a Google Drive folder.
	ImageHostDrive ImageHostType = "gdrive"
)

// IsValid returns true if the image host is recognised.
func (t ImageHostType) IsValid() bool {
	return t == ImageHostLocal || t == ImageHostDrive
}

// String returns the string representation.
func (t ImageHostType) String() string {
	return string(t)
}

// DriveSettings configures the Google Drive image host.
type DriveSettings struct {
	FolderID     string
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// EngineSettings holds the tunable behaviour of the editing engine.
type EngineSettings struct {
	// HistoryLimit caps the number of undo snapshots kept per editor.
	HistoryLimit int

	// DuplicateOffset is the left/top offset applied by Duplicate.
	DuplicateOffset float64

	// DefaultSource is the authoring size assumed for documents that do
	// not carry one.
	DefaultSource Size

	// Target is the size of the editing surface.
	Target Size

	// ImageHost selects where uploads go.
	ImageHost ImageHostType

	// ImageDir is the upload directory for the local image host.
	ImageDir string

	// UploadsPerSecond paces uploads to the image host.
	UploadsPerSecond float64

	// Drive configures the Google Drive image host.
	Drive DriveSettings
}

// DefaultEngineSettings returns the settings used when nothing is configured.
func DefaultEngineSettings() EngineSettings {
	return EngineSettings{
		HistoryLimit:     50,
		DuplicateOffset:  20,
		DefaultSource:    Size{Width: 800, Height: 600},
		Target:           Size{Width: 800, Height: 600},
		ImageHost:        ImageHostLocal,
		UploadsPerSecond: 2,
	}
}
