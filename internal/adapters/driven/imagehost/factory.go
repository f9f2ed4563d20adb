// Package imagehost builds the configured driven.ImageHost.
package imagehost

import (
	"context"
	"fmt"

	"github.com/custodia-labs/cardstudio/internal/adapters/driven/imagehost/gdrive"
	"github.com/custodia-labs/cardstudio/internal/adapters/driven/imagehost/local"
	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driven"
)

// New returns the image host selected by settings.
func New(ctx context.Context, settings domain.EngineSettings) (driven.ImageHost, error) {
	switch settings.ImageHost {
	case domain.ImageHostLocal, "":
		return local.New(settings.ImageDir, settings.UploadsPerSecond)
	case domain.ImageHostDrive:
		return gdrive.New(ctx, settings.Drive, settings.UploadsPerSecond)
	default:
		return nil, fmt.Errorf("%w: image host %q", domain.ErrUnsupportedType, settings.ImageHost)
	}
}
