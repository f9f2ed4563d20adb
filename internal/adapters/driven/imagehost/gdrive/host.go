// Package gdrive uploads images to a Google Drive folder and shares them
// by link.
package gdrive

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/cardstudio/internal/adapters/driven/imagehost/ratelimit"
	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driven"
	"github.com/custodia-labs/cardstudio/internal/logger"
)

// Google OAuth endpoints.
//
//nolint:gosec // G101: URLs, not credentials.
const (
	authURL  = "https://accounts.google.com/o/oauth2/auth"
	tokenURL = "https://oauth2.googleapis.com/token"
)

// viewURL is the direct link format for a publicly readable file.
const viewURL = "https://drive.google.com/uc?export=view&id="

// Ensure Host implements the interface.
var _ driven.ImageHost = (*Host)(nil)

// Host uploads into one Drive folder.
type Host struct {
	svc      *drive.Service
	folderID string
	limiter  *ratelimit.Limiter
}

// New creates a Drive image host from stored OAuth client credentials and
// a refresh token. Extra client options are applied last, so tests can
// point the client at a fake server.
func New(ctx context.Context, settings domain.DriveSettings, uploadsPerSecond float64, opts ...option.ClientOption) (*Host, error) {
	if len(opts) == 0 {
		if settings.ClientID == "" || settings.ClientSecret == "" || settings.RefreshToken == "" {
			return nil, fmt.Errorf("%w: gdrive needs client_id, client_secret and refresh_token", domain.ErrInvalidInput)
		}
		ts := OAuthConfig(settings).TokenSource(ctx, &oauth2.Token{RefreshToken: settings.RefreshToken})
		opts = []option.ClientOption{option.WithTokenSource(ts)}
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	return &Host{
		svc:      svc,
		folderID: settings.FolderID,
		limiter:  ratelimit.New(uploadsPerSecond),
	}, nil
}

// OAuthConfig returns the OAuth client for the drive.file scope. The
// redirect URL is left for the authorising flow to fill in.
func OAuthConfig(settings domain.DriveSettings) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
		Endpoint:     oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL},
		Scopes:       []string{drive.DriveFileScope},
	}
}

// Name returns the host name.
func (h *Host) Name() string {
	return string(domain.ImageHostDrive)
}

// Upload creates the file in the folder and makes it readable by link.
func (h *Host) Upload(ctx context.Context, name string, r io.Reader) (*domain.Asset, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	meta := &drive.File{Name: name}
	if h.folderID != "" {
		meta.Parents = []string{h.folderID}
	}
	file, err := h.svc.Files.Create(meta).
		Media(r).
		Fields("id", "name", "mimeType").
		Context(ctx).
		Do()
	if err != nil {
		return nil, h.fail("create file", err)
	}

	_, err = h.svc.Permissions.Create(file.Id, &drive.Permission{Type: "anyone", Role: "reader"}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, h.fail("share file", err)
	}

	logger.Debug("gdrive: uploaded %s as %s (%s)", name, file.Id, file.MimeType)
	return &domain.Asset{ID: file.Id, URL: viewURL + file.Id}, nil
}

func (h *Host) fail(op string, err error) error {
	classified, backoff := classify(err)
	if backoff > 0 || isRateLimited(classified) {
		h.limiter.Backoff(backoff)
	}
	return fmt.Errorf("%s: %w", op, classified)
}
