package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driven"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driving"
	"github.com/custodia-labs/cardstudio/internal/interchange"
	"github.com/custodia-labs/cardstudio/internal/logger"
)

// Ensure CardService implements the interface.
var _ driving.CardService = (*CardService)(nil)

// degradedWarning is shown to the user when only the raster was stored.
const degradedWarning = "the card was saved as an image only and may not be fully re-editable"

// CardService saves, loads and renders cards.
type CardService struct {
	store      driven.CardStore
	rasteriser driven.Rasteriser
	host       driven.ImageHost
	settings   domain.EngineSettings
	remapper   *Remapper
	templates  driven.TemplateStore
}

// NewCardService creates a new card service. host may be nil, in which
// case uploads return domain.ErrNotImplemented.
func NewCardService(
	store driven.CardStore,
	rasteriser driven.Rasteriser,
	host driven.ImageHost,
	settings domain.EngineSettings,
) *CardService {
	return &CardService{
		store:      store,
		rasteriser: rasteriser,
		host:       host,
		settings:   settings,
		remapper:   NewRemapper(settings.DefaultSource),
	}
}

// SetTemplateStore sets the store new cards are created from.
func (s *CardService) SetTemplateStore(store driven.TemplateStore) {
	s.templates = store
}

// Templates returns the names of the available templates.
func (s *CardService) Templates() ([]string, error) {
	if s.templates == nil {
		return nil, fmt.Errorf("%w: no template store configured", domain.ErrNotImplemented)
	}
	return s.templates.Names()
}

// FromTemplate decodes the named template and fits it to target. An invalid
// target keeps the template's own size.
func (s *CardService) FromTemplate(name string, target domain.Size) (*domain.Scene, error) {
	if s.templates == nil {
		return nil, fmt.Errorf("%w: no template store configured", domain.ErrNotImplemented)
	}
	data, err := s.templates.Load(name)
	if err != nil {
		return nil, err
	}
	scene, err := interchange.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode template %s: %w", name, err)
	}
	if target.Valid() {
		if _, err := s.remapper.Fit(scene, target); err != nil {
			return nil, err
		}
	}
	return scene, nil
}

// Save rasterises and encodes the scene and stores both. An empty id
// creates a new card.
func (s *CardService) Save(ctx context.Context, id string, scene *domain.Scene, metadata map[string]any) (*domain.SaveResult, error) {
	if scene == nil {
		return nil, fmt.Errorf("%w: nil scene", domain.ErrInvalidInput)
	}
	vector, err := interchange.Marshal(scene)
	return s.persist(ctx, id, scene, vector, err, withSize(metadata, scene.Size()))
}

// SaveDeck stores every slide as one card. The raster is taken from the
// slide at index cover.
func (s *CardService) SaveDeck(ctx context.Context, id string, slides []domain.Slide, cover int, metadata map[string]any) (*domain.SaveResult, error) {
	if len(slides) == 0 {
		return nil, fmt.Errorf("%w: no slides", domain.ErrInvalidInput)
	}
	if cover < 0 || cover >= len(slides) {
		cover = 0
	}
	scene := slides[cover].Scene
	if scene == nil {
		scene = domain.NewScene(s.settings.Target.Width, s.settings.Target.Height)
	}

	metadata = withSize(metadata, scene.Size())
	metadata["slides"] = len(slides)

	vector, err := interchange.EncodeDeck(slides)
	return s.persist(ctx, id, scene, vector, err, metadata)
}

// SaveSession stores all slides of a session, using the active slide as
// the cover. Metadata of an existing card is kept unless overridden; the
// size and slide count are always recomputed.
func (s *CardService) SaveSession(ctx context.Context, id string, session *Session, metadata map[string]any) (*domain.SaveResult, error) {
	if id != "" {
		if record, err := s.store.Get(ctx, id); err == nil {
			merged := make(map[string]any, len(record.Metadata)+len(metadata))
			for k, v := range record.Metadata {
				switch k {
				case "width", "height", "slides":
				default:
					merged[k] = v
				}
			}
			for k, v := range metadata {
				merged[k] = v
			}
			metadata = merged
		}
	}
	return s.SaveDeck(ctx, id, session.Slides(), session.Active(), metadata)
}

// persist stores one card. A vector encoding error degrades the save to
// raster only; a raster or store error fails it.
func (s *CardService) persist(
	ctx context.Context,
	id string,
	scene *domain.Scene,
	vector []byte,
	encodeErr error,
	metadata map[string]any,
) (*domain.SaveResult, error) {
	raster, err := s.rasteriser.Rasterise(ctx, scene)
	if err != nil {
		return nil, fmt.Errorf("rasterise card: %w", err)
	}

	degraded := false
	if encodeErr != nil {
		if !errors.Is(encodeErr, domain.ErrUnserialisable) {
			return nil, fmt.Errorf("encode card: %w", encodeErr)
		}
		logger.Warn("card: storing raster only: %v", encodeErr)
		vector = nil
		degraded = true
	}

	record := &domain.CardRecord{
		ID:       id,
		Raster:   raster,
		Vector:   vector,
		Metadata: metadata,
		Degraded: degraded,
	}
	storedID, err := s.store.Save(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistFailed, err)
	}

	result := &domain.SaveResult{ID: storedID, Degraded: degraded}
	if degraded {
		result.Warning = degradedWarning
	}
	return result, nil
}

// Load decodes a stored card and fits it to target. For multi-slide cards
// the first slide is returned. An invalid target skips the fit.
func (s *CardService) Load(ctx context.Context, id string, target domain.Size) (*domain.Scene, error) {
	slides, err := s.LoadDeck(ctx, id)
	if err != nil {
		return nil, err
	}
	scene := slides[0].Scene
	if target.Valid() {
		if _, err := s.remapper.Fit(scene, target); err != nil {
			return nil, err
		}
	}
	return scene, nil
}

// LoadDeck decodes every slide of a stored card without remapping.
func (s *CardService) LoadDeck(ctx context.Context, id string) ([]domain.Slide, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(record.Vector) == 0 {
		return nil, fmt.Errorf("%w: card %s was saved as an image only", domain.ErrInvalidInput, id)
	}
	slides, err := interchange.DecodeDeck(record.Vector)
	if err != nil {
		return nil, fmt.Errorf("decode card %s: %w", id, err)
	}
	if len(slides) == 0 {
		return nil, fmt.Errorf("%w: card %s has no slides", domain.ErrInvalidInput, id)
	}
	return slides, nil
}

// OpenSession loads a stored card into a new editing session on surface.
func (s *CardService) OpenSession(ctx context.Context, id string, target domain.Size, surface driven.RenderSurface) (*Session, error) {
	slides, err := s.LoadDeck(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewSession(ctx, slides, target, surface, s.settings)
}

// Get retrieves the stored record.
func (s *CardService) Get(ctx context.Context, id string) (*domain.CardRecord, error) {
	return s.store.Get(ctx, id)
}

// List returns summaries of all stored cards.
func (s *CardService) List(ctx context.Context) ([]domain.CardSummary, error) {
	return s.store.List(ctx)
}

// Delete removes a stored card.
func (s *CardService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Render rasterises a scene without storing it.
func (s *CardService) Render(ctx context.Context, scene *domain.Scene) ([]byte, error) {
	if scene == nil {
		return nil, fmt.Errorf("%w: nil scene", domain.ErrInvalidInput)
	}
	return s.rasteriser.Rasterise(ctx, scene)
}

// Upload sends an image to the configured image host.
func (s *CardService) Upload(ctx context.Context, name string, r io.Reader) (*domain.Asset, error) {
	if s.host == nil {
		return nil, fmt.Errorf("%w: no image host configured", domain.ErrNotImplemented)
	}
	asset, err := s.host.Upload(ctx, name, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUploadFailed, s.host.Name(), err)
	}
	logger.Info("card: uploaded %s to %s as %s", name, s.host.Name(), asset.URL)
	return asset, nil
}

// UploadImage uploads an image and points an image primitive of the editor
// at it. The asset is returned even when the editor went away in the
// meantime; applied then reports false.
func (s *CardService) UploadImage(ctx context.Context, editor *Editor, primitiveID, name string, r io.Reader) (asset *domain.Asset, applied bool, err error) {
	ticket := editor.BeginImage(primitiveID)
	asset, err = s.Upload(ctx, name, r)
	if err != nil {
		return nil, false, err
	}
	applied, err = editor.CompleteImage(ticket, asset.URL)
	return asset, applied, err
}

func withSize(metadata map[string]any, size domain.Size) map[string]any {
	out := make(map[string]any, len(metadata)+2)
	for k, v := range metadata {
		out[k] = v
	}
	if _, ok := out["width"]; !ok && size.Width > 0 {
		out["width"] = size.Width
	}
	if _, ok := out["height"]; !ok && size.Height > 0 {
		out["height"] = size.Height
	}
	return out
}
