package driven

import (
	"context"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
)

// RenderSurface is the rendering backend an editor drives. It paints
// primitives, handles pointer manipulation and reports what the user did
// through events. The engine only reads and writes its state.
//
// A surface belongs to one editing session at a time and is used from a
// single goroutine.
type RenderSurface interface {
	// Load replaces the surface contents with the scene.
	// Completes once the surface is ready to be read back.
	Load(ctx context.Context, scene *domain.Scene) error

	// Export returns the current surface contents as a scene.
	// Fails when the surface cannot produce a consistent snapshot,
	// e.g. while text is being edited.
	Export() (*domain.Scene, error)

	// Object returns a copy of one primitive as the surface currently
	// holds it.
	Object(id string) (*domain.Primitive, bool)

	// AddObject adds a primitive to the surface.
	AddObject(p domain.Primitive) error

	// RemoveObject removes a primitive from the surface.
	RemoveObject(id string) error

	// Set assigns one field of a primitive by its payload name.
	Set(id, field string, value any) error

	// RenderAll repaints the surface.
	RenderAll()

	// Subscribe registers fn for surface events and returns a function
	// that removes the subscription.
	Subscribe(fn func(domain.SurfaceEvent)) (unsubscribe func())
}
