// Package domain defines the core entities of the card editing engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Primitive: One graphical object (text, image, rectangle, circle, line)
//   - Scene: The full editable state of one canvas
//   - Slide: A named Scene inside a multi-slide session
//   - CardRecord: A persisted card (raster, vector payload, metadata)
//   - SurfaceEvent: A notification raised by the rendering surface
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
