// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - RenderSurface: The editing surface a scene is painted on and
//     manipulated through
//   - Rasteriser: Flattens a scene into a PNG snapshot
//   - CardStore: Card persistence (raster, vector payload, metadata)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ImageHost: Image uploads. Without it, image primitives must
//     reference URLs that already exist.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
