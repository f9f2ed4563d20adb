// Package services implements the editing engine and the driving port
// interfaces.
//
// The engine is made of History (snapshot undo/redo), Editor (the
// primitive model over one scene), Remapper (cross-resolution fitting) and
// Session (several slides sharing one rendering surface). CardService and
// SettingsService orchestrate the driven ports around it.
//
// Services are pure Go with no CGO or external dependencies beyond the
// ports they are given.
package services
