package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates a collaborator required by the
	// operation is not configured.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown primitive kind or adapter type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Editing Errors.

	// ErrDisposed indicates the editor or session has been torn down.
	// Calls on a disposed editor are rejected with this error and never panic.
	ErrDisposed = errors.New("editor disposed")

	// ErrFrozen indicates a background primitive was targeted by a mutation.
	ErrFrozen = errors.New("primitive is frozen")

	// ErrRestoreFailed indicates a history snapshot could not be applied.
	// The live document is left unchanged.
	ErrRestoreFailed = errors.New("restoring snapshot failed")

	// ErrSurfaceUnavailable indicates the rendering surface could not
	// produce or accept a document.
	ErrSurfaceUnavailable = errors.New("rendering surface unavailable")

	// Persistence Errors.

	// ErrUnserialisable indicates the vector payload could not be produced.
	// Saves degrade to raster-only output.
	ErrUnserialisable = errors.New("document cannot be serialised")

	// ErrPersistFailed indicates the card store rejected a save.
	ErrPersistFailed = errors.New("saving card failed")

	// ErrUploadFailed indicates the image host rejected an upload.
	ErrUploadFailed = errors.New("image upload failed")
)
