package tui

import "errors"

// ErrMissingCardService is returned when the card service is not provided.
var ErrMissingCardService = errors.New("tui: card service is required")

// ErrMissingSurface is returned when no surface factory is provided.
var ErrMissingSurface = errors.New("tui: surface factory is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
