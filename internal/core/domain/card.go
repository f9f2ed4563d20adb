package domain

import "time"

// CardRecord is a persisted card: a flattened raster, the vector payload
// and free-form metadata.
type CardRecord struct {
	// ID is the store-assigned identifier.
	ID string

	// Raster is the flattened PNG snapshot.
	Raster []byte

	// Vector is the interchange payload. Nil when the save degraded.
	Vector []byte

	// Metadata contains arbitrary key-value pairs (title, author, size).
	Metadata map[string]any

	// Degraded is true when the card was stored without a vector payload
	// and may not be fully re-editable.
	Degraded bool

	// CreatedAt is when the card was first stored.
	CreatedAt time.Time

	// UpdatedAt is when the card was last stored.
	UpdatedAt time.Time
}

// CardSummary is a lightweight listing entry for a stored card.
type CardSummary struct {
	ID         string
	Title      string
	Degraded   bool
	RasterSize int
	VectorSize int
	UpdatedAt  time.Time
}

// SaveResult reports the outcome of a save.
type SaveResult struct {
	// ID is the stored card identifier.
	ID string

	// Degraded is true when only the raster was persisted.
	Degraded bool

	// Warning explains a degraded save to the user.
	Warning string
}

// Asset is an uploaded image as returned by the image host.
type Asset struct {
	ID  string
	URL string
}
