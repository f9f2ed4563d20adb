package domain

// EventType names a notification raised by the rendering surface.
type EventType string

// Surface events.
const (
	EventObjectAdded      EventType = "object:added"
	EventObjectModified   EventType = "object:modified"
	EventObjectRemoved    EventType = "object:removed"
	EventSelectionCreated EventType = "selection:created"
	EventSelectionUpdated EventType = "selection:updated"
	EventSelectionCleared EventType = "selection:cleared"
	EventTextChanged      EventType = "text:changed"
	EventEditingEntered   EventType = "editing:entered"
	EventEditingExited    EventType = "editing:exited"
)

// SurfaceEvent is raised by the rendering surface after a user interaction.
type SurfaceEvent struct {
	Type EventType

	// ObjectID is the primitive the event concerns. Empty for
	// selection:cleared.
	ObjectID string
}
