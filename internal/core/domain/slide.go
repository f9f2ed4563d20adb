package domain

// Slide binds a Scene to its place in a multi-slide session.
type Slide struct {
	// Name is the human-readable slide name.
	Name string

	// Scene is the slide's document. Nil means an empty canvas.
	Scene *Scene

	// PrimaryImage is an optional main image reference for the slide.
	PrimaryImage string

	// BackgroundImage is an optional background image reference.
	BackgroundImage string
}

// Clone returns a deep copy of the slide.
func (s Slide) Clone() Slide {
	if s.Scene != nil {
		s.Scene = s.Scene.Clone()
	}
	return s
}
