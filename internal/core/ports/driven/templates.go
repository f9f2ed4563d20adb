package driven

// TemplateStore provides the starting documents new cards are created from.
// Templates are interchange documents; implementations may load them from
// disk or embed them in the binary.
type TemplateStore interface {
	// Load returns the template document with the given name.
	// Returns domain.ErrNotFound for unknown names.
	Load(name string) ([]byte, error)

	// Names returns the available template names, sorted.
	Names() ([]string, error)

	// Reload clears any cached templates, forcing fresh loads on next access.
	Reload()
}

// Built-in template names.
const (
	// TemplateBlank is an empty white canvas.
	TemplateBlank = "blank"

	// TemplateTitle is a centred headline over a dark background.
	TemplateTitle = "title"

	// TemplateQuote is a framed quotation with an attribution line.
	TemplateQuote = "quote"
)
