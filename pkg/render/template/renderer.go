package template

import (
	"errors"
	"io"
)

// Failure classes. Engines wrap their diagnostics with one of these so
// callers can classify with errors.Is without parsing messages.
var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidTemplate  = errors.New("invalid template")
	ErrExecute          = errors.New("render failed")
)

// FilterFunc transforms a printed value. param is nil when the template
// passes no argument.
type FilterFunc func(input any, param any) (any, error)

// TemplateRenderer is the seam renderers rely on. RenderTemplate resolves
// name through the engine's loader.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn FilterFunc) error
	GlobalContext(data any) error
}
