package render

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-tmptoml/pkg/render/template"
)

// ErrorKind classifies template failures.
type ErrorKind int

const (
	// TemplateNotFound means the template file could not be read.
	TemplateNotFound ErrorKind = iota + 1
	// InvalidTemplate means the template failed to compile.
	InvalidTemplate
	// RenderFailure covers execution errors, including undefined variables
	// in strict mode.
	RenderFailure
)

func (k ErrorKind) String() string {
	switch k {
	case TemplateNotFound:
		return "TemplateNotFound"
	case InvalidTemplate:
		return "InvalidTemplate"
	case RenderFailure:
		return "RenderError"
	default:
		return "Unknown"
	}
}

// Error is the render stage's failure. Detail carries the engine diagnostic
// opaquely; Path is set for TemplateNotFound.
type Error struct {
	Kind   ErrorKind
	Path   string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case TemplateNotFound:
		return fmt.Sprintf("%s(%q)", e.Kind, e.Path)
	default:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Detail)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify maps an engine error onto the render taxonomy using the sentinel
// errors from the template package.
func classify(path string, err error) *Error {
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}

	out := &Error{Path: path, Detail: err.Error(), Err: err}
	switch {
	case errors.Is(err, template.ErrTemplateNotFound):
		out.Kind = TemplateNotFound
	case errors.Is(err, template.ErrInvalidTemplate):
		out.Kind = InvalidTemplate
	default:
		out.Kind = RenderFailure
	}
	return out
}
