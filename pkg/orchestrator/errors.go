package orchestrator

import (
	"context"
	"errors"
	"fmt"
)

// Kind names the pipeline stage that failed.
type Kind int

const (
	// KindFile: the config document could not be read.
	KindFile Kind = iota + 1
	// KindGroupNotFound: the group or secondary group id is missing.
	KindGroupNotFound
	// KindConfig: the config document could not be parsed.
	KindConfig
	// KindRender: the template is missing, invalid or failed to render.
	KindRender
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "File"
	case KindGroupNotFound:
		return "GroupNotFound"
	case KindConfig:
		return "Config"
	case KindRender:
		return "Render"
	default:
		return "Unknown"
	}
}

// Error is the single error type Run returns for stage failures. Err holds
// the stage's own error (*config.FileNotFoundError, *vars.GroupNotFoundError,
// *config.ParseError or *render.Error).
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// stageError tags err with the stage that produced it. Cancellation passes
// through untouched since it belongs to no stage.
func stageError(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf reports the stage kind of err, or 0 when err is not a stage error.
func KindOf(err error) Kind {
	var outer *Error
	if errors.As(err, &outer) {
		return outer.Kind
	}
	return 0
}
