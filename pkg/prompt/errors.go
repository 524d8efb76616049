package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNoChoices is returned when there is nothing to select from.
	ErrNoChoices = errors.New("prompt: no choices available")
)
