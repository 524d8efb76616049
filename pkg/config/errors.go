package config

import "fmt"

// FileNotFoundError reports a document that could not be opened or read.
// Missing files, permission problems and other I/O faults all collapse into
// this single kind; Err keeps the underlying cause for callers that care.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %q", e.Path)
}

func (e *FileNotFoundError) Unwrap() error {
	return e.Err
}

// ParseError wraps a parser diagnostic. The message is the library's text,
// unchanged.
type ParseError struct {
	Location string
	Format   Format
	Err      error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return "config: parse error"
	}
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
