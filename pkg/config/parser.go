package config

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Parser turns a raw Document into the two-level Tree consumed by the
// resolver.
type Parser interface {
	Parse(ctx context.Context, doc Document) (Tree, error)
}

// Format names a structured document syntax.
type Format string

const (
	// FormatAuto picks the syntax from the document location's extension and
	// falls back to TOML.
	FormatAuto Format = ""
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat validates a user supplied format name. "auto" and the empty
// string both map to FormatAuto.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return FormatAuto, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json", "jsonc":
		return FormatJSON, nil
	default:
		return FormatAuto, fmt.Errorf("config: unknown format %q", name)
	}
}

// DetectFormat maps a location's extension to a Format. URL locations use the
// extension of their path. Unknown extensions, including standard input,
// resolve to TOML.
func DetectFormat(location string) Format {
	if isRemote(location) {
		if u, err := url.Parse(location); err == nil {
			location = u.Path
		}
	}
	switch strings.ToLower(filepath.Ext(location)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json", ".jsonc":
		return FormatJSON
	default:
		return FormatTOML
	}
}

// Decoder turns the raw bytes of one syntax into generic maps, slices and
// primitives.
type Decoder interface {
	Format() Format
	Decode(data []byte) (map[string]any, error)
}

// ParserOptions exposes parser toggles.
type ParserOptions struct {
	// Format forces a document syntax. FormatAuto detects it per document.
	Format Format

	// Decoders are registered ahead of the built-in TOML, YAML and JSON
	// decoders and win when they claim the same format.
	Decoders []Decoder
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithFormat forces the document syntax instead of detecting it from the
// location.
func WithFormat(format Format) ParserOption {
	return func(opts *ParserOptions) {
		opts.Format = format
	}
}

// WithDecoder adds a decoder for an extra syntax or replaces a built-in one.
func WithDecoder(decoder Decoder) ParserOption {
	return func(opts *ParserOptions) {
		if decoder == nil {
			return
		}
		opts.Decoders = append(opts.Decoders, decoder)
	}
}

// NewParserOptions applies ParserOption functions and returns the resulting
// configuration.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{Format: FormatAuto}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	return cfg
}

// FormatFor resolves the effective format for a document.
func (o ParserOptions) FormatFor(doc Document) Format {
	if o.Format != FormatAuto {
		return o.Format
	}
	return DetectFormat(doc.Location())
}
