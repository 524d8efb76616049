package parser

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	pkgconfig "github.com/goliatone/go-tmptoml/pkg/config"
)

// Registry stores decoders by format name.
type Registry struct {
	mu       sync.RWMutex
	decoders map[pkgconfig.Format]pkgconfig.Decoder
}

// NewRegistry creates an empty decoder registry.
func NewRegistry() *Registry {
	return &Registry{
		decoders: make(map[pkgconfig.Format]pkgconfig.Decoder),
	}
}

// Register adds a decoder by its Format(). Duplicate formats return an error.
func (r *Registry) Register(decoder pkgconfig.Decoder) error {
	if decoder == nil {
		return fmt.Errorf("parser: decoder is required")
	}
	format := normalizeFormat(decoder.Format())
	if format == "" {
		return fmt.Errorf("parser: decoder format is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.decoders[format]; exists {
		return fmt.Errorf("parser: decoder %q already registered", format)
	}

	r.decoders[format] = decoder
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(decoder pkgconfig.Decoder) {
	if err := r.Register(decoder); err != nil {
		panic(err)
	}
}

// Get retrieves a decoder by format.
func (r *Registry) Get(format pkgconfig.Format) (pkgconfig.Decoder, error) {
	key := normalizeFormat(format)
	if key == "" {
		return nil, fmt.Errorf("parser: format is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	decoder, ok := r.decoders[key]
	if !ok {
		return nil, fmt.Errorf("parser: unsupported format %q (available: %s)", key, strings.Join(r.listLocked(), ", "))
	}
	return decoder, nil
}

// Has reports whether a decoder is registered for format.
func (r *Registry) Has(format pkgconfig.Format) bool {
	key := normalizeFormat(format)
	if key == "" {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.decoders[key]
	return ok
}

// List returns the registered formats in lexical order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked()
}

func (r *Registry) listLocked() []string {
	names := make([]string, 0, len(r.decoders))
	for format := range r.decoders {
		names = append(names, string(format))
	}
	sort.Strings(names)
	return names
}

func normalizeFormat(format pkgconfig.Format) pkgconfig.Format {
	return pkgconfig.Format(strings.ToLower(strings.TrimSpace(string(format))))
}
