package render

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-tmptoml/pkg/render/template"
	"github.com/goliatone/go-tmptoml/pkg/render/template/gotemplate"
	"github.com/goliatone/go-tmptoml/pkg/vars"
)

// EngineConfig describes the engine needed for one template file.
type EngineConfig struct {
	// BaseDir is the directory holding the template so includes resolve next
	// to it.
	BaseDir    string
	Strict     bool
	Autoescape bool
}

// EngineFactory builds the template engine used for one template file.
type EngineFactory func(cfg EngineConfig) (template.TemplateRenderer, error)

// Options configure the renderer.
type Options struct {
	// Strict turns references to undefined variables into RenderFailure
	// errors. Defaults to true.
	Strict bool

	// Globals are exposed to every template alongside the variables. Entries
	// from the configuration take precedence on name clashes.
	Globals map[string]any

	// Filters are registered on every engine before rendering.
	Filters map[string]template.FilterFunc

	// AutoescapeExtensions lists template extensions rendered with HTML
	// escaping. Defaults to .html, .htm and .xml.
	AutoescapeExtensions []string
}

// Option mutates Options.
type Option func(*Options)

// WithStrict pins the undefined variable policy.
func WithStrict(strict bool) Option {
	return func(o *Options) {
		o.Strict = strict
	}
}

// WithGlobals exposes extra values to templates.
func WithGlobals(globals map[string]any) Option {
	return func(o *Options) {
		if len(globals) == 0 {
			return
		}
		if o.Globals == nil {
			o.Globals = make(map[string]any, len(globals))
		}
		for key, value := range globals {
			o.Globals[key] = value
		}
	}
}

// WithFilters makes custom filters available to templates. Names that clash
// with built-in filters fail the render.
func WithFilters(filters map[string]template.FilterFunc) Option {
	return func(o *Options) {
		if len(filters) == 0 {
			return
		}
		if o.Filters == nil {
			o.Filters = make(map[string]template.FilterFunc, len(filters))
		}
		for name, fn := range filters {
			o.Filters[name] = fn
		}
	}
}

// WithAutoescapeExtensions replaces the extensions that enable HTML escaping.
func WithAutoescapeExtensions(exts ...string) Option {
	return func(o *Options) {
		o.AutoescapeExtensions = append([]string(nil), exts...)
	}
}

// Renderer compiles a template file and renders it against flattened
// variables.
type Renderer struct {
	options Options
	factory EngineFactory
}

// New constructs a Renderer backed by the pongo2 engine.
func New(options ...Option) *Renderer {
	opts := Options{
		Strict:               true,
		AutoescapeExtensions: []string{".html", ".htm", ".xml"},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&opts)
	}
	return &Renderer{options: opts, factory: defaultEngine}
}

// WithEngineFactory swaps the template engine. Intended for tests and
// alternative engines.
func (r *Renderer) WithEngineFactory(factory EngineFactory) *Renderer {
	if factory != nil {
		r.factory = factory
	}
	return r
}

// Render reads templatePath, compiles it and executes it with variables bound
// as strings. Failures are returned as *Error.
func (r *Renderer) Render(ctx context.Context, templatePath string, variables vars.Variables) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(templatePath) == "" {
		return "", &Error{Kind: TemplateNotFound}
	}

	dir, name := filepath.Split(filepath.Clean(templatePath))
	if dir == "" {
		dir = "."
	}

	engine, err := r.factory(EngineConfig{
		BaseDir:    dir,
		Strict:     r.options.Strict,
		Autoescape: r.autoescape(name),
	})
	if err != nil {
		return "", classify(templatePath, err)
	}
	if err := r.prepare(engine); err != nil {
		return "", classify(templatePath, err)
	}

	out, err := engine.RenderTemplate(name, variables.Context())
	if err != nil {
		return "", classify(templatePath, err)
	}
	return out, nil
}

func (r *Renderer) prepare(engine template.TemplateRenderer) error {
	if len(r.options.Globals) > 0 {
		if err := engine.GlobalContext(r.options.Globals); err != nil {
			return err
		}
	}
	names := make([]string, 0, len(r.options.Filters))
	for name := range r.options.Filters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := engine.RegisterFilter(name, r.options.Filters[name]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) autoescape(name string) bool {
	ext := filepath.Ext(name)
	for _, candidate := range r.options.AutoescapeExtensions {
		if strings.EqualFold(candidate, ext) {
			return true
		}
	}
	return false
}

func defaultEngine(cfg EngineConfig) (template.TemplateRenderer, error) {
	return gotemplate.New(
		gotemplate.WithBaseDir(cfg.BaseDir),
		gotemplate.WithStrictUndefined(cfg.Strict),
		gotemplate.WithAutoescape(cfg.Autoescape),
	)
}
