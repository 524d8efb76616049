package gotemplate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-tmptoml/pkg/render/template"
)

// Option configures the adapter before construction.
type Option func(*config)

type config struct {
	baseDir    string
	templates  fs.FS
	strict     bool
	autoescape bool
}

// WithBaseDir configures the engine to load templates from a directory on
// disk. Includes and extends resolve relative to it.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS configures the engine to load templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithStrictUndefined makes print tags that reference an undefined variable
// fail with template.ErrExecute instead of rendering empty. Included,
// extended and imported templates are checked too. Enabled by default.
func WithStrictUndefined(strict bool) Option {
	return func(cfg *config) {
		cfg.strict = strict
	}
}

// WithAutoescape toggles HTML escaping of printed values. Disabled by default.
func WithAutoescape(enabled bool) Option {
	return func(cfg *config) {
		cfg.autoescape = enabled
	}
}

// Engine satisfies the template.TemplateRenderer contract using a
// pongo2-backed template set.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	files       fs.FS
	baseDir     string
	strict      bool
	autoescape  bool
}

var _ template.TemplateRenderer = (*Engine)(nil)

// autoescapeMu guards pongo2's process wide autoescape switch while a
// template executes.
var autoescapeMu sync.Mutex

// pongo2 keeps filters in a process wide table. customFilters records the
// names registered through RegisterFilter so later engines may replace them
// without touching built-in filters.
var (
	customFiltersMu sync.Mutex
	customFilters   = map[string]struct{}{}
)

// New constructs an Engine using the provided configuration options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{strict: true}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("gotemplate: need to provide either base dir or fs.FS")
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: create local loader: %w: %w", template.ErrTemplateNotFound, err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}

	engine := &Engine{
		templateSet: pongo2.NewSet("tmptoml", loaders...),
		files:       cfg.templates,
		baseDir:     cfg.baseDir,
		strict:      cfg.strict,
		autoescape:  cfg.autoescape,
	}
	registerDefaultFilters()

	return engine, nil
}

// RenderTemplate reads name from the configured filesystem or base directory,
// compiles it and executes it against data.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}

	source, err := e.readTemplate(name)
	if err != nil {
		return "", fmt.Errorf("gotemplate: load template %q: %w: %w", name, template.ErrTemplateNotFound, err)
	}

	tmpl, err := e.templateSet.FromBytes(source)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse template %q: %w: %w", name, template.ErrInvalidTemplate, err)
	}

	viewContext, err := convertToContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: convert data: %w", err)
	}

	if e.strict {
		scanned := e.reachableSources(name, string(source))
		if missing := undefinedVariables(scanned, e.isDefined(viewContext)); len(missing) > 0 {
			return "", fmt.Errorf("gotemplate: execute template %q: %w: variable %q is not defined", name, template.ErrExecute, missing[0])
		}
	}

	var buf bytes.Buffer

	e.mu.RLock()
	autoescapeMu.Lock()
	pongo2.SetAutoescape(e.autoescape)
	err = tmpl.ExecuteWriter(viewContext, &buf)
	autoescapeMu.Unlock()
	e.mu.RUnlock()

	if err != nil {
		return "", fmt.Errorf("gotemplate: execute template %q: %w: %w", name, template.ErrExecute, err)
	}

	rendered := buf.String()
	for _, w := range out {
		if _, err := w.Write([]byte(rendered)); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

// reachableSources concatenates the template with every template it pulls in
// through include, extends or import, following references transitively.
// References resolve against the loader root like pongo2's loaders do.
// References that cannot be read are left for pongo2 to report.
func (e *Engine) reachableSources(name, source string) string {
	seen := map[string]struct{}{name: {}}
	parts := []string{source}
	queue := []string{source}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, ref := range templateReferences(current) {
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}

			data, err := e.readTemplate(ref)
			if err != nil {
				continue
			}
			parts = append(parts, string(data))
			queue = append(queue, string(data))
		}
	}
	return strings.Join(parts, "\n")
}

func (e *Engine) isDefined(ctx pongo2.Context) func(string) bool {
	return func(name string) bool {
		if _, ok := ctx[name]; ok {
			return true
		}
		e.mu.RLock()
		defer e.mu.RUnlock()
		_, ok := e.templateSet.Globals[name]
		return ok
	}
}

func (e *Engine) readTemplate(name string) ([]byte, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("template name is required")
	}
	if e.files != nil {
		if data, err := fs.ReadFile(e.files, filepath.ToSlash(name)); err == nil || e.baseDir == "" {
			return data, err
		}
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.baseDir, path)
	}
	return os.ReadFile(path)
}

// RegisterFilter makes fn available to templates as name. A filter of the
// same name registered earlier through RegisterFilter is replaced; built-in
// filters cannot be overridden.
func (e *Engine) RegisterFilter(name string, fn template.FilterFunc) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}

	customFiltersMu.Lock()
	defer customFiltersMu.Unlock()

	if pongo2.FilterExists(name) {
		if _, ours := customFilters[name]; !ours {
			return fmt.Errorf("gotemplate: filter %q conflicts with a built-in filter", name)
		}
		return pongo2.ReplaceFilter(name, filter)
	}
	if err := pongo2.RegisterFilter(name, filter); err != nil {
		return fmt.Errorf("gotemplate: register filter %q: %w", name, err)
	}
	customFilters[name] = struct{}{}
	return nil
}

// GlobalContext seeds global data on the wrapped engine.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.templateSet == nil {
		return errors.New("gotemplate: engine is nil")
	}
	if data == nil {
		return nil
	}

	globalCtx, err := convertToContext(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals.Update(globalCtx)
	return nil
}

// convertToContext accepts the map shapes produced by the renderer. Nested
// maps and slices are copied so templates never alias caller data.
func convertToContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return convertMapToContext(map[string]any(v)), nil
	case map[string]any:
		return convertMapToContext(v), nil
	case map[string]string:
		out := make(pongo2.Context, len(v))
		for key, value := range v {
			if key = strings.TrimSpace(key); key != "" {
				out[key] = value
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("gotemplate: unsupported context type %T", data)
	}
}

func convertMapToContext(in map[string]any) pongo2.Context {
	out := make(pongo2.Context, len(in))
	for key, value := range in {
		if key = strings.TrimSpace(key); key != "" {
			out[key] = convertValue(value)
		}
	}
	return out
}

func convertValue(value any) any {
	switch v := value.(type) {
	case pongo2.Context:
		return convertMap(map[string]any(v))
	case map[string]any:
		return convertMap(v)
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, convertValue(item))
		}
		return out
	default:
		return v
	}
}

func convertMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = convertValue(value)
	}
	return out
}
