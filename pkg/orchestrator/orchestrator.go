package orchestrator

import (
	"context"
	"errors"
	"log/slog"

	internalLoader "github.com/goliatone/go-tmptoml/internal/config/loader"
	internalParser "github.com/goliatone/go-tmptoml/internal/config/parser"
	"github.com/goliatone/go-tmptoml/internal/ctxlog"
	"github.com/goliatone/go-tmptoml/pkg/config"
	"github.com/goliatone/go-tmptoml/pkg/render"
	"github.com/goliatone/go-tmptoml/pkg/vars"
)

// TemplateRenderer renders a template file against flattened variables.
// *render.Renderer is the default implementation.
type TemplateRenderer interface {
	Render(ctx context.Context, templatePath string, variables vars.Variables) (string, error)
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom document loader.
func WithLoader(loader config.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithParser injects a custom document parser.
func WithParser(parser config.Parser) Option {
	return func(o *Orchestrator) {
		o.parser = parser
	}
}

// WithRenderer injects a custom template renderer.
func WithRenderer(renderer TemplateRenderer) Option {
	return func(o *Orchestrator) {
		o.renderer = renderer
	}
}

// WithTransformer registers a Transformer that runs after flattening and
// before rendering. Transformers run in registration order.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		if t == nil {
			return
		}
		o.transformers = append(o.transformers, t)
	}
}

// WithLogger sets the logger used for debug records. A logger stored in the
// request context through ctxlog takes precedence. Records are discarded
// by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// Orchestrator coordinates the pipeline from configuration document to
// rendered text. Missing dependencies are initialised with the built-in
// implementations.
type Orchestrator struct {
	loader       config.Loader
	parser       config.Parser
	renderer     TemplateRenderer
	transformers []Transformer
	logger       *slog.Logger
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one render: where the config and template live and which
// group/subgroup pair to select.
type Request struct {
	// Config identifies the configuration document. Optional when Document
	// is supplied.
	Config config.Source

	// Document lets callers bypass the loader with a payload they already
	// hold.
	Document *config.Document

	// TemplatePath is the template file to render.
	TemplatePath string

	// GroupID selects the top-level group.
	GroupID string

	// SecondaryGroupID selects the subgroup inside GroupID whose members are
	// merged into the variables.
	SecondaryGroupID string
}

// NewRequest builds a Request from CLI style arguments; "-" reads the config
// from standard input.
func NewRequest(configPath, templatePath, groupID, secondaryGroupID string) Request {
	return Request{
		Config:           config.SourceFromPath(configPath),
		TemplatePath:     templatePath,
		GroupID:          groupID,
		SecondaryGroupID: secondaryGroupID,
	}
}

// Run executes load -> parse -> resolve -> flatten -> render and returns the
// rendered text. Stage failures are returned as *Error; nothing is rendered
// unless every stage succeeds.
func (o *Orchestrator) Run(ctx context.Context, req Request) (string, error) {
	variables, err := o.Variables(ctx, req)
	if err != nil {
		return "", err
	}

	logger := o.loggerFor(ctx)
	output, err := o.renderer.Render(ctx, req.TemplatePath, variables)
	if err != nil {
		logger.Debug("template render failed", "template", req.TemplatePath, "error", err)
		return "", stageError(KindRender, err)
	}
	logger.Debug("template rendered", "template", req.TemplatePath, "bytes", len(output))
	return output, nil
}

// Variables runs the pipeline up to flattening and returns the variables a
// template would receive.
func (o *Orchestrator) Variables(ctx context.Context, req Request) (vars.Variables, error) {
	tree, err := o.Tree(ctx, req)
	if err != nil {
		return nil, err
	}

	logger := o.loggerFor(ctx)
	primary, secondary, err := vars.Resolve(tree, req.GroupID, req.SecondaryGroupID)
	if err != nil {
		logger.Debug("group lookup failed", "group", req.GroupID, "secondary_group", req.SecondaryGroupID, "error", err)
		return nil, stageError(KindGroupNotFound, err)
	}
	logger.Debug("groups resolved",
		"group", req.GroupID,
		"members", primary.DebugString(),
		"secondary_group", req.SecondaryGroupID,
		"secondary_kind", config.KindOf(secondary).String(),
	)

	variables := vars.Flatten(primary, req.SecondaryGroupID)
	for _, t := range o.transformers {
		if err := t.Transform(ctx, variables); err != nil {
			return nil, err
		}
	}
	logger.Debug("variables flattened", "count", len(variables))
	return variables, nil
}

// Tree loads and parses the configuration document.
func (o *Orchestrator) Tree(ctx context.Context, req Request) (config.Tree, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := o.loggerFor(ctx)
	doc, err := o.resolveDocument(ctx, req)
	if err != nil {
		logger.Debug("config load failed", "error", err)
		return nil, stageError(KindFile, err)
	}
	logger.Debug("config loaded", "location", doc.Location(), "bytes", doc.Len())

	tree, err := o.parser.Parse(ctx, doc)
	if err != nil {
		logger.Debug("config parse failed", "location", doc.Location(), "error", err)
		return nil, stageError(KindConfig, err)
	}
	logger.Debug("config parsed", "groups", len(tree))
	return tree, nil
}

func (o *Orchestrator) resolveDocument(ctx context.Context, req Request) (config.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	if req.Config == nil {
		return config.Document{}, &config.FileNotFoundError{Err: errors.New("orchestrator: config source or document is required")}
	}
	return o.loader.Load(ctx, req.Config)
}

func (o *Orchestrator) loggerFor(ctx context.Context) *slog.Logger {
	if logger, ok := ctxlog.Lookup(ctx); ok {
		return logger
	}
	return o.logger
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = internalLoader.New(config.NewLoaderOptions())
	}
	if o.parser == nil {
		o.parser = internalParser.New(config.NewParserOptions())
	}
	if o.renderer == nil {
		o.renderer = render.New()
	}
	if o.logger == nil {
		o.logger = ctxlog.Discard()
	}
}
