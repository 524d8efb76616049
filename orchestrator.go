// Package tmptoml renders text templates from a group/subgroup selection of a
// TOML (or YAML/JSON) configuration document.
//
//	out, err := tmptoml.RenderFile(ctx, "hosts.toml", "motd.tpl", "web", "prod")
package tmptoml

import (
	"context"

	pkgconfig "github.com/goliatone/go-tmptoml/pkg/config"
	"github.com/goliatone/go-tmptoml/pkg/orchestrator"
	"github.com/goliatone/go-tmptoml/pkg/render"
	"github.com/goliatone/go-tmptoml/pkg/vars"
)

// Error aliases the orchestrator's tagged error.
type Error = orchestrator.Error

// Variables aliases the flattened variable set.
type Variables = vars.Variables

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// RenderFile loads configPath, selects groupID/secondaryGroupID, and renders
// templatePath with the resulting variables. It is the simplest entry point
// for callers that just want the text.
func RenderFile(ctx context.Context, configPath, templatePath, groupID, secondaryGroupID string, options ...orchestrator.Option) (string, error) {
	gen := orchestrator.New(options...)
	return gen.Run(ctx, orchestrator.NewRequest(configPath, templatePath, groupID, secondaryGroupID))
}

// WithStrict pins the undefined variable policy of the default renderer.
func WithStrict(strict bool) orchestrator.Option {
	return orchestrator.WithRenderer(render.New(render.WithStrict(strict)))
}

// WithParserOptions replaces the default parser with one built from options.
func WithParserOptions(options ...pkgconfig.ParserOption) orchestrator.Option {
	return orchestrator.WithParser(NewParser(options...))
}
