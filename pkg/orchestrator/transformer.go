package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-tmptoml/pkg/vars"
)

// Transformer rewrites the flattened variables before rendering.
// Implementations can add, rename or override entries.
type Transformer interface {
	Transform(ctx context.Context, variables vars.Variables) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, variables vars.Variables) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, variables vars.Variables) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, variables)
}

// OverrideTransformer forces variables to fixed values, replacing whatever
// the configuration produced.
type OverrideTransformer struct {
	values map[string]string
}

// NewOverrideTransformer wraps a set of overrides.
func NewOverrideTransformer(values map[string]string) *OverrideTransformer {
	clone := make(map[string]string, len(values))
	for key, value := range values {
		clone[key] = value
	}
	return &OverrideTransformer{values: clone}
}

// ParseOverrides turns KEY=VALUE pairs into an OverrideTransformer. Values may
// contain '=' and may be empty; keys may not.
func ParseOverrides(pairs []string) (*OverrideTransformer, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("override transformer: expected KEY=VALUE, got %q", pair)
		}
		values[key] = value
	}
	return &OverrideTransformer{values: values}, nil
}

// Transform applies the overrides.
func (t *OverrideTransformer) Transform(ctx context.Context, variables vars.Variables) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t == nil {
		return nil
	}
	for key, value := range t.values {
		variables[key] = value
	}
	return nil
}

// Len reports how many overrides are configured.
func (t *OverrideTransformer) Len() int {
	if t == nil {
		return 0
	}
	return len(t.values)
}
