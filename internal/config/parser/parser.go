package parser

import (
	"context"
	"fmt"

	pkgconfig "github.com/goliatone/go-tmptoml/pkg/config"
)

// Parser implements pkgconfig.Parser on top of a decoder registry. The
// built-in decoders use go-toml, yaml.v3 and jsonc.
type Parser struct {
	options  pkgconfig.ParserOptions
	registry *Registry
}

// Ensure the implementation satisfies the public interface.
var _ pkgconfig.Parser = (*Parser)(nil)

// New constructs a Parser with the given options. Decoders supplied through
// the options take precedence over the built-in ones.
func New(options pkgconfig.ParserOptions) pkgconfig.Parser {
	registry := NewRegistry()
	for _, decoder := range options.Decoders {
		if decoder == nil || normalizeFormat(decoder.Format()) == "" || registry.Has(decoder.Format()) {
			continue
		}
		registry.MustRegister(decoder)
	}
	for _, decoder := range builtinDecoders() {
		if !registry.Has(decoder.Format()) {
			registry.MustRegister(decoder)
		}
	}
	return &Parser{options: options, registry: registry}
}

// Parse decodes the document and converts it into a two-level Tree. Decoder
// diagnostics are returned unchanged inside *pkgconfig.ParseError.
func (p *Parser) Parse(ctx context.Context, doc pkgconfig.Document) (pkgconfig.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := p.options.FormatFor(doc)
	decoder, err := p.registry.Get(format)
	if err != nil {
		return nil, &pkgconfig.ParseError{Location: doc.Location(), Format: format, Err: err}
	}

	raw, err := decoder.Decode(doc.Raw())
	if err != nil {
		return nil, &pkgconfig.ParseError{Location: doc.Location(), Format: format, Err: err}
	}

	tree := make(pkgconfig.Tree, len(raw))
	for id, value := range raw {
		group, ok := asGroup(value)
		if !ok {
			return nil, &pkgconfig.ParseError{
				Location: doc.Location(),
				Format:   format,
				Err:      fmt.Errorf("invalid type for key `%s`: expected a table of group members, found %s", id, describe(value)),
			}
		}
		tree[id] = group
	}
	return tree, nil
}

func asGroup(value any) (pkgconfig.Group, bool) {
	switch v := value.(type) {
	case map[string]any:
		return pkgconfig.GroupOf(v), true
	case map[any]any:
		table, ok := pkgconfig.ValueOf(v).(pkgconfig.Table)
		if !ok {
			return nil, false
		}
		return table.Group, true
	default:
		return nil, false
	}
}

func describe(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("string %q", v)
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
