package tmptoml

import (
	internalLoader "github.com/goliatone/go-tmptoml/internal/config/loader"
	internalParser "github.com/goliatone/go-tmptoml/internal/config/parser"
	pkgconfig "github.com/goliatone/go-tmptoml/pkg/config"
)

// NewLoader constructs a loader using the internal implementation while keeping
// the concrete type hidden from consumers.
func NewLoader(options ...pkgconfig.LoaderOption) pkgconfig.Loader {
	cfg := pkgconfig.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}

// NewParser constructs a parser backed by the internal implementation.
func NewParser(options ...pkgconfig.ParserOption) pkgconfig.Parser {
	cfg := pkgconfig.NewParserOptions(options...)
	return internalParser.New(cfg)
}
