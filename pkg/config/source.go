package config

import (
	"fmt"
	"net/url"
	"strings"
)

// StdinLocation is the conventional location string for standard input.
const StdinLocation = "-"

// fileSource identifies on-disk configuration documents.
type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() SourceKind {
	return SourceKindFile
}

// SourceFromFile returns a Source pointing to a file path. The path is kept
// as given so errors name exactly what the caller passed; an empty path is
// preserved so the loader can report it as not found.
func SourceFromFile(path string) Source {
	if strings.TrimSpace(path) == "" {
		return fileSource{}
	}
	return fileSource{path: path}
}

// fsSource references a path within an fs.FS.
type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() SourceKind {
	return SourceKindFS
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

// urlSource references an HTTP/HTTPS endpoint.
type urlSource struct {
	raw string
}

func (s urlSource) Location() string {
	return s.raw
}

func (s urlSource) Kind() SourceKind {
	return SourceKindURL
}

// SourceFromURL parses the supplied URL string and returns a Source. It panics
// if the URL is invalid to surface configuration mistakes early.
func SourceFromURL(raw string) Source {
	if raw == "" {
		panic("config: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		panic(fmt.Sprintf("config: invalid URL %q: %v", raw, err))
	}
	return urlSource{raw: raw}
}

type stdinSource struct{}

func (stdinSource) Location() string {
	return StdinLocation
}

func (stdinSource) Kind() SourceKind {
	return SourceKindStdin
}

// SourceFromStdin returns a Source reading the document from standard input
// (or the reader configured through WithStdin).
func SourceFromStdin() Source {
	return stdinSource{}
}

// SourceFromPath maps a CLI style path to a Source: "-" selects standard
// input, a valid http(s) URL selects a remote document and anything else is a
// file path.
func SourceFromPath(path string) Source {
	trimmed := strings.TrimSpace(path)
	if trimmed == StdinLocation {
		return SourceFromStdin()
	}
	if isRemote(trimmed) {
		return urlSource{raw: trimmed}
	}
	return SourceFromFile(path)
}

func isRemote(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
