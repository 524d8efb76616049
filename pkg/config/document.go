package config

import (
	"errors"
	"sort"
)

// Source identifies where a configuration document originated so loaders can
// operate on files, fs.FS entries, URLs or standard input without leaking
// implementation details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile  SourceKind = "file"
	SourceKindFS    SourceKind = "fs"
	SourceKindURL   SourceKind = "url"
	SourceKindStdin SourceKind = "stdin"
)

// Document wraps the raw configuration payload and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document wrapper. Empty payloads are valid: an
// empty TOML document simply has no groups.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("config: source is required")
	}

	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Len reports the payload size in bytes.
func (d Document) Len() int {
	return len(d.raw)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Tree is a parsed configuration: top-level group identifiers mapped to
// their members. It is never mutated once the parser returns it.
type Tree map[string]Group

// Group returns the group registered under id.
func (t Tree) Group(id string) (Group, bool) {
	group, ok := t[id]
	return group, ok
}

// GroupIDs lists the top-level group identifiers in lexical order.
func (t Tree) GroupIDs() []string {
	return sortedKeys(t)
}

// Group maps member keys to values. Primary groups and subgroups share this
// shape; a subgroup is the Group held by a Table value.
type Group map[string]Value

// Lookup returns the member stored under key.
func (g Group) Lookup(key string) (Value, bool) {
	value, ok := g[key]
	return value, ok
}

// Keys lists member keys in lexical order.
func (g Group) Keys() []string {
	return sortedKeys(g)
}

// TableKeys lists the keys whose values are tables, i.e. the subgroups that
// can be selected as a secondary group.
func (g Group) TableKeys() []string {
	var out []string
	for _, key := range g.Keys() {
		if KindOf(g[key]) == KindTable {
			out = append(out, key)
		}
	}
	return out
}

// Interface converts the group back into plain Go values.
func (g Group) Interface() map[string]any {
	out := make(map[string]any, len(g))
	for key, value := range g {
		out[key] = interfaceOf(value)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
