package gotemplate

import (
	"regexp"
	"sort"
	"strings"
)

var (
	commentPattern      = regexp.MustCompile(`(?s)\{#.*?#\}`)
	commentBlockPattern = regexp.MustCompile(`(?s)\{%-?\s*comment\s*-?%\}.*?\{%-?\s*endcomment\s*-?%\}`)
	verbatimPattern     = regexp.MustCompile(`(?s)\{%-?\s*verbatim\s*-?%\}.*?\{%-?\s*endverbatim\s*-?%\}`)
	defaultPattern      = regexp.MustCompile(`\|\s*default(?:_if_none)?\b`)
	referencePattern    = regexp.MustCompile(`\{%-?\s*(?:include|extends|import)\s+(?:"([^"]*)"|'([^']*)')`)
	printPattern        = regexp.MustCompile(`(?s)\{\{-?(.*?)-?\}\}`)
	tagPattern          = regexp.MustCompile(`(?s)\{%-?(.*?)-?%\}`)
	identPattern        = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
	assignPattern       = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*=[^=]`)
	aliasPattern        = regexp.MustCompile(`\bas\s+([A-Za-z_][A-Za-z0-9_]*)`)
)

// builtinNames resolve without any context entry.
var builtinNames = map[string]struct{}{
	"true": {}, "false": {}, "True": {}, "False": {},
	"none": {}, "None": {}, "nil": {}, "not": {},
	"forloop": {}, "loop": {}, "block": {},
}

// undefinedVariables returns the root identifiers of print tags that are
// neither defined nor bound by the template itself, in lexical order.
// Bindings are collected template wide, so a loop variable counts as bound
// everywhere. Expressions that apply the default filter are skipped.
func undefinedVariables(source string, defined func(string) bool) []string {
	source = stripInert(source)

	bound := boundNames(source)

	missing := map[string]struct{}{}
	for _, match := range printPattern.FindAllStringSubmatch(source, -1) {
		expr := strings.TrimSpace(match[1])
		if defaultPattern.MatchString(expr) {
			continue
		}
		root := identPattern.FindString(expr)
		if root == "" {
			continue
		}
		if _, ok := builtinNames[root]; ok {
			continue
		}
		if _, ok := bound[root]; ok {
			continue
		}
		if defined(root) {
			continue
		}
		missing[root] = struct{}{}
	}

	out := make([]string, 0, len(missing))
	for name := range missing {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// templateReferences lists the literal names passed to include, extends and
// import tags, in order of appearance.
func templateReferences(source string) []string {
	var refs []string
	for _, match := range referencePattern.FindAllStringSubmatch(stripInert(source), -1) {
		ref := match[1]
		if ref == "" {
			ref = match[2]
		}
		if ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

// stripInert drops comments and verbatim blocks, whose tags never execute.
func stripInert(source string) string {
	source = commentPattern.ReplaceAllString(source, "")
	source = commentBlockPattern.ReplaceAllString(source, "")
	return verbatimPattern.ReplaceAllString(source, "")
}

func boundNames(source string) map[string]struct{} {
	bound := map[string]struct{}{}
	bind := func(name string) {
		if name = strings.TrimSpace(name); name != "" {
			bound[name] = struct{}{}
		}
	}

	for _, match := range tagPattern.FindAllStringSubmatch(source, -1) {
		body := strings.TrimSpace(match[1])
		keyword := identPattern.FindString(body)
		rest := strings.TrimSpace(strings.TrimPrefix(body, keyword))

		switch keyword {
		case "for":
			if idx := strings.Index(rest, " in "); idx >= 0 {
				for _, name := range strings.Split(rest[:idx], ",") {
					bind(identPattern.FindString(strings.TrimSpace(name)))
				}
			}
		case "set":
			bind(identPattern.FindString(rest))
		case "with":
			for _, m := range assignPattern.FindAllStringSubmatch(rest+" ", -1) {
				bind(m[1])
			}
		case "macro":
			bind(identPattern.FindString(rest))
			if open := strings.Index(rest, "("); open >= 0 {
				args := rest[open+1:]
				if end := strings.LastIndex(args, ")"); end >= 0 {
					args = args[:end]
				}
				for _, arg := range strings.Split(args, ",") {
					bind(identPattern.FindString(strings.TrimSpace(arg)))
				}
			}
		case "import":
			if end := strings.LastIndexAny(rest, `"'`); end >= 0 {
				for _, item := range strings.Split(rest[end+1:], ",") {
					fields := strings.Fields(item)
					if len(fields) > 0 {
						bind(identPattern.FindString(fields[len(fields)-1]))
					}
				}
			}
		}

		for _, m := range aliasPattern.FindAllStringSubmatch(rest, -1) {
			bind(m[1])
		}
	}
	return bound
}
