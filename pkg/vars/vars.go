// Package vars selects a group and one of its subgroups from a parsed
// configuration tree and flattens them into the string variables a template
// is rendered with.
package vars

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-tmptoml/pkg/config"
)

// Variables maps variable names to their rendered text.
type Variables map[string]string

// Keys lists variable names in lexical order.
func (v Variables) Keys() []string {
	keys := make([]string, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Context converts the variables into the map shape template engines accept.
func (v Variables) Context() map[string]any {
	out := make(map[string]any, len(v))
	for key, value := range v {
		out[key] = value
	}
	return out
}

// GroupNotFoundError reports a primary or secondary identifier that does not
// exist. The same type serves both lookups; ID tells them apart.
type GroupNotFoundError struct {
	ID string
}

func (e *GroupNotFoundError) Error() string {
	return fmt.Sprintf("group %q not found", e.ID)
}

// Resolve looks up groupID in the tree and secondaryID inside that group.
// The secondary value is returned as-is; a non-table value is allowed and
// simply contributes nothing when flattened as a subgroup.
func Resolve(tree config.Tree, groupID, secondaryID string) (config.Group, config.Value, error) {
	primary, ok := tree.Group(groupID)
	if !ok {
		return nil, nil, &GroupNotFoundError{ID: groupID}
	}
	secondary, ok := primary.Lookup(secondaryID)
	if !ok {
		return nil, nil, &GroupNotFoundError{ID: secondaryID}
	}
	return primary, secondary, nil
}

// Flatten merges the primary group's scalar and array members with the
// members of the subgroup named secondaryID. Other subgroups are skipped.
//
// Precedence does not depend on map iteration order: every direct member is
// inserted first, then subgroup members fill only the names still free, so a
// top-level scalar always wins over a same-named subgroup entry. A nil member
// flattens to an empty string.
func Flatten(primary config.Group, secondaryID string) Variables {
	out := make(Variables, len(primary))

	var selected config.Group
	for key, value := range primary {
		switch config.KindOf(value) {
		case config.KindTable:
			if key == secondaryID {
				selected = value.(config.Table).Group
			}
		case config.KindScalar, config.KindArray:
			out[key] = config.Stringify(value)
		}
	}

	for key, value := range selected {
		if _, exists := out[key]; exists {
			continue
		}
		out[key] = config.Stringify(value)
	}
	return out
}

// ResolveAndFlatten runs Resolve followed by Flatten.
func ResolveAndFlatten(tree config.Tree, groupID, secondaryID string) (Variables, error) {
	primary, _, err := Resolve(tree, groupID, secondaryID)
	if err != nil {
		return nil, err
	}
	return Flatten(primary, secondaryID), nil
}
