// Package prompt asks the user to pick the group and subgroup to render when
// they were not given on the command line.
package prompt

import (
	"context"
	"fmt"

	"github.com/goliatone/go-tmptoml/pkg/config"
)

const pageSize = 12

// Selection is the group/subgroup pair chosen by the user.
type Selection struct {
	GroupID          string
	SecondaryGroupID string
}

// ChooseGroups fills in whichever identifiers are empty by prompting with the
// ids available in tree. Supplied identifiers are kept as-is, even when they
// do not exist; the resolver reports those.
func ChooseGroups(ctx context.Context, driver Driver, tree config.Tree, groupID, secondaryGroupID string) (Selection, error) {
	sel := Selection{GroupID: groupID, SecondaryGroupID: secondaryGroupID}
	if sel.GroupID != "" && sel.SecondaryGroupID != "" {
		return sel, nil
	}
	if driver == nil {
		return sel, fmt.Errorf("prompt: driver is nil")
	}

	if sel.GroupID == "" {
		id, err := choose(ctx, driver, "Group", tree.GroupIDs())
		if err != nil {
			return sel, err
		}
		sel.GroupID = id
	}

	if sel.SecondaryGroupID == "" {
		group, ok := tree.Group(sel.GroupID)
		if !ok {
			return sel, nil
		}
		id, err := choose(ctx, driver, fmt.Sprintf("Secondary group in %q", sel.GroupID), group.TableKeys())
		if err != nil {
			return sel, err
		}
		sel.SecondaryGroupID = id
	}
	return sel, nil
}

func choose(ctx context.Context, driver Driver, message string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("%w for %s", ErrNoChoices, message)
	}
	idx, err := driver.Select(ctx, SelectConfig{
		Message:  message,
		Options:  options,
		PageSize: pageSize,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(options) {
		return "", fmt.Errorf("prompt: selection %d out of range", idx)
	}
	return options[idx], nil
}
