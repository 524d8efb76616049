package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-tmptoml/pkg/orchestrator"
	"github.com/goliatone/go-tmptoml/pkg/vars"
)

func reportError(w io.Writer, err error) {
	prefix := lipgloss.NewRenderer(w).NewStyle().Bold(true).Foreground(lipgloss.Color("9")).Render("ERROR:")
	fmt.Fprintf(w, "%s %s\n", prefix, describeError(err))
}

// describeError maps a failure to the user facing sentence for its kind.
func describeError(err error) string {
	var outer *orchestrator.Error
	if !errors.As(err, &outer) {
		return err.Error()
	}

	switch outer.Kind {
	case orchestrator.KindFile:
		return fmt.Sprintf("There was an issue reading the config or template file. Reason: %v", outer.Err)
	case orchestrator.KindGroupNotFound:
		id := outer.Err.Error()
		var groupErr *vars.GroupNotFoundError
		if errors.As(outer.Err, &groupErr) {
			id = groupErr.ID
		}
		return fmt.Sprintf("Specified group_id or secondary_group_id (%q) could not be found in the config file.", id)
	case orchestrator.KindConfig:
		return fmt.Sprintf("The specified config file could not be parsed. Reason: %v", outer.Err)
	case orchestrator.KindRender:
		return fmt.Sprintf("Unable to render the specified template. Reason: %v", outer.Err)
	default:
		return err.Error()
	}
}
