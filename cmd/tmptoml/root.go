package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/goliatone/go-tmptoml"
	"github.com/goliatone/go-tmptoml/internal/ctxlog"
	"github.com/goliatone/go-tmptoml/pkg/config"
	"github.com/goliatone/go-tmptoml/pkg/orchestrator"
	"github.com/goliatone/go-tmptoml/pkg/prompt"
	"github.com/goliatone/go-tmptoml/pkg/render"
)

// app holds the process streams so tests can drive the command in memory.
type app struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	isTerminal func() bool
	driver     prompt.Driver
}

func newApp() *app {
	return &app{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
		driver: prompt.NewSurveyDriver(survey.WithStdio(os.Stdin, os.Stderr, os.Stderr)),
	}
}

// execute runs the command and returns the process exit code. Failures are
// reported as a single ERROR line on stderr.
func execute(ctx context.Context, a *app, args []string) int {
	cmd := a.command()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		reportError(a.stderr, err)
		return 1
	}
	return 0
}

func (a *app) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tmptoml CONFIG TEMPLATE [GROUP_ID [SECONDARY_GROUP_ID]]",
		Short: "Render a template from a group of a TOML config",
		Long: `tmptoml flattens one group of a config document, plus one named subgroup
inside it, into template variables and renders TEMPLATE with them.

Scalar members of GROUP_ID and every member of GROUP_ID.SECONDARY_GROUP_ID
become variables; other subgroups are ignored. When a name exists in both
places the group's own scalar wins.

CONFIG may be TOML, YAML or JSON (picked by extension or --format). It can
also be an http(s) URL, or "-" to read from standard input. Every flag can
be set through a TMPTOML_<FLAG> environment variable or a --settings file.

Examples:
  tmptoml hosts.toml motd.tpl web prod
  tmptoml hosts.toml nginx.conf.tpl web prod -o nginx.conf --watch
  tmptoml hosts.toml motd.tpl -i          # pick the groups interactively
  tmptoml hosts.toml motd.tpl web prod --dump-vars`,
		Args:          cobra.RangeArgs(2, 4),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd.Flags())
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), cfg, args)
		},
	}
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	registerFlags(cmd.Flags())
	return cmd
}

func (a *app) run(ctx context.Context, cfg settings, args []string) error {
	logger := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	ctx = ctxlog.WithLogger(ctx, logger)

	gen, err := a.orchestrator(cfg, logger)
	if err != nil {
		return err
	}

	req := orchestrator.NewRequest(args[0], args[1], argAt(args, 2), argAt(args, 3))
	if req.GroupID == "" || req.SecondaryGroupID == "" {
		if req, err = a.chooseGroups(ctx, gen, cfg, req); err != nil {
			return err
		}
	}

	if cfg.DumpVars {
		return a.dumpVariables(ctx, gen, req)
	}
	if cfg.Watch {
		if err := watchable(req); err != nil {
			return err
		}
	}

	out, err := gen.Run(ctx, req)
	if err != nil {
		return err
	}
	if err := a.writeOutput(cfg.Output, out); err != nil {
		return err
	}

	if cfg.Watch {
		return a.watch(ctx, gen, req, cfg)
	}
	return nil
}

func (a *app) orchestrator(cfg settings, logger *slog.Logger) (*orchestrator.Orchestrator, error) {
	format, err := config.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	options := []orchestrator.Option{
		orchestrator.WithLoader(tmptoml.NewLoader(
			config.WithStdin(a.stdin),
			config.WithHTTPFallback(cfg.HTTPTimeout),
		)),
		orchestrator.WithParser(tmptoml.NewParser(config.WithFormat(format))),
		orchestrator.WithRenderer(render.New(render.WithStrict(!cfg.Lenient))),
		orchestrator.WithLogger(logger),
	}
	if len(cfg.Set) > 0 {
		overrides, err := orchestrator.ParseOverrides(cfg.Set)
		if err != nil {
			return nil, err
		}
		options = append(options, orchestrator.WithTransformer(overrides))
	}
	return orchestrator.New(options...), nil
}

func (a *app) chooseGroups(ctx context.Context, gen *orchestrator.Orchestrator, cfg settings, req orchestrator.Request) (orchestrator.Request, error) {
	if !cfg.Interactive {
		return req, errors.New("GROUP_ID and SECONDARY_GROUP_ID are required (or pass --interactive on a terminal)")
	}
	if req.Config != nil && req.Config.Kind() == config.SourceKindStdin {
		return req, errors.New("--interactive cannot be combined with a config read from standard input")
	}
	if a.isTerminal == nil || !a.isTerminal() {
		return req, errors.New("--interactive requires a terminal")
	}

	tree, err := gen.Tree(ctx, req)
	if err != nil {
		return req, err
	}
	sel, err := prompt.ChooseGroups(ctx, a.driver, tree, req.GroupID, req.SecondaryGroupID)
	if err != nil {
		return req, err
	}
	req.GroupID = sel.GroupID
	req.SecondaryGroupID = sel.SecondaryGroupID
	return req, nil
}

func (a *app) dumpVariables(ctx context.Context, gen *orchestrator.Orchestrator, req orchestrator.Request) error {
	variables, err := gen.Variables(ctx, req)
	if err != nil {
		return err
	}
	out, err := toml.Marshal(map[string]string(variables))
	if err != nil {
		return fmt.Errorf("encode variables: %w", err)
	}
	_, err = a.stdout.Write(out)
	return err
}

func (a *app) writeOutput(path, rendered string) error {
	if strings.TrimSpace(path) == "" {
		_, err := fmt.Fprintln(a.stdout, rendered)
		return err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func argAt(args []string, idx int) string {
	if idx < len(args) {
		return args[idx]
	}
	return ""
}
