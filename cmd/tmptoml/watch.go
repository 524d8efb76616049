package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-tmptoml/internal/ctxlog"
	"github.com/goliatone/go-tmptoml/pkg/config"
	"github.com/goliatone/go-tmptoml/pkg/orchestrator"
)

const watchDebounce = 150 * time.Millisecond

// watch re-renders req whenever the config or template file changes, until
// ctx is cancelled. Render failures are reported and the loop keeps going.
func (a *app) watch(ctx context.Context, gen *orchestrator.Orchestrator, req orchestrator.Request, cfg settings) error {
	targets, err := watchTargets(req.Config.Location(), req.TemplatePath)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files on save, so watch the parent directories
	// and filter by name.
	dirs := make(map[string]struct{}, len(targets))
	for path := range targets {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	logger := ctxlog.FromContext(ctx)
	logger.Info("watching for changes", "config", req.Config.Location(), "template", req.TemplatePath)

	timer := time.NewTimer(watchDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event, targets) {
				continue
			}
			logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		case <-timer.C:
			out, err := gen.Run(ctx, req)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				reportError(a.stderr, err)
				continue
			}
			if err := a.writeOutput(cfg.Output, out); err != nil {
				reportError(a.stderr, err)
			}
		}
	}
}

func watchable(req orchestrator.Request) error {
	if req.Config == nil || req.Config.Kind() != config.SourceKindFile {
		return errors.New("--watch needs a config file on disk")
	}
	return nil
}

func watchTargets(paths ...string) (map[string]struct{}, error) {
	targets := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", path, err)
		}
		targets[abs] = struct{}{}
	}
	return targets, nil
}

func relevant(event fsnotify.Event, targets map[string]struct{}) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := targets[abs]
	return ok
}
