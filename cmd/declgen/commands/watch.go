package commands

import (
	"context"
	"path/filepath"
	"slices"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/declgen/config"
	"github.com/teranos/declgen/logger"
	"github.com/teranos/declgen/watch"
)

// WatchCmd represents the watch command
var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate whenever project files change",
	Long: `Generate once, then watch the project tree and run again after every
batch of changes.

The pipeline stays in memory between runs, so only the artifacts whose
inputs changed are synthesized and written. Editing declgen.toml reloads the
configuration and starts over with a fresh pipeline.

Examples:
  declgen watch                 # Watch the project around the working directory
  DECLGEN_WATCH_DEBOUNCE_MS=50 declgen watch`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	p, err := openProject(cfg, true)
	if err != nil {
		return err
	}
	defer func() { p.Close() }()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	run := func(ctx context.Context) error {
		res, pub, err := p.generateOnce(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		printSummary(res, pub)
		printStages(res, false)
		return nil
	}

	if err := run(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		// Keep watching; the next change may fix the project.
		pterm.Error.Println(err.Error())
	}

	watcher, err := watch.New(watch.Options{
		Root:     p.root,
		Debounce: time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
		Ignore:   cfg.Watch.Ignore,
	})
	if err != nil {
		return err
	}
	defer watcher.Close()

	pterm.Info.Printfln("Watching %s (Ctrl+C to stop)", p.root)

	return watcher.Run(ctx, func(ctx context.Context, changed []string) error {
		if configChanged(p.cfg, p.root, changed) {
			next, err := reloadProject()
			if err != nil {
				// Keep the old configuration until the file is valid again.
				return err
			}
			p.Close()
			p = next
			pterm.Info.Println("Configuration reloaded")
		}
		logger.Debugw("Regenerating", logger.FieldCount, len(changed))
		if logger.ShouldOutput(Verbosity, logger.OutputProgress) {
			pterm.Info.Printfln("%d files changed, regenerating", len(changed))
		}
		return run(ctx)
	})
}

func reloadProject() (*project, error) {
	cfg, err := ReloadConfig()
	if err != nil {
		return nil, err
	}
	return openProject(cfg, true)
}

// configChanged reports whether the project config file is among changed.
func configChanged(cfg *config.Config, root string, changed []string) bool {
	file := cfg.File
	if file == "" {
		file = filepath.Join(root, config.ProjectFile)
	}
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return false
	}
	return slices.Contains(changed, filepath.ToSlash(rel))
}
