// Package commands implements the declgen subcommands.
package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/declgen/config"
	"github.com/teranos/declgen/diag"
	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/gen"
	"github.com/teranos/declgen/host"
	"github.com/teranos/declgen/host/gopkg"
	"github.com/teranos/declgen/logger"
	"github.com/teranos/declgen/output"
	"github.com/teranos/declgen/output/manifest"
)

// Set by the root command's persistent flags.
var (
	ConfigPath string
	Verbosity  int
)

// loadHost is replaced in tests.
var loadHost = func(ctx context.Context, cfg gopkg.Config) (host.Provider, error) {
	p, err := gopkg.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

var loaded *config.Config

// LoadConfig reads and validates the configuration for this invocation.
// The result is cached until ReloadConfig.
func LoadConfig() (*config.Config, error) {
	if loaded != nil {
		return loaded, nil
	}
	var (
		cfg *config.Config
		err error
	)
	if ConfigPath != "" {
		cfg, err = config.LoadFromFile(ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "invalid configuration"), "fix declgen.toml or the DECLGEN_* environment")
	}
	loaded = cfg
	return cfg, nil
}

// ReloadConfig drops every cached configuration and reads it again.
func ReloadConfig() (*config.Config, error) {
	loaded = nil
	config.Reset()
	return LoadConfig()
}

// project is everything one command invocation needs.
type project struct {
	cfg       *config.Config
	root      string
	generator *gen.Generator
	publisher *output.Publisher
	store     *manifest.SQLStore
}

// openProject prepares a run. Without createManifest an absent manifest is
// not created, so read-only commands leave the tree untouched.
func openProject(cfg *config.Config, createManifest bool) (*project, error) {
	root, err := cfg.ProjectRoot()
	if err != nil {
		return nil, err
	}
	p := &project{
		cfg:       cfg,
		root:      root,
		generator: gen.New(generatorOptions(cfg, root), loader(cfg, root)),
		publisher: &output.Publisher{Writer: output.NewWriter(root), DeleteStale: cfg.Output.DeleteStale},
	}
	printConfig(cfg, root)
	if path := cfg.ManifestPath(root); path != "" && (createManifest || exists(path)) {
		store, err := manifest.Open(path)
		if err != nil {
			return nil, err
		}
		p.store = store
		p.publisher.Store = store
	}
	return p, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (p *project) Close() error {
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}

func generatorOptions(cfg *config.Config, root string) gen.Options {
	return gen.Options{
		ProjectRoot: root,
		Jobs:        cfg.Generate.Jobs,
		Resources: gen.ResourceOptions{
			Enabled:       cfg.Resources.Enabled,
			Dirs:          cfg.Resources.Dirs,
			Patterns:      cfg.Resources.Patterns,
			RootNamespace: cfg.Resources.RootNamespace,
			OutputDir:     cfg.Resources.OutputDir,
			Package:       cfg.Resources.Package,
			Overrides:     cfg.Resources.Overrides,
		},
		Constructors: cfg.Generate.Constructors,
		Bindings:     cfg.Generate.Bindings,
		Services:     cfg.Generate.Services,
	}
}

func loader(cfg *config.Config, root string) gen.Loader {
	pcfg := gopkg.Config{
		Dir:             root,
		Patterns:        cfg.Project.Packages,
		Tests:           cfg.Project.Tests,
		DirectivePrefix: cfg.Generate.DirectivePrefix,
		BuildFlags:      cfg.Project.BuildFlags,
	}
	return func(ctx context.Context) (host.Provider, error) {
		return loadHost(ctx, pcfg)
	}
}

// generateOnce runs the generator and publishes its report.
func (p *project) generateOnce(ctx context.Context, w io.Writer) (*gen.Result, *output.Publication, error) {
	res, err := p.generator.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	if logger.ShouldOutput(Verbosity, logger.OutputErrors) {
		diag.Render(w, res.Diagnostics)
	}
	pub, err := p.publisher.Publish(ctx, res.Report)
	if err != nil {
		return res, nil, errors.Wrap(err, "failed to write artifacts")
	}
	return res, pub, nil
}

func printSummary(res *gen.Result, pub *output.Publication) {
	if logger.ShouldOutput(Verbosity, logger.OutputResults) {
		for _, name := range pub.Written {
			pterm.Printfln("  %s %s", pterm.Green("wrote"), name)
		}
		for _, name := range pub.Deleted {
			pterm.Printfln("  %s %s", pterm.Red("deleted"), name)
		}
		for _, name := range pub.Stale {
			pterm.Info.Printfln("stale artifact kept: %s", name)
		}
	}
	if logger.ShouldOutput(Verbosity, logger.OutputSummary) {
		d := res.Report.Diff
		pterm.Info.Printfln("run %s: %d added, %d changed, %d unchanged, %d removed",
			res.Report.RunID, len(d.Added), len(d.Changed), len(d.Unchanged), len(d.Removed))
	}
	if logger.ShouldOutput(Verbosity, logger.OutputUserStatus) {
		summary := pterm.Sprintf("%d artifacts: %d written, %d unchanged, %d deleted (%d stages executed)",
			len(res.Report.Artifacts), len(pub.Written), len(pub.Unchanged), len(pub.Deleted), res.Report.Executed())
		if res.HasErrors() {
			pterm.Warning.Println(summary)
		} else {
			pterm.Success.Println(summary)
		}
	}
	if logger.ShouldOutput(Verbosity, logger.OutputDataDump) {
		written := make(map[string]bool, len(pub.Written))
		for _, name := range pub.Written {
			written[name] = true
		}
		for _, a := range res.Report.Artifacts {
			if written[a.Name] {
				pterm.DefaultSection.Println(a.Name)
				pterm.Println(a.Text)
			}
		}
	}
}

func printStages(res *gen.Result, force bool) {
	if force || logger.ShouldOutput(Verbosity, logger.OutputStages) {
		data := pterm.TableData{{"Stage", "Executed", "Reused"}}
		for _, s := range res.Report.Stages {
			data = append(data, []string{s.Stage, pterm.Sprint(s.Executed), pterm.Sprint(s.Reused)})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}
	if logger.ShouldOutput(Verbosity, logger.OutputPartitions) {
		for _, s := range res.Report.Stages {
			for _, key := range s.ExecutedKeys {
				pterm.Printfln("  %s %s", pterm.Gray(s.Stage), key)
			}
		}
	}
	if logger.ShouldOutput(Verbosity, logger.OutputTiming) {
		pterm.Info.Printfln("run %s took %s", res.Report.RunID, res.Report.Duration.Round(time.Millisecond))
	}
}

func printConfig(cfg *config.Config, root string) {
	if !logger.ShouldOutput(Verbosity, logger.OutputConfig) {
		return
	}
	file := cfg.File
	if file == "" {
		file = "(defaults)"
	}
	pterm.Info.Printfln("config %s", file)
	pterm.Printfln("  root       %s", root)
	pterm.Printfln("  packages   %v", cfg.Project.Packages)
	pterm.Printfln("  jobs       %d", cfg.Generate.Jobs)
	pterm.Printfln("  resources  %t %v", cfg.Resources.Enabled, cfg.Resources.Dirs)
	pterm.Printfln("  manifest   %s", cfg.ManifestPath(root))
}

// signalContext is canceled on interrupt so a run in progress is abandoned
// and the previous artifacts stay in place.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
