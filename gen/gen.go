// Package gen wires the host, the resource aggregation engine and the
// synthesizers into one incremental pipeline.
//
// A Generator lives for the whole process. Each Run reloads the host and
// the resource tables, rebuilds descriptors and fragments from scratch and
// lets the pipeline driver decide, by value equality, which partitions need
// to be recomputed.
package gen

import (
	"context"
	"io/fs"
	"os"
	"time"

	"github.com/teranos/declgen/descriptor"
	"github.com/teranos/declgen/diag"
	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/host"
	"github.com/teranos/declgen/logger"
	"github.com/teranos/declgen/pipeline"
	"github.com/teranos/declgen/resource"
	"go.uber.org/zap"
)

// Stage names, also used as report keys.
const (
	StageParse        = "resources.parse"
	StageMerge        = "resources.merge"
	StageResources    = "resources.synthesize"
	StageConstructors = "ctor.synthesize"
	StageBindings     = "binding.synthesize"
	StageServices     = "services.synthesize"
)

// ResourceOptions configure resource table discovery and output.
type ResourceOptions struct {
	Enabled bool
	// Dirs are scanned for tables, relative to the project root.
	Dirs     []string
	Patterns []string
	// RootNamespace prefixes every derived namespace.
	RootNamespace string
	// OutputDir receives the accessor files, relative to the project root.
	OutputDir string
	// Package is the Go package name of OutputDir.
	Package   string
	Overrides []resource.Override
}

// Options configure a Generator.
type Options struct {
	ProjectRoot  string
	Jobs         int
	Resources    ResourceOptions
	Constructors bool
	Bindings     bool
	Services     bool
	// FS is where resource tables are discovered; defaults to the project root.
	FS fs.FS
}

// Loader produces a fresh host provider for a run.
type Loader func(ctx context.Context) (host.Provider, error)

// Generator runs the pipeline and keeps its memo across runs.
type Generator struct {
	opts   Options
	load   Loader
	driver *pipeline.Driver
	log    *zap.SugaredLogger
}

// New creates a generator.
func New(opts Options, load Loader) *Generator {
	if opts.FS == nil {
		opts.FS = os.DirFS(opts.ProjectRoot)
	}
	if len(opts.Resources.Patterns) == 0 {
		opts.Resources.Patterns = []string{"*.resx"}
	}
	return &Generator{
		opts:   opts,
		load:   load,
		driver: pipeline.NewDriver(pipeline.Options{Jobs: opts.Jobs}),
		log:    logger.ComponentLogger("gen"),
	}
}

// Result is the outcome of one successful run.
type Result struct {
	Report      *pipeline.Report
	Diagnostics []diag.Diagnostic
}

// HasErrors reports whether any diagnostic is an error.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity >= diag.SeverityError {
			return true
		}
	}
	return false
}

// Published returns the artifacts of the last successful run.
func (g *Generator) Published() []pipeline.Artifact {
	return g.driver.Published()
}

// Run executes one generation. Only host enumeration failure and
// cancellation fail the run; everything else is reported as diagnostics.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	bag := diag.NewBag()

	report, err := g.driver.Run(logger.WithComponent(ctx, "gen"), func(r *pipeline.Run) error {
		p, err := g.load(r.Context())
		if err != nil {
			return errors.Wrap(err, "failed to load host")
		}

		var artifacts []pipeline.Artifact
		if g.opts.Resources.Enabled {
			out, err := g.runResources(r, p, bag)
			if err != nil {
				return err
			}
			artifacts = append(artifacts, out...)
		}

		set, err := descriptor.SnapshotAll(r.Context(), p)
		if err != nil {
			return err
		}
		bag.Add(set.Diagnostics...)
		out, err := g.runDescriptors(r, set.Descriptors, bag)
		if err != nil {
			return err
		}
		artifacts = append(artifacts, out...)

		return r.Emit(artifacts...)
	})
	if err != nil {
		return nil, err
	}

	diags := bag.Items()
	g.log.Infow("Generation complete",
		logger.FieldRunID, report.RunID,
		logger.FieldExecuted, report.Executed(),
		logger.FieldAdded, len(report.Diff.Added),
		logger.FieldChanged, len(report.Diff.Changed),
		logger.FieldRemoved, len(report.Diff.Removed),
		logger.FieldCount, len(diags),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return &Result{Report: report, Diagnostics: diags}, nil
}
