// Package pipeline runs generation stages incrementally.
//
// A Driver keeps, for every (stage, partition key), the last input value and
// the output it produced. A stage re-executes a partition only when the new
// input is not Equal to the memoized one, so a run over unchanged inputs
// replays every output without calling a single transform.
//
// Runs are transactional: the memo table and the published artifact set are
// replaced only when the whole run succeeds. A canceled or failed run leaves
// the previous state authoritative.
package pipeline

import (
	"context"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/logger"
	"go.uber.org/zap"
)

// Options configure a Driver.
type Options struct {
	// Jobs bounds concurrent partition transforms. Zero means GOMAXPROCS.
	Jobs int
}

type memoEntry struct {
	input  any
	output any
}

type memoTable map[string]map[string]memoEntry

// Driver owns the memo table and the last published artifact set.
// Runs are serialized.
type Driver struct {
	mu         sync.Mutex
	jobs       int
	memo       memoTable
	published  map[string]Artifact
	generation int
	log        *zap.SugaredLogger
}

// NewDriver creates a driver with an empty memo table.
func NewDriver(opts Options) *Driver {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return &Driver{
		jobs:      jobs,
		memo:      memoTable{},
		published: map[string]Artifact{},
		log:       logger.ComponentLogger("pipeline"),
	}
}

// Published returns the artifact set of the last successful run, sorted by name.
func (d *Driver) Published() []Artifact {
	d.mu.Lock()
	defer d.mu.Unlock()
	return sortedArtifacts(d.published)
}

// Generation returns the number of successful runs.
func (d *Driver) Generation() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generation
}

// StageReport counts how a stage's partitions were satisfied.
type StageReport struct {
	Stage string
	// Executed is the number of transform calls.
	Executed int
	// Reused counts partitions served from the memo table or from an equal
	// input executed earlier in the same run.
	Reused int
	// ExecutedKeys are the partitions whose transform ran, sorted.
	ExecutedKeys []string
}

// Report describes one successful run.
type Report struct {
	RunID     string
	Stages    []StageReport
	Artifacts []Artifact
	Diff      Diff
	Duration  time.Duration
}

// Stage returns the report for stage, or a zero report when it did not run.
func (r *Report) Stage(name string) StageReport {
	for _, s := range r.Stages {
		if s.Stage == name {
			return s
		}
	}
	return StageReport{Stage: name}
}

// Executed is the total number of transform calls in the run.
func (r *Report) Executed() int {
	n := 0
	for _, s := range r.Stages {
		n += s.Executed
	}
	return n
}

// Run is the handle stages are declared on during Driver.Run.
type Run struct {
	ctx   context.Context
	id    string
	jobs  int
	prior memoTable
	log   *zap.SugaredLogger

	mu      sync.Mutex
	next    memoTable
	stats   map[string]*StageReport
	emitted map[string]Artifact
}

// Context returns the run's context.
func (r *Run) Context() context.Context { return r.ctx }

// ID returns the run identifier.
func (r *Run) ID() string { return r.id }

// Run executes fn against a fresh Run and publishes the artifacts fn emitted.
// On error or cancellation nothing is published and the memo table is kept.
func (d *Driver) Run(ctx context.Context, fn func(r *Run) error) (*Report, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	r := &Run{
		ctx:     ctx,
		id:      runID,
		jobs:    d.jobs,
		prior:   d.memo,
		log:     logger.ChildLogger(d.log, logger.FieldRunID, runID),
		next:    memoTable{},
		stats:   map[string]*StageReport{},
	}

	if err := fn(r); err != nil {
		r.log.Debugw("Run failed, keeping previous state", logger.FieldError, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "run canceled")
	}
	if r.emitted == nil {
		return nil, errors.AssertionFailedf("run %s finished without emitting artifacts", runID)
	}

	report := &Report{
		RunID:     runID,
		Stages:    r.stageReports(),
		Artifacts: sortedArtifacts(r.emitted),
		Diff:      diffArtifacts(d.published, r.emitted),
		Duration:  time.Since(start),
	}
	d.memo = r.next
	d.published = r.emitted
	d.generation++

	r.log.Debugw("Run published",
		logger.FieldExecuted, report.Executed(),
		logger.FieldAdded, len(report.Diff.Added),
		logger.FieldChanged, len(report.Diff.Changed),
		logger.FieldRemoved, len(report.Diff.Removed),
		logger.FieldDurationMS, report.Duration.Milliseconds(),
	)
	return report, nil
}

// Emit adds artifacts to the run's output set. Names must be unique across
// every Emit call of the run. Emitting nothing still marks the run as
// producing an (empty) set.
func (r *Run) Emit(artifacts ...Artifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emitted == nil {
		r.emitted = make(map[string]Artifact, len(artifacts))
	}
	for _, a := range artifacts {
		if a.Name == "" {
			return errors.New("artifact with empty name")
		}
		if _, dup := r.emitted[a.Name]; dup {
			return errors.Wrapf(errors.ErrConflict, "artifact %s emitted twice", a.Name)
		}
		r.emitted[a.Name] = a
	}
	return nil
}

func (r *Run) stageReports() []StageReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StageReport, 0, len(r.stats))
	for _, s := range r.stats {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b StageReport) int { return strings.Compare(a.Stage, b.Stage) })
	return out
}

func (r *Run) lookup(stage, key string) (memoEntry, bool) {
	e, ok := r.prior[stage][key]
	return e, ok
}

// record stores the outputs of one stage invocation in the next memo table.
func (r *Run) record(stage string, entries map[string]memoEntry, executed []string, reused int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.next[stage]; dup {
		return errors.Newf("stage %s declared twice in one run", stage)
	}
	r.next[stage] = entries
	r.stats[stage] = &StageReport{Stage: stage, Executed: len(executed), Reused: reused, ExecutedKeys: executed}
	return nil
}
