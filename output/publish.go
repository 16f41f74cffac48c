package output

import (
	"context"
	"slices"

	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/logger"
	"github.com/teranos/declgen/output/manifest"
	"github.com/teranos/declgen/pipeline"
)

// Publisher applies run reports to disk.
type Publisher struct {
	Writer *Writer
	// Store, when set, carries the artifact set across processes so files
	// dropped while declgen was not running are still cleaned up.
	Store manifest.Store
	// DeleteStale removes artifacts the run no longer produces.
	DeleteStale bool

	// published is what the last successful Publish put on disk. It stands
	// in for the manifest when Store is nil.
	published map[string]string
}

// Publication summarises one Publish. Every list is sorted.
type Publication struct {
	Written   []string
	Unchanged []string
	Deleted   []string
	// Stale lists artifacts no longer produced that are still on disk.
	Stale []string
}

// Publish writes the artifacts a report added or changed and deletes the ones
// it dropped. Artifacts the driver reused are only rewritten when no earlier
// publication recorded them with that content. The driver commits a run
// before it is published, so a failed Publish must not hide its artifacts
// from the next one.
func (p *Publisher) Publish(ctx context.Context, report *pipeline.Report) (*Publication, error) {
	recorded := p.published
	if p.Store != nil {
		recorded = make(map[string]string)
		entries, err := p.Store.Load(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			recorded[e.Name] = e.Hash
		}
	}

	touched := make(map[string]bool)
	for _, name := range report.Diff.Touched() {
		touched[name] = true
	}

	pub := &Publication{}
	current := make(map[string]bool, len(report.Artifacts))
	entries := make([]manifest.Entry, 0, len(report.Artifacts))
	for _, a := range report.Artifacts {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "publish interrupted")
		}
		current[a.Name] = true
		entry := manifest.EntryFor(a)
		entries = append(entries, entry)

		if hash, ok := recorded[a.Name]; ok && !touched[a.Name] && hash == entry.Hash {
			pub.Unchanged = append(pub.Unchanged, a.Name)
			continue
		}
		wrote, err := p.Writer.Write(a)
		if err != nil {
			return nil, err
		}
		if wrote {
			pub.Written = append(pub.Written, a.Name)
		} else {
			pub.Unchanged = append(pub.Unchanged, a.Name)
		}
	}

	stale := slices.Clone(report.Diff.Removed)
	for name := range recorded {
		if !current[name] {
			stale = append(stale, name)
		}
	}
	slices.Sort(stale)
	stale = slices.Compact(stale)

	for _, name := range stale {
		if !p.DeleteStale {
			pub.Stale = append(pub.Stale, name)
			// Still ours; a later run with deletion enabled cleans it up.
			if hash, ok := recorded[name]; ok {
				entries = append(entries, manifest.Entry{Name: name, Hash: hash})
			}
			continue
		}
		removed, err := p.Writer.Remove(name)
		if err != nil {
			return nil, err
		}
		if removed {
			pub.Deleted = append(pub.Deleted, name)
		}
	}

	if p.Store != nil {
		if err := p.Store.Replace(ctx, report.RunID, entries); err != nil {
			return nil, err
		}
	}

	p.published = make(map[string]string, len(entries))
	for _, e := range entries {
		p.published[e.Name] = e.Hash
	}

	slices.Sort(pub.Written)
	slices.Sort(pub.Unchanged)

	p.Writer.logger.Infow("Artifacts published",
		logger.FieldRunID, report.RunID,
		"written", len(pub.Written),
		"unchanged", len(pub.Unchanged),
		"deleted", len(pub.Deleted),
	)
	return pub, nil
}
