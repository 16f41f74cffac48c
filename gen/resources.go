package gen

import (
	"context"
	"io/fs"
	"path"

	"github.com/teranos/declgen/diag"
	"github.com/teranos/declgen/equatable"
	"github.com/teranos/declgen/host"
	"github.com/teranos/declgen/logger"
	"github.com/teranos/declgen/pipeline"
	"github.com/teranos/declgen/resource"
	"github.com/teranos/declgen/synth"
	"github.com/teranos/declgen/synth/resources"
)

// tableInput is one resource table as read this run.
type tableInput struct {
	Path    string
	Data    string
	Sidecar string
	Opts    resource.Options
}

func (t tableInput) Equal(o tableInput) bool {
	return t.Path == o.Path && t.Data == o.Data && t.Sidecar == o.Sidecar && t.Opts.Equal(o.Opts)
}

func (t tableInput) Hash(h *equatable.Hasher) {
	h.String(t.Path)
	h.String(t.Data)
	h.String(t.Sidecar)
	t.Opts.Hash(h)
}

// read serves the table and sidecar captured for this run, so parsing
// sees exactly the bytes the memo compared.
func (t tableInput) read(p string) ([]byte, error) {
	switch {
	case p == t.Path:
		return []byte(t.Data), nil
	case p == t.Path+resource.SidecarSuffix && t.Sidecar != "":
		return []byte(t.Sidecar), nil
	}
	return nil, fs.ErrNotExist
}

// tableOutput is a parsed fragment, or the diagnostics that explain why
// there is none.
type tableOutput struct {
	Fragment    resource.Fragment
	OK          bool
	Diagnostics equatable.Seq[diag.Diagnostic]
}

type mergeOutput struct {
	Group       resource.Group
	OK          bool
	Diagnostics equatable.Seq[diag.Diagnostic]
}

func (g *Generator) resourceOptions() resource.Options {
	return resource.Options{
		ProjectRoot:   g.opts.ProjectRoot,
		RootNamespace: g.opts.Resources.RootNamespace,
		Overrides:     equatable.From(g.opts.Resources.Overrides),
	}
}

// runResources discovers, parses, merges and synthesizes resource tables.
func (g *Generator) runResources(r *pipeline.Run, p host.Provider, bag *diag.Bag) ([]pipeline.Artifact, error) {
	ro := g.opts.Resources
	paths, err := resource.Discover(r.Context(), g.opts.FS, ro.Dirs, ro.Patterns)
	if err != nil {
		return nil, err
	}
	logger.LoggerFromContext(r.Context()).Debugw("Resource tables discovered",
		logger.FieldCount, len(paths),
	)

	opts := g.resourceOptions()
	tables := make([]pipeline.Partition[tableInput], 0, len(paths))
	for _, rel := range paths {
		if err := r.Context().Err(); err != nil {
			return nil, err
		}
		data, err := p.ReadFile(rel)
		if err != nil {
			bag.Add(diag.Errorf(diag.CodeParse, rel, "cannot read resource table: %v", err))
			continue
		}
		sidecar, err := resource.ReadSidecar(p.ReadFile, rel)
		if err != nil {
			bag.Add(diag.Errorf(diag.CodeParse, rel, "%v", err))
			continue
		}
		tables = append(tables, pipeline.Partition[tableInput]{
			Key:   rel,
			Value: tableInput{Path: rel, Data: string(data), Sidecar: string(sidecar), Opts: opts},
		})
	}

	parsed, err := pipeline.Map(r, StageParse, tables, parseTable)
	if err != nil {
		return nil, err
	}
	var fragments []resource.Fragment
	for _, out := range pipeline.Collect(parsed) {
		bag.AddSeq(out.Diagnostics)
		if out.OK {
			fragments = append(fragments, out.Fragment)
		}
	}
	keyed, diags, err := resource.ResolveAll(r.Context(), fragments, opts)
	if err != nil {
		return nil, err
	}
	bag.Add(diags...)

	groups := pipeline.GroupBy(keyed, resource.GroupKey, resource.CompareKeyed)
	merged, err := pipeline.Map(r, StageMerge, groups, mergeGroup)
	if err != nil {
		return nil, err
	}

	var inputs []pipeline.Partition[resources.Input]
	classes := map[string]string{}
	for _, out := range pipeline.Collect(merged) {
		bag.AddSeq(out.Diagnostics)
		if !out.OK {
			continue
		}
		key := out.Group.Key
		// Every accessor shares one package, so class names must be unique.
		if first, dup := classes[key.ClassName]; dup {
			bag.Add(diag.Errorf(diag.CodeConsistency, key.ResourceKey,
				"className %q is already generated for %s", key.ClassName, first))
			continue
		}
		classes[key.ClassName] = key.ResourceKey
		inputs = append(inputs, pipeline.Partition[resources.Input]{
			Key:   key.ResourceKey,
			Value: resources.Input{Group: out.Group, Package: g.resourcePackage(), Dir: ro.OutputDir},
		})
	}

	synthesized, err := pipeline.Map(r, StageResources, inputs,
		func(_ context.Context, key string, in resources.Input) (synth.Output, error) {
			return synth.Safe(resources.Synthesize, resources.Name(in), key, in), nil
		})
	if err != nil {
		return nil, err
	}
	return artifacts(synthesized, bag), nil
}

func parseTable(ctx context.Context, _ string, in tableInput) (tableOutput, error) {
	if err := ctx.Err(); err != nil {
		return tableOutput{}, err
	}
	f, err := resource.LoadFragment(ctx, in.read, in.Path, in.Opts)
	if err != nil {
		if ctx.Err() != nil {
			return tableOutput{}, err
		}
		return tableOutput{Diagnostics: diag.Seq(diag.Errorf(diag.CodeParse, in.Path, "%v", err))}, nil
	}
	return tableOutput{Fragment: f, OK: true}, nil
}

func mergeGroup(ctx context.Context, _ string, items equatable.Seq[resource.Keyed]) (mergeOutput, error) {
	if err := ctx.Err(); err != nil {
		return mergeOutput{}, err
	}
	group, diags, ok := resource.Merge(items.Slice())
	return mergeOutput{Group: group, OK: ok, Diagnostics: diag.Seq(diags...)}, nil
}

func (g *Generator) resourcePackage() string {
	if pkg := g.opts.Resources.Package; pkg != "" {
		return pkg
	}
	dir := path.Base(g.opts.Resources.OutputDir)
	if name := resource.Identifier(dir); name != "" && dir != "." && dir != "/" {
		return name
	}
	return "resources"
}

// artifacts collects synthesized outputs in key order and records their diagnostics.
func artifacts(parts []pipeline.Partition[synth.Output], bag *diag.Bag) []pipeline.Artifact {
	out := make([]pipeline.Artifact, 0, len(parts))
	for _, o := range pipeline.Collect(parts) {
		bag.AddSeq(o.Diagnostics)
		out = append(out, o.Artifact)
	}
	return out
}
