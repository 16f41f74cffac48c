package gen

import (
	"context"

	"github.com/teranos/declgen/descriptor"
	"github.com/teranos/declgen/diag"
	"github.com/teranos/declgen/pipeline"
	"github.com/teranos/declgen/synth"
	"github.com/teranos/declgen/synth/binding"
	"github.com/teranos/declgen/synth/ctor"
	"github.com/teranos/declgen/synth/services"
)

// runDescriptors feeds the descriptor snapshot to the enabled per-type and
// per-package synthesizers.
func (g *Generator) runDescriptors(r *pipeline.Run, ds []descriptor.Descriptor, bag *diag.Bag) ([]pipeline.Artifact, error) {
	var out []pipeline.Artifact

	perType := []struct {
		enabled    bool
		stage      string
		annotation string
		name       func(synth.Members) string
		synthesize synth.Synthesizer[synth.Members]
	}{
		{g.opts.Constructors, StageConstructors, ctor.Annotation, ctor.Name, ctor.Synthesize},
		{g.opts.Bindings, StageBindings, binding.Annotation, binding.Name, binding.Synthesize},
	}
	for _, s := range perType {
		if !s.enabled {
			continue
		}
		members := synth.CollectMembers(ds, s.annotation)
		parts := uniqueNames(pipeline.Keyed(members, s.name),
			func(m synth.Members) string { return m.Type.QualifiedName }, bag)
		res, err := pipeline.Map(r, s.stage, parts,
			func(_ context.Context, key string, m synth.Members) (synth.Output, error) {
				return synth.Safe(s.synthesize, key, m.Type.QualifiedName, m), nil
			})
		if err != nil {
			return nil, err
		}
		out = append(out, artifacts(res, bag)...)
	}

	if g.opts.Services {
		parts := uniqueNames(pipeline.Keyed(services.Collect(ds), services.Name),
			func(in services.Input) string { return in.Path }, bag)
		res, err := pipeline.Map(r, StageServices, parts,
			func(_ context.Context, key string, in services.Input) (synth.Output, error) {
				return synth.Safe(services.Synthesize, key, in.Path, in), nil
			})
		if err != nil {
			return nil, err
		}
		out = append(out, artifacts(res, bag)...)
	}
	return out, nil
}

// uniqueNames keeps the first partition per artifact name. Names fold case,
// so Clock and clock in one package would share a file; the later one is
// reported and dropped rather than failing the run.
func uniqueNames[T any](parts []pipeline.Partition[T], subject func(T) string, bag *diag.Bag) []pipeline.Partition[T] {
	owners := make(map[string]string, len(parts))
	out := make([]pipeline.Partition[T], 0, len(parts))
	for _, p := range parts {
		s := subject(p.Value)
		if first, dup := owners[p.Key]; dup {
			bag.Add(diag.Errorf(diag.CodeConsistency, s,
				"artifact %s is already generated for %s", p.Key, first))
			continue
		}
		owners[p.Key] = s
		out = append(out, p)
	}
	return out
}
