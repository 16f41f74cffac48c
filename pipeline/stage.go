package pipeline

import (
	"cmp"
	"context"
	"slices"

	"github.com/teranos/declgen/equatable"
	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/logger"
	"golang.org/x/sync/errgroup"
)

// Partition is one keyed unit of a stage's input or output.
type Partition[T any] struct {
	Key   string
	Value T
}

// Transform computes a partition's output from its input.
type Transform[In, Out any] func(ctx context.Context, key string, in In) (Out, error)

// Map applies fn to every partition. A partition whose input is Equal to the
// input memoized for the same (stage, key) reuses the memoized output; equal
// inputs under different keys in one run share a single execution.
// The result is sorted by key.
func Map[In equatable.Value[In], Out any](r *Run, stage string, parts []Partition[In], fn Transform[In, Out]) ([]Partition[Out], error) {
	if err := r.ctx.Err(); err != nil {
		return nil, err
	}
	parts = slices.Clone(parts)
	slices.SortStableFunc(parts, func(a, b Partition[In]) int { return cmp.Compare(a.Key, b.Key) })
	for i := 1; i < len(parts); i++ {
		if parts[i].Key == parts[i-1].Key {
			return nil, errors.Newf("stage %s: duplicate partition key %q", stage, parts[i].Key)
		}
	}

	results := make([]Out, len(parts))
	// shared[i] >= 0 points at the partition whose execution i reuses.
	shared := make([]int, len(parts))
	var pending []int
	buckets := make(map[uint64][]int)
	reused := 0

	for i, p := range parts {
		shared[i] = -1
		if prev, ok := r.lookup(stage, p.Key); ok {
			if in, ok := prev.input.(In); ok && in.Equal(p.Value) {
				if out, ok := prev.output.(Out); ok {
					results[i] = out
					reused++
					continue
				}
			}
		}
		h := equatable.HashOf(p.Value)
		found := false
		for _, j := range buckets[h] {
			if parts[j].Value.Equal(p.Value) {
				shared[i] = j
				found = true
				reused++
				break
			}
		}
		if !found {
			buckets[h] = append(buckets[h], i)
			pending = append(pending, i)
		}
	}

	log := r.log.With(logger.FieldStage, stage)
	if len(pending) > 0 {
		g, gctx := errgroup.WithContext(r.ctx)
		g.SetLimit(min(r.jobs, len(pending)))
		for _, i := range pending {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				out, err := fn(gctx, parts[i].Key, parts[i].Value)
				if err != nil {
					return errors.Wrapf(err, "stage %s: partition %s", stage, parts[i].Key)
				}
				results[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	if err := r.ctx.Err(); err != nil {
		return nil, err
	}

	executed := make([]string, len(pending))
	for n, i := range pending {
		executed[n] = parts[i].Key
	}
	memo := make(map[string]memoEntry, len(parts))
	out := make([]Partition[Out], len(parts))
	for i, p := range parts {
		if j := shared[i]; j >= 0 {
			results[i] = results[j]
		}
		memo[p.Key] = memoEntry{input: p.Value, output: results[i]}
		out[i] = Partition[Out]{Key: p.Key, Value: results[i]}
	}
	if err := r.record(stage, memo, executed, reused); err != nil {
		return nil, err
	}
	log.Debugw("Stage complete",
		logger.FieldCount, len(parts),
		logger.FieldExecuted, len(pending),
		logger.FieldReused, reused,
	)
	return out, nil
}

// Scalar runs a single-value stage with the same memo contract as Map.
func Scalar[In equatable.Value[In], Out any](r *Run, stage string, in In, fn func(ctx context.Context, in In) (Out, error)) (Out, error) {
	out, err := Map(r, stage, []Partition[In]{{Value: in}}, func(ctx context.Context, _ string, in In) (Out, error) {
		return fn(ctx, in)
	})
	if err != nil {
		var zero Out
		return zero, err
	}
	return out[0].Value, nil
}

// GroupBy is a join point: it gathers items into one partition per key.
// Partitions are sorted by key and items inside a partition by compare, so the
// grouping does not depend on the order items arrived in.
func GroupBy[T equatable.Value[T]](items []T, keyOf func(T) string, compare func(a, b T) int) []Partition[equatable.Seq[T]] {
	byKey := make(map[string][]T)
	for _, it := range items {
		k := keyOf(it)
		byKey[k] = append(byKey[k], it)
	}
	out := make([]Partition[equatable.Seq[T]], 0, len(byKey))
	for k, group := range byKey {
		slices.SortStableFunc(group, compare)
		out = append(out, Partition[equatable.Seq[T]]{Key: k, Value: equatable.From(group)})
	}
	slices.SortFunc(out, func(a, b Partition[equatable.Seq[T]]) int { return cmp.Compare(a.Key, b.Key) })
	return out
}

// Collect is a join point returning partition values ordered by key.
func Collect[T any](parts []Partition[T]) []T {
	parts = slices.Clone(parts)
	slices.SortStableFunc(parts, func(a, b Partition[T]) int { return cmp.Compare(a.Key, b.Key) })
	out := make([]T, len(parts))
	for i, p := range parts {
		out[i] = p.Value
	}
	return out
}

// Keyed builds partitions from items using keyOf. Duplicate keys are left for
// Map to reject.
func Keyed[T any](items []T, keyOf func(T) string) []Partition[T] {
	out := make([]Partition[T], len(items))
	for i, it := range items {
		out[i] = Partition[T]{Key: keyOf(it), Value: it}
	}
	return out
}
