package resource

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/teranos/declgen/diag"
	"github.com/teranos/declgen/equatable"
)

// CompareKeyed is the canonical order of fragments inside a group: neutral
// locale first, then by locale, then by path.
func CompareKeyed(a, b Keyed) int {
	return cmp.Or(
		CompareLocale(a.Fragment.Locale, b.Fragment.Locale),
		cmp.Compare(a.Fragment.Path, b.Fragment.Path),
	)
}

// Merge combines the fragments of one resource key. The result does not depend
// on the order of items. When the fragments disagree on the namespace or class
// name the group is rejected: ok is false and the diagnostics say why.
//
// Entry Type and Comment come from the first fragment, in canonical order,
// that supplies a non-empty value.
func Merge(items []Keyed) (group Group, diags []diag.Diagnostic, ok bool) {
	if len(items) == 0 {
		return Group{}, nil, false
	}
	items = slices.Clone(items)
	slices.SortStableFunc(items, CompareKeyed)
	resourceKey := items[0].Key.ResourceKey

	for _, check := range []struct {
		field string
		value func(Key) string
	}{
		{"namespace", func(k Key) string { return k.Namespace }},
		{"className", func(k Key) string { return k.ClassName }},
	} {
		if d, conflict := disagreement(resourceKey, check.field, items, check.value); conflict {
			diags = append(diags, d)
		}
	}
	if len(diags) > 0 {
		return Group{}, diags, false
	}

	type builder struct {
		entry  Entry
		values []LocaleValue
		seen   map[string]string
	}
	builders := make(map[string]*builder)
	var paths []equatable.String
	var locales []equatable.String

	for _, it := range items {
		f := it.Fragment
		paths = append(paths, equatable.String(f.Path))
		if len(locales) == 0 || string(locales[len(locales)-1]) != f.Locale {
			locales = append(locales, equatable.String(f.Locale))
		}
		for raw := range f.Entries.Values() {
			b, exists := builders[raw.Name]
			if !exists {
				b = &builder{entry: Entry{Name: raw.Name}, seen: make(map[string]string)}
				builders[raw.Name] = b
			}
			if b.entry.Type == "" {
				b.entry.Type = raw.Type
			}
			if b.entry.Comment == "" {
				b.entry.Comment = raw.Comment
			}
			if first, dup := b.seen[f.Locale]; dup {
				diags = append(diags, diag.Warnf(diag.CodeDuplicateValue, resourceKey,
					"entry %q has two values for locale %s: keeping %s, ignoring %s",
					raw.Name, localeName(f.Locale), first, f.Path))
				continue
			}
			b.seen[f.Locale] = f.Path
			b.values = append(b.values, LocaleValue{Locale: f.Locale, Value: raw.Value, HasValue: raw.HasValue})
		}
	}

	entries := make([]Entry, 0, len(builders))
	for _, b := range builders {
		slices.SortStableFunc(b.values, func(x, y LocaleValue) int { return CompareLocale(x.Locale, y.Locale) })
		b.entry.Values = equatable.From(b.values)
		entries = append(entries, b.entry)
	}
	slices.SortFunc(entries, func(x, y Entry) int { return strings.Compare(x.Name, y.Name) })
	slices.SortFunc(paths, func(x, y equatable.String) int { return strings.Compare(string(x), string(y)) })

	return Group{
		Key:     items[0].Key,
		Paths:   equatable.From(paths),
		Entries: equatable.From(entries),
		Locales: equatable.From(locales),
	}, diags, true
}

func disagreement(resourceKey, field string, items []Keyed, value func(Key) string) (diag.Diagnostic, bool) {
	byValue := make(map[string][]string)
	var order []string
	for _, it := range items {
		v := value(it.Key)
		if _, ok := byValue[v]; !ok {
			order = append(order, v)
		}
		byValue[v] = append(byValue[v], it.Fragment.Path)
	}
	if len(order) < 2 {
		return diag.Diagnostic{}, false
	}
	slices.Sort(order)
	parts := make([]string, 0, len(order))
	for _, v := range order {
		parts = append(parts, fmt.Sprintf("%q (%s)", v, strings.Join(byValue[v], ", ")))
	}
	return diag.Errorf(diag.CodeConsistency, resourceKey,
		"fragments disagree on %s: %s", field, strings.Join(parts, " vs ")), true
}

func localeName(locale string) string {
	if locale == Neutral {
		return "neutral"
	}
	return locale
}

// Result is the outcome of aggregating a set of fragments.
type Result struct {
	Groups      map[Key]Group
	Diagnostics []diag.Diagnostic
}

// Sorted returns the groups ordered by resource key.
func (r *Result) Sorted() []Group {
	out := make([]Group, 0, len(r.Groups))
	for _, g := range r.Groups {
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b Group) int { return strings.Compare(a.Key.ResourceKey, b.Key.ResourceKey) })
	return out
}

// GroupKey is the identity fragments are grouped by. Namespace and class
// name are properties every member of the group must agree on.
func GroupKey(k Keyed) string { return k.Key.ResourceKey }

// ResolveAll resolves every fragment. Fragments without a resolvable key are
// dropped with a diagnostic naming their path.
func ResolveAll(ctx context.Context, fragments []Fragment, opts Options) ([]Keyed, []diag.Diagnostic, error) {
	var (
		keyed []Keyed
		diags []diag.Diagnostic
	)
	for _, f := range fragments {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		key, err := Resolve(f, opts)
		if err != nil {
			diags = append(diags, diag.Errorf(diag.CodeResolution, f.Path, "cannot resolve resource key: %v", err))
			continue
		}
		keyed = append(keyed, Keyed{Fragment: f, Key: key})
	}
	return keyed, diags, nil
}

// Aggregate resolves, groups and merges fragments. The result is independent of
// the order of fragments; only cancellation returns an error.
func Aggregate(ctx context.Context, fragments []Fragment, opts Options) (*Result, error) {
	keyed, diags, err := ResolveAll(ctx, fragments, opts)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string][]Keyed)
	for _, k := range keyed {
		byKey[GroupKey(k)] = append(byKey[GroupKey(k)], k)
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	res := &Result{Groups: make(map[Key]Group, len(keys))}
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		group, groupDiags, ok := Merge(byKey[k])
		diags = append(diags, groupDiags...)
		if ok {
			res.Groups[group.Key] = group
		}
	}
	slices.SortFunc(diags, diag.Compare)
	res.Diagnostics = diags
	return res, nil
}
