package pipeline

import (
	"slices"
	"strings"

	"github.com/teranos/declgen/equatable"
)

// Artifact is one named generated text blob. Name is a slash-separated path
// relative to the project root.
type Artifact struct {
	Name string
	Text string
}

func (a Artifact) Equal(o Artifact) bool { return a == o }

func (a Artifact) Hash(h *equatable.Hasher) {
	h.String(a.Name)
	h.String(a.Text)
}

// Diff compares a published artifact set with the one before it.
// Every list is sorted by name.
type Diff struct {
	Added     []string
	Changed   []string
	Unchanged []string
	Removed   []string
}

// Dirty reports whether anything has to be written or deleted.
func (d Diff) Dirty() bool {
	return len(d.Added) > 0 || len(d.Changed) > 0 || len(d.Removed) > 0
}

// Touched returns the names that were added or changed.
func (d Diff) Touched() []string {
	out := append(slices.Clone(d.Added), d.Changed...)
	slices.Sort(out)
	return out
}

func diffArtifacts(prev, next map[string]Artifact) Diff {
	var d Diff
	for name, a := range next {
		old, ok := prev[name]
		switch {
		case !ok:
			d.Added = append(d.Added, name)
		case old.Text != a.Text:
			d.Changed = append(d.Changed, name)
		default:
			d.Unchanged = append(d.Unchanged, name)
		}
	}
	for name := range prev {
		if _, ok := next[name]; !ok {
			d.Removed = append(d.Removed, name)
		}
	}
	slices.Sort(d.Added)
	slices.Sort(d.Changed)
	slices.Sort(d.Unchanged)
	slices.Sort(d.Removed)
	return d
}

func sortedArtifacts(set map[string]Artifact) []Artifact {
	out := make([]Artifact, 0, len(set))
	for _, a := range set {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b Artifact) int { return strings.Compare(a.Name, b.Name) })
	return out
}
