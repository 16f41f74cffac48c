// Package resource aggregates localized resource tables into canonical entries.
//
// Each table file is a Fragment: the entries of one resource in one locale.
// Fragments resolve to a canonical Key, fragments sharing a resource key are
// merged into a Group, and a Group is what the resources synthesizer renders.
// Every type here is an immutable value so merged results can be memoized.
package resource

import (
	"github.com/teranos/declgen/equatable"
)

// Neutral is the locale of a table with no culture segment in its file name.
const Neutral = ""

// RawEntry is one entry as read from a single table.
type RawEntry struct {
	Name     string
	Type     string
	Comment  string
	Value    string
	HasValue bool
}

func (e RawEntry) Equal(o RawEntry) bool { return e == o }

func (e RawEntry) Hash(h *equatable.Hasher) {
	h.String(e.Name)
	h.String(e.Type)
	h.String(e.Comment)
	h.String(e.Value)
	h.Bool(e.HasValue)
}

// Fragment is one parsed table file. The hints carry explicit override
// metadata and are empty when the key is derived from the path.
type Fragment struct {
	// Path is slash-separated and relative to the project root when possible.
	Path            string
	Locale          string
	Entries         equatable.Seq[RawEntry]
	NamespaceHint   string
	ClassNameHint   string
	ResourceKeyHint string
}

func (f Fragment) Equal(o Fragment) bool {
	return f.Path == o.Path &&
		f.Locale == o.Locale &&
		f.NamespaceHint == o.NamespaceHint &&
		f.ClassNameHint == o.ClassNameHint &&
		f.ResourceKeyHint == o.ResourceKeyHint &&
		f.Entries.Equal(o.Entries)
}

func (f Fragment) Hash(h *equatable.Hasher) {
	h.String(f.Path)
	h.String(f.Locale)
	h.String(f.NamespaceHint)
	h.String(f.ClassNameHint)
	h.String(f.ResourceKeyHint)
	f.Entries.Hash(h)
}

// Key is the canonical identity of a merged resource.
type Key struct {
	Namespace   string
	ClassName   string
	ResourceKey string
}

func (k Key) String() string { return k.ResourceKey }

func (k Key) Equal(o Key) bool { return k == o }

func (k Key) Hash(h *equatable.Hasher) {
	h.String(k.Namespace)
	h.String(k.ClassName)
	h.String(k.ResourceKey)
}

// Keyed is a fragment with its resolved key.
type Keyed struct {
	Fragment Fragment
	Key      Key
}

func (k Keyed) Equal(o Keyed) bool { return k.Key == o.Key && k.Fragment.Equal(o.Fragment) }

func (k Keyed) Hash(h *equatable.Hasher) {
	k.Key.Hash(h)
	k.Fragment.Hash(h)
}

// LocaleValue is one locale's value of an entry. HasValue is false when the
// table declares the entry without a value element.
type LocaleValue struct {
	Locale   string
	Value    string
	HasValue bool
}

func (v LocaleValue) Equal(o LocaleValue) bool { return v == o }

func (v LocaleValue) Hash(h *equatable.Hasher) {
	h.String(v.Locale)
	h.String(v.Value)
	h.Bool(v.HasValue)
}

// Entry is a merged entry across every locale of a key.
type Entry struct {
	Name    string
	Type    string
	Comment string
	// Values are ordered neutral first, then by locale.
	Values equatable.Seq[LocaleValue]
}

// Value returns the value for locale.
func (e Entry) Value(locale string) (string, bool) {
	for v := range e.Values.Values() {
		if v.Locale == locale && v.HasValue {
			return v.Value, true
		}
	}
	return "", false
}

func (e Entry) Equal(o Entry) bool {
	return e.Name == o.Name && e.Type == o.Type && e.Comment == o.Comment && e.Values.Equal(o.Values)
}

func (e Entry) Hash(h *equatable.Hasher) {
	h.String(e.Name)
	h.String(e.Type)
	h.String(e.Comment)
	e.Values.Hash(h)
}

// Group is the merged result for one key.
type Group struct {
	Key Key
	// Paths are the contributing table files, sorted.
	Paths equatable.Seq[equatable.String]
	// Entries are sorted by name.
	Entries equatable.Seq[Entry]
	// Locales lists every locale present, neutral first.
	Locales equatable.Seq[equatable.String]
}

func (g Group) Equal(o Group) bool {
	return g.Key == o.Key && g.Paths.Equal(o.Paths) && g.Entries.Equal(o.Entries) && g.Locales.Equal(o.Locales)
}

func (g Group) Hash(h *equatable.Hasher) {
	g.Key.Hash(h)
	g.Paths.Hash(h)
	g.Entries.Hash(h)
	g.Locales.Hash(h)
}
