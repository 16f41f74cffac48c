// Package equatable provides immutable value containers that compare by content.
//
// Every value that flows through the generation pipeline implements Value so the
// pipeline driver can decide whether a stage input changed between runs without
// relying on identity. Seq is the ordered collection type used everywhere a plain
// slice would otherwise leak reference semantics into a descriptor or entry.
//
// Usage:
//
//	names := equatable.Of(equatable.String("b"), equatable.String("a"))
//	other := equatable.From([]equatable.String{"b", "a"})
//	names.Equal(other) // true
//	equatable.HashOf(names) == equatable.HashOf(other) // true
package equatable

import (
	"iter"
	"slices"
)

// Value is implemented by every type stored in a Seq or used as a pipeline input.
// Equal must be structural; Hash must feed exactly the state Equal compares.
type Value[T any] interface {
	Equal(other T) bool
	Hash(h *Hasher)
}

// Seq is an ordered, fixed sequence with value semantics.
// The zero Seq is empty and equal to any other empty Seq.
type Seq[T Value[T]] struct {
	items []T
}

// Of returns a Seq holding the given items in order.
func Of[T Value[T]](items ...T) Seq[T] {
	return From(items)
}

// From copies items into a new Seq; later changes to the slice are not observed.
func From[T Value[T]](items []T) Seq[T] {
	if len(items) == 0 {
		return Seq[T]{}
	}
	return Seq[T]{items: slices.Clone(items)}
}

// Len returns the number of elements.
func (s Seq[T]) Len() int { return len(s.items) }

// At returns the i-th element. It panics when i is out of range, like a slice index.
func (s Seq[T]) At(i int) T { return s.items[i] }

// All iterates the elements in order.
func (s Seq[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range s.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Values iterates the elements in order without indexes.
func (s Seq[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range s.items {
			if !yield(v) {
				return
			}
		}
	}
}

// Slice returns a copy of the elements.
func (s Seq[T]) Slice() []T { return slices.Clone(s.items) }

// Append returns a new Seq with items added at the end.
func (s Seq[T]) Append(items ...T) Seq[T] {
	out := make([]T, 0, len(s.items)+len(items))
	out = append(out, s.items...)
	out = append(out, items...)
	return Seq[T]{items: out}
}

// Equal reports element-wise equality.
func (s Seq[T]) Equal(other Seq[T]) bool {
	if len(s.items) != len(other.items) {
		return false
	}
	for i := range s.items {
		if !s.items[i].Equal(other.items[i]) {
			return false
		}
	}
	return true
}

// Hash feeds the length and every element, in order, into h.
func (s Seq[T]) Hash(h *Hasher) {
	h.Int(len(s.items))
	for _, v := range s.items {
		v.Hash(h)
	}
}

// SortFunc returns a new Seq stably sorted by cmp.
func SortFunc[T Value[T]](s Seq[T], cmp func(a, b T) int) Seq[T] {
	out := slices.Clone(s.items)
	slices.SortStableFunc(out, cmp)
	return Seq[T]{items: out}
}

// Filter returns a new Seq with the elements for which keep returns true.
func Filter[T Value[T]](s Seq[T], keep func(T) bool) Seq[T] {
	var out []T
	for _, v := range s.items {
		if keep(v) {
			out = append(out, v)
		}
	}
	return Seq[T]{items: out}
}

// HashOf returns the 64-bit content hash of v.
func HashOf[T Value[T]](v T) uint64 {
	h := NewHasher()
	v.Hash(h)
	return h.Sum64()
}

// String is a string usable as a Seq element.
type String string

// Equal reports whether both strings are identical.
func (s String) Equal(other String) bool { return s == other }

// Hash feeds s into h.
func (s String) Hash(h *Hasher) { h.String(string(s)) }

// Strings converts plain strings into a Seq.
func Strings(values ...string) Seq[String] {
	out := make([]String, len(values))
	for i, v := range values {
		out[i] = String(v)
	}
	return From(out)
}
