// Package diag records the non-fatal findings of a generation run.
//
// Diagnostics are values: stage outputs carry them alongside their results so a
// memoized output replays its diagnostics on every run without re-executing.
package diag

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/teranos/declgen/equatable"
)

// Severity orders diagnostics; higher is worse.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return fmt.Sprintf("severity(%d)", s)
}

// Code identifies the class of a diagnostic.
type Code string

const (
	// CodeResolution: a resource fragment has no resolvable canonical key.
	CodeResolution Code = "DG1001"
	// CodeConsistency: fragments of one key disagree on a per-key property.
	CodeConsistency Code = "DG1002"
	// CodeDuplicateValue: one (entry, locale) pair is supplied twice.
	CodeDuplicateValue Code = "DG1003"
	// CodeParse: a resource table could not be read or parsed.
	CodeParse Code = "DG1004"
	// CodeAnnotationArg: a directive argument is not a supported constant.
	CodeAnnotationArg Code = "DG2001"
	// CodeSynthesis: a synthesizer failed for one key.
	CodeSynthesis Code = "DG3001"
)

// Diagnostic is one finding. Subject names what it is about: a file path, a
// canonical key or a qualified declaration name.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Subject  string
	Message  string
}

// Errorf builds an error diagnostic.
func Errorf(code Code, subject, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityError, Code: code, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning diagnostic.
func Warnf(code Code, subject, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Code: code, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s %s: %s", d.Severity, d.Code, d.Subject, d.Message)
}

func (d Diagnostic) Equal(o Diagnostic) bool { return d == o }

func (d Diagnostic) Hash(h *equatable.Hasher) {
	h.Uint64(uint64(d.Severity))
	h.String(string(d.Code))
	h.String(d.Subject)
	h.String(d.Message)
}

// Compare orders by subject, then severity (worst first), code and message.
func Compare(a, b Diagnostic) int {
	return cmp.Or(
		cmp.Compare(a.Subject, b.Subject),
		cmp.Compare(b.Severity, a.Severity),
		cmp.Compare(a.Code, b.Code),
		cmp.Compare(a.Message, b.Message),
	)
}

// Seq sorts ds into an equatable sequence.
func Seq(ds ...Diagnostic) equatable.Seq[Diagnostic] {
	return equatable.SortFunc(equatable.From(ds), Compare)
}

// Bag collects diagnostics from concurrent stages.
type Bag struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewBag returns an empty bag.
func NewBag() *Bag {
	return &Bag{}
}

// Add appends diagnostics. Safe for concurrent use.
func (b *Bag) Add(ds ...Diagnostic) {
	if len(ds) == 0 {
		return
	}
	b.mu.Lock()
	b.items = append(b.items, ds...)
	b.mu.Unlock()
}

// AddSeq appends every diagnostic of s.
func (b *Bag) AddSeq(s equatable.Seq[Diagnostic]) {
	b.Add(s.Slice()...)
}

// Len returns the number of diagnostics collected.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// HasErrors reports whether any diagnostic is an error.
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.items {
		if d.Severity >= SeverityError {
			return true
		}
	}
	return false
}

// Items returns a sorted, de-duplicated copy of the collected diagnostics.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	out := slices.Clone(b.items)
	b.mu.Unlock()
	slices.SortFunc(out, Compare)
	return slices.Compact(out)
}
