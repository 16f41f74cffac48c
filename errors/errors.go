// Package errors provides error handling for declgen.
//
// This package re-exports github.com/cockroachdb/errors so every package creates,
// wraps and inspects errors the same way, with stack traces and user hints.
//
// Usage:
//
//	// Wrap with context
//	if err := loadPackages(ctx); err != nil {
//	    return errors.Wrap(err, "failed to enumerate declarations")
//	}
//
//	// Hint the user toward a fix
//	return errors.WithHint(err, "run declgen from inside a Go module")
//
//	// Check sentinels
//	if errors.Is(err, errors.ErrUnsupported) {
//	    // emit a diagnostic instead of failing the run
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is           = crdb.Is
	IsAny        = crdb.IsAny
	As           = crdb.As
	UnwrapAll    = crdb.UnwrapAll
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints

	GetReportableStackTrace = crdb.GetReportableStackTrace
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors shared across the generator.
var (
	// ErrUnsupported marks a value whose shape cannot be expressed in generated source.
	ErrUnsupported = New("unsupported")

	// ErrCanceled marks a run abandoned because its context was canceled.
	ErrCanceled = New("run canceled")

	// ErrConflict marks two inputs that claim the same output identity.
	ErrConflict = New("conflict")
)

// IsUnsupported checks if an error is or wraps ErrUnsupported.
func IsUnsupported(err error) bool {
	return err != nil && Is(err, ErrUnsupported)
}

// Unsupportedf creates an ErrUnsupported error with a formatted message.
func Unsupportedf(format string, args ...interface{}) error {
	return Wrapf(ErrUnsupported, format, args...)
}
