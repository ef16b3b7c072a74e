// Package errors provides error handling for stubgen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints attached to fatal generation errors
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := loadUnit(path); err != nil {
//	    return errors.Wrapf(err, "failed to load %s", path)
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrReservedNamespace) {
//	    // configuration problem, not retryable
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
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	As            = crdb.As
	Unwrap        = crdb.Unwrap
	UnwrapAll     = crdb.UnwrapAll
	GetAllHints   = crdb.GetAllHints
	FlattenHints  = crdb.FlattenHints
	GetAllDetails = crdb.GetAllDetails
	Mark          = crdb.Mark
)

// Sentinel errors for the generation pipeline.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrReservedNamespace indicates a namespace whose leading segment collides
	// with the directory reserved for global types
	ErrReservedNamespace = New("reserved namespace")

	// ErrInvalidNamespace indicates a namespace that cannot be mapped to its
	// own directory chain
	ErrInvalidNamespace = New("invalid namespace")

	// ErrUnresolved indicates a unit could not be found in any search path
	ErrUnresolved = New("unresolved unit")

	// ErrNotFound indicates a referenced type or unit does not exist
	ErrNotFound = New("not found")

	// ErrInvalidManifest indicates a unit manifest could not be parsed or linked
	ErrInvalidManifest = New("invalid manifest")

	// ErrInvalidConfig indicates the configuration is malformed or incomplete
	ErrInvalidConfig = New("invalid configuration")
)

// IsFatalLoadError reports whether err stems from unit loading or resolution.
func IsFatalLoadError(err error) bool {
	return err != nil && IsAny(err, ErrUnresolved, ErrInvalidManifest, ErrNotFound)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewUnresolvedError creates an unresolved-unit error for the given identity
func NewUnresolvedError(identity string, searched []string) error {
	err := Wrapf(ErrUnresolved, "cannot resolve %q", identity)
	if len(searched) == 0 {
		return WithHint(err, "no search paths are configured; add one with --search-path")
	}
	return WithHintf(err, "searched %d path(s); add the directory containing the unit with --search-path", len(searched))
}
