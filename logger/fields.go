package logger

import (
	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across stubgen.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldSession   = "session"
	FieldComponent = "component"

	// Metadata
	FieldUnit      = "unit"
	FieldIdentity  = "identity"
	FieldNamespace = "namespace"
	FieldType      = "type"
	FieldProvider  = "provider"

	// Files and paths
	FieldPath = "path"
	FieldFile = "file"
	FieldDir  = "dir"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts
	FieldCount     = "count"
	FieldIteration = "iteration"
	FieldPending   = "pending"

	// Versions
	FieldWant = "want"
	FieldHave = "have"
)

// ComponentLogger returns a named logger for a specific component.
//
//	type Loader struct {
//	    log *zap.SugaredLogger
//	}
//
//	func New() *Loader {
//	    return &Loader{log: logger.ComponentLogger("stubgen.loader")}
//	}
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

// ChildLogger creates a child logger with additional context.
//
//	sessLog := logger.ChildLogger(base, logger.FieldSession, s.ID)
func ChildLogger(parent *zap.SugaredLogger, keysAndValues ...interface{}) *zap.SugaredLogger {
	return parent.With(keysAndValues...)
}
