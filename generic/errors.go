/*
errors.go - Centralized error types for the engine

PURPOSE:
  All fatal error types in one place for consistency and discoverability.
  Recoverable anomalies (missing optional sources, unresolved states,
  schema mismatches) are NOT errors: the stages record them as audit
  adjustments and keep going. Only what is listed here aborts a run.

ERROR CATEGORIES:
  1. Configuration errors - Rejected before any row is processed
  2. Input errors - The population itself is missing
  3. Output errors - Neither the destination nor its alternate is writable
  4. Invariant errors - A stage produced an impossible table (a bug)

USAGE:
  if errors.Is(err, generic.ErrInvalidConfiguration) {
      os.Exit(2)
  }

SEE ALSO:
  - vr/audit.go: Recoverable anomaly kinds
  - source/writer.go: Produces WriteConflictError
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidConfiguration is returned when a rule setting has an
	// unrecognized value. Always raised before processing starts.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrMissingRoster is returned when a run has no population source.
	ErrMissingRoster = errors.New("roster source is required")

	// ErrWriteConflict is returned when an artifact cannot be written to its
	// destination nor to the alternate path.
	ErrWriteConflict = errors.New("output cannot be written")

	// ErrInvariantViolation is returned when a stage output breaks a table
	// invariant (eligible days bounds, share drift, duplicate identifiers).
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrRunNotFound is returned when a stored run doesn't exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrEmployeeNotFound is returned when a stored run has no record for
	// the requested identifier.
	ErrEmployeeNotFound = errors.New("employee not found in run")

	// ErrPathOutsideRoot is returned when a requested directory resolves
	// outside the configured input or output root.
	ErrPathOutsideRoot = errors.New("path outside allowed root")

	// ErrInvalidQuery is returned when a report names an unknown column,
	// grouping or aggregation.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrUnnamedColumn is returned when a layout targets or reads an
	// UNNAMED placeholder column.
	ErrUnnamedColumn = errors.New("unnamed column in layout")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigError names the offending setting.
type ConfigError struct {
	Field string
	Value string
	Hint  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%q (%s)", e.Field, e.Value, e.Hint)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}

// WriteConflictError reports both paths that were tried.
type WriteConflictError struct {
	Path      string
	Alternate string
	Err       error
}

func (e *WriteConflictError) Error() string {
	return fmt.Sprintf("cannot write %s nor %s: %v", e.Path, e.Alternate, e.Err)
}

func (e *WriteConflictError) Unwrap() []error {
	return []error{ErrWriteConflict, e.Err}
}

// InvariantError describes which row broke which invariant after which stage.
type InvariantError struct {
	Stage     string
	Matricula string
	Rule      string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant %q broken by %s after stage %s", e.Rule, e.Matricula, e.Stage)
}

func (e *InvariantError) Unwrap() error {
	return ErrInvariantViolation
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration) ||
		errors.Is(err, ErrMissingRoster) ||
		errors.Is(err, ErrUnnamedColumn) ||
		errors.Is(err, ErrPathOutsideRoot) ||
		errors.Is(err, ErrInvalidQuery)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound) || errors.Is(err, ErrEmployeeNotFound)
}
