package errors

import "github.com/cockroachdb/errors"

// Re-exports of the underlying error library so callers get construction,
// wrapping, and inspection through a single import.
var (
	// New creates an error with a simple message.
	New = errors.New

	// Newf creates an error with a formatted message.
	Newf = errors.Newf

	// Wrap annotates err with a message. Returns nil if err is nil.
	Wrap = errors.Wrap

	// Wrapf annotates err with a formatted message. Returns nil if err is nil.
	Wrapf = errors.Wrapf

	// Is reports whether any error in err's chain matches target.
	Is = errors.Is

	// As finds the first error in err's chain that matches target.
	As = errors.As

	// Join combines multiple errors into one.
	Join = errors.Join
)
