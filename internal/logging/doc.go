// Package logging provides structured logging for the plugup CLI using slog.
//
// The package supports both text and JSON output formats, configurable log
// levels including a Trace level below Debug, fan-out to multiple handlers,
// and helpers for testing. All loggers are based on the standard library's
// [log/slog] package. The text handler colorizes output when the writer is
// a terminal that supports it, and redacts attribute values that look like
// registry tokens or credentials.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  logging.LevelFromVerbosity(verbosity),
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("checking for updates", "channel", "beta")
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
//
// # Quiet Mode
//
// Use [NewDiscard] when log output should be suppressed entirely:
//
//	logger := logging.NewDiscard()
package logging
