package logging

import "log/slog"

// LevelTrace is a custom level below slog.LevelDebug for very detailed
// output, such as raw registry responses and byte ranges of textual patches.
const LevelTrace = slog.Level(-8)

// LevelFromVerbosity maps a -v flag count to a log level.
//
//	0 (default)  Warn
//	1 (-v)       Info
//	2 (-vv)      Debug
//	3+ (-vvv)    Trace
//
// Negative counts clamp to the default.
func LevelFromVerbosity(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	case verbosity == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}
