// Package log is a small leveled logger over [log/slog].
//
// A [Logger] is made with [Make] and configured with functional options:
//
//	l := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339Nano"),
//		log.WithCaller(true))
//
// Attributes are typed [slog.Attr] values:
//
//	l.Info("writing to", slog.String("file", path))
//
// # Levels
//
// Besides the levels of slog, [LevelTrace] sits below [LevelDebug] for
// step-by-step output such as individual tokens. Level names parse with
// [ParseLevel] and print in upper case.
//
// # Output
//
// Records are encoded as text (the default) or JSON. [WithPretty] renders
// either form with lipgloss colours for reading on a terminal; colours are
// dropped when the output is not one.
//
// # Zero value
//
// The zero Logger discards everything, and so does [Logger.With] on it.
// Libraries take a Logger by value and stay silent unless given one.
//
// # Package logger
//
// The functions [Debug], [Info], [Warn], [Error] and their Context variants
// write through a package-level logger, replaced with [SetDefault] or
// reconfigured with [Config]. Calls without a context use
// [DefaultContextProvider].
package log
