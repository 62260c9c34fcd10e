// Package cli contains the command line interface for tangle.
//
// # Usage
//
// With no command, tangle writes the files the document declares:
//
//	tangle doc.md
//	tangle --vars=vars.yaml --search=~/lp tangle -o out doc.md
//	tangle expand doc.md c.fun a:1 -k x=2
//	tangle list -f fun doc.md
//	tangle dump --output=json doc.md
//	tangle browse doc.md
//
// # Configuration
//
// Flags are read from $XDG_CONFIG_HOME/tangle/config.yaml and config.json
// before the command line, which always wins. The YAML file maps flag names
// to values, with underscores allowed in place of hyphens:
//
//	log_level: debug
//	search: [~/lp/lib]
//
// "tangle init" writes the current flag values to that file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o tangle .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/tangle/pprof)
package cli
