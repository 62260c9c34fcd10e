// Package profile starts optional runtime profiling with
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the build tag [Tag]:
//
//	go build -tags pprof -o tangle .
//	tangle --pprof-mode=cpu doc.md
//
// Without the tag, [Modes] is empty and [Start] returns a no-op. The profile
// is written to the directory given with [WithPath], named after the mode
// (cpu.pprof, mem.pprof, ...), and can be read with "go tool pprof".
//
// A build with the tag also registers the handlers of [net/http/pprof] on
// the default mux.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
