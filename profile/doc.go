// Package profile provides optional runtime profiling for tmpl.
//
// Profiling is built on [github.com/pkg/profile] and is compiled in only
// with the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op
// [Stopper], so callers never need their own build constraints.
//
// # Modes
//
// With the tag, the supported modes are allocs, block, clock, cpu,
// goroutine, heap, mem, mutex, thread and trace. Each mode writes
// "<mode>.pprof" (or "trace.out") into [Profiler.Path]:
//
//	p := profile.New(profile.WithMode("cpu"), profile.WithPath(dir))
//	defer p.Start().Stop()
//
// The files are read with the standard tooling:
//
//	go tool pprof -http=: ./tmpl cpu.pprof
//
// The tagged build also imports [net/http/pprof], which registers its
// handlers on [net/http.DefaultServeMux] for programs that serve it.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
