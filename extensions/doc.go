// Package extensions supplies cross-cutting atoms.Extension implementations
// — structured logging, a debug-graph dumper, OpenTelemetry tracing/metrics,
// and an ASCII tree renderer — ported from the teacher's own extensions/
// package and retargeted from wrapping Resolve/Update to wrapping every
// atom evaluation a StoreContext performs.
package extensions
