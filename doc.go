// Package pinpoint is a runtime decision engine for conditional,
// configuration-driven log emission. Each call site is identified by an
// opaque key; at runtime the engine fetches the configuration for that
// key (with a bounded wait), applies a probabilistic sampling gate,
// merges the caller's local variables with the ambient per-task
// variables carried on the context, optionally validates and executes a
// user-supplied Lua expression in a restricted sandbox, and hands a
// single formatted line to the configured sink.
//
// Nothing the engine does can surface an error or panic to the
// instrumented call site: every failure category is recovered at the
// boundary where it occurs and, at most, described on an internal
// diagnostic logger that is distinct from the sink.
package pinpoint
