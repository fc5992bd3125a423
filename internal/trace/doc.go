// Package trace records what the checker is doing: passes, definitions being
// solved and specializations being built. Tracing is the logging layer of the
// module; a Tracer travels inside context.Context and defaults to Nop.
//
// Enable it from the command line:
//
//	taoc check --trace=- --trace-level=detail prog.tast
//
// Events are spans (begin/end pairs) and points. A stream tracer writes each
// event as it happens, as text or NDJSON; a ring tracer keeps the last events
// in memory so they can be dumped when a run fails.
//
// Levels map to scopes:
//
//	phase   driver steps and passes (lower, solve, mono)
//	detail  plus one span per definition or specialization
//	debug   everything
package trace
