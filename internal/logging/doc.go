// Package logging builds the process-wide zerolog logger and its trimmings:
// component-tagged child loggers, ULID trace ids carried through context, and
// an append-only audit trail of command invocations.
//
// The library core does not import this package; it receives a plain
// zerolog.Logger. Binaries construct theirs here and hand it down.
package logging
