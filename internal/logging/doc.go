// Package logging builds the slog loggers used across Slate.
//
// It provides console and JSON handlers, helper constructors for attr values,
// and context-derived fields (run id, stage, dish) so log lines produced deep
// inside a capability still carry the run they belong to. Each run writes its
// own log file inside the run output directory in addition to stdout.
package logging
