// Package logging assembles structured slog loggers and formatting helpers used
// across movs.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so loader cycles automatically
// tag log lines with their cycle number and correlation ID. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
