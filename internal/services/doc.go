// Package services defines shared utilities consumed by the config loader and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp loader cycle numbers and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (network vs decode) so callers can report them consistently.
package services
