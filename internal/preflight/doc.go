// Package preflight provides readiness checks for the filesystem paths and
// the TMDB endpoint that movs depends on.
//
// The CLI "movs config validate --check" runs RunAll and reports every
// result; any failed check makes the command exit non-zero.
package preflight
