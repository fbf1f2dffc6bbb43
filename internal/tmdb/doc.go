// Package tmdb provides the minimal TMDB API client used to bootstrap movs.
//
// It authenticates requests and exposes the two configuration lookups the
// config loader joins: the movie genre taxonomy and the image host settings.
// Failures are tagged with services.ErrNetwork (transport, non-200 status,
// aborted rate-limit wait) or services.ErrDecode (malformed or incomplete
// payloads). Options allow tests to supply custom HTTP clients; an optional
// token-bucket limiter keeps bursts of reloads under the API quota.
package tmdb
