// Package configloader resolves the application configuration from the TMDB
// genre and image endpoints, falling back to the last cached configuration
// when a fetch fails.
//
// A Loader consumes a channel of triggers. Every trigger starts one cycle that
// fetches both halves concurrently and joins them. Successful cycles are
// stored, then published on the config stream. Failed cycles publish the
// cached config, when there is one, and always publish a Failure on the
// failure stream. A failed cycle with an empty cache publishes nothing on the
// config stream.
//
// Cycles are independent: a new trigger never cancels an earlier one, and
// results are published in the order cycles finish.
package configloader
