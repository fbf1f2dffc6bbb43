// Package main hosts the movs CLI entrypoint and command graph.
//
// The Cobra-based command tree loads the application configuration from TMDB
// once or on a schedule, inspects and clears the persisted snapshot, and
// scaffolds the TOML configuration file. Config resolution and logger setup
// happen here; the loading pipeline itself lives in internal/configloader.
package main
