// Package configcache persists the last successfully resolved configuration so
// the loader can fall back to it when TMDB is unreachable.
//
// Two backends exist. FileCache writes a JSON snapshot atomically and is the
// default. SQLiteCache keeps a single row in a SQLite database. Neither ever
// fails a Store: persistence problems are logged and the loader carries on.
package configcache
