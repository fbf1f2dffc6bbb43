// Package appconfig holds the application configuration resolved at startup:
// the image host base URL and the genre taxonomy.
//
// A Config is either built by FromTMDB from a genre list and an image
// configuration fetched together, or restored verbatim from a cached
// snapshot. It is never partially populated.
package appconfig
