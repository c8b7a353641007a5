// Package population stores per-server population snapshots and answers
// recent, regional and realm-total queries over them.
package population
