// Package itemprice stores and queries auction house price snapshots.
//
// Snapshots are append-only facts keyed by (server, item). "Current" values
// are resolved at read time: for each group the row with the maximum
// updated_at wins, ties broken by the highest id. The repository expresses
// that rule as a portable anti-join so MySQL and sqlite agree on the result,
// and page totals count groups rather than raw rows.
//
// Batch queries resolve their server and item identifier lists through a
// bounded errgroup fan-out before the grouped query runs; any single failed
// lookup fails the batch.
package itemprice
