// Package cache provides a TTL-based caching layer for read-only query paths.
//
// Two pieces compose it:
//
//   - TTLCache: a generic in-memory map with per-entry expiry.
//   - Loader: singleflight-protected read-through wrapper, keyed by a canonical
//     serialization of all query parameters.
//
// Services accept the Cache interface, so passing NoopCache disables caching
// without changing observable behavior beyond latency and staleness.
package cache
