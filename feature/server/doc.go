// Package server owns the canonical game server catalog: the Server model,
// the faction/region/game-version enums, and the identifier resolver that
// turns user-facing "<name>-<faction>" strings into catalog keys.
//
// The catalog is read-only from this application's point of view. Every other
// feature resolves servers through this package, including the gold price
// feed updater, which matches canonical servers against feed entries by
// Server.UniqueName.
package server
