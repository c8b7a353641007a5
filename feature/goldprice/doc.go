// Package goldprice tracks the gold price of every game server as an
// append-only series of snapshots. An updater reconciles an external price
// feed against the canonical server catalog on a fixed interval; the service
// answers recent-price and time-window queries over the stored snapshots.
package goldprice
