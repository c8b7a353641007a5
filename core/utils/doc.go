// Package utils contains small value-conversion helpers shared by the search
// engine's in-memory predicate backend, where row values arrive with whatever
// dynamic type the database driver produced.
package utils
