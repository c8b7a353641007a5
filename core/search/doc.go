// Package search compiles declarative search requests into executable
// predicates.
//
// A Request is a global operator (AND/OR) plus a flat list of criteria, each
// referencing a whitelisted field of the target entity. Compile validates
// fields and operator/type compatibility and coerces values, failing with
// ValidationErrors before any query runs. The result is a Predicate, a tagged
// list of leaves any backend can interpret:
//
//   - Apply builds gorm query conditions (the relational backend).
//   - Match evaluates rows in memory.
//
// Each feature owns its Schema, supplied as data rather than derived through
// reflection, so the whitelist doubles as documentation of the searchable
// surface.
//
//	pred, err := search.Compile(req, server.Schema())
//	if err != nil { ... }
//	rows := pred.Apply(db.Model(&server.Server{}))
package search
