// Package apperror defines the typed error taxonomy shared by all features.
//
// Four error kinds cover every failure path in the application:
//
//   - ValidationError: client-caused, locally detectable input problems.
//   - NotFoundError: a resolved key matched no entity or snapshot.
//   - ParsingError: a malformed external feed payload.
//   - ConnectivityError: the external feed was unreachable.
//
// Services return these via the New* constructors; callers branch with the
// Is* helpers (errors.As based, so wrapping with %w is safe). HTTP handlers
// translate them with StatusCode.
package apperror
