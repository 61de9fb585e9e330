// Package errs defines the error shapes returned to API clients.
//
// Every failure that leaves the HTTP layer is rendered as an HTTPError so
// clients always receive the same JSON envelope: a machine-readable code,
// a human-readable message and, for validation failures, one entry per
// offending field.
package errs
