// Package logging wraps log/slog with podsculpt conventions: console and
// JSON handlers, standardized field keys, attr helpers, and a no-op logger
// for tests.
package logging
