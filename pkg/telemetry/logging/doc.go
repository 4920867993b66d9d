// Package logging configures structured logging for the gateway using
// log/slog, with request-scoped loggers carried through context.
package logging
