// Package logger builds the slog loggers used by forgemvc applications.
//
// Loggers are JSON (or text) handlers wrapped in a decorator that copies
// request-scoped values from the context onto every record. The dispatch
// core stores the request id and the resolved controller and action in the
// context, so a logger created with DefaultExtractors tags every line
// written during a request:
//
//	log := logger.New(
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithExtractors(logger.DefaultExtractors()...),
//	)
//	ctx := logger.WithDispatch(logger.WithRequestID(ctx, "r-1"), "post", "show")
//	log.InfoContext(ctx, "rendered")
//	// {"level":"INFO","msg":"rendered","request_id":"r-1","controller":"post","action":"show"}
//
// NewWithSentry additionally forwards warnings and errors to Sentry. With an
// empty DSN it degrades to the plain logger so the same wiring works locally.
//
// NewNope returns a logger that discards everything; it is the default when
// an application is not given one.
package logger
