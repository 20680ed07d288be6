// Package middlewares provides net/http middlewares for forgemvc applications.
//
// Every middleware has the func(http.Handler) http.Handler shape, so they
// plug into the app through WithMiddleware and into any chi router.
//
// RequestID reuses an upstream X-Request-ID (or a generated UUID) and stores
// it in the request context where logger.RequestIDExtractor finds it.
//
// Recover turns a panic into a *PanicError and hands it to an error
// responder; the app passes its own error handler so panics and fatal
// dispatch errors produce the same 500 page.
//
// Logger writes one access log line per request.
//
//	app := forgemvc.New(
//		forgemvc.WithMiddleware(
//			middlewares.RequestID(),
//			middlewares.Logger(log),
//		),
//	)
package middlewares
