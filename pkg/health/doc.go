// Package health serves liveness and readiness probes.
//
// Liveness always answers OK while the process runs. Readiness runs the
// registered checks concurrently under one timeout and answers 503 when any
// of them fails. Checks share the func(context.Context) error shape used by
// db.Conn.Healthcheck and redis.Healthcheck:
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"db":    conn.Healthcheck,
//		"redis": redis.Healthcheck(client),
//	}, health.WithTimeout(3*time.Second)))
//
// Responses are plain text unless the client asks for JSON through the
// Accept header or ?format=json.
package health
