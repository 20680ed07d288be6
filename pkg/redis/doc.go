// Package redis opens go-redis clients for the session store and the
// readiness probe.
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"), redis.WithPoolSize(20))
//	if err != nil {
//		return err
//	}
//	store := session.NewRedisStore(client, "session")
//
//	app := forgemvc.New(
//		forgemvc.WithSession(store),
//		forgemvc.WithHealthChecks(forgemvc.WithReadinessCheck("redis", redis.Healthcheck(client))),
//	)
//	app.Run(":8080", forgemvc.ShutdownHook(redis.Shutdown(client)))
//
// Open retries the initial ping with a linear backoff so that a process
// started alongside Redis does not fail on the first attempt.
package redis
