// Package httpserver runs the tenant-routed HTTP handler with graceful
// shutdown and health probes.
//
// Request contexts derive from the context passed to Run, so cancelling it
// cancels in-flight requests and lets per-request tenant slots unwind.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	r.Get("/healthz", httpserver.HealthCheckHandler(log,
//		httpserver.Check{Name: "postgres", Fn: pools.Healthcheck},
//	))
//	err := srv.Run(ctx, r)
//
// Run wraps listen errors with ErrStart and Shutdown wraps shutdown errors
// with ErrShutdown.
package httpserver
