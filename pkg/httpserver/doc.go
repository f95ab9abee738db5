// Package httpserver runs the API's HTTP listener with graceful shutdown.
//
// Shutdown is two-phase: the listener stops accepting and waits for
// in-flight requests, then registered Drainers flush buffered side effects
// (notably pending audit writes) on the remaining shutdown budget. Both
// phases share one deadline from ShutdownTimeout.
//
//	srv := httpserver.New(cfg,
//		httpserver.WithLogger(log),
//		httpserver.WithDrainer(dispatcher.Close),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server exited", slog.Any("error", err))
//	}
//
// Run blocks until the context is cancelled, SIGINT/SIGTERM arrives, or the
// listener fails.
package httpserver
