// Package audit implements the request audit pipeline: classification of
// mutating requests into a closed action set, post-response record capture,
// payload sanitization, and retention-bounded persistence in MongoDB.
//
// # Pipeline
//
// The Middleware consults a Classifier built from a data-driven route table.
// When a request matches, a record is built after the handler finishes —
// carrying the principal, the observed status code, duration, client IP and,
// for create/update actions, the sanitized request body — and handed to a
// Dispatcher that persists it off the request's critical path. Delivery is
// at-most-once: a crash between response and write loses the record, and
// the 365-day TTL retention is chosen with that in mind.
//
// # Usage
//
//	store := audit.NewStore(db, log)
//	_ = store.EnsureIndexes(ctx)
//	dispatcher := audit.NewDispatcher(store, log, audit.DispatcherOptions{})
//	defer dispatcher.Close(ctx)
//
//	router.Use(audit.Middleware(dispatcher, audit.NewClassifier(audit.DefaultRoutes), audit.MiddlewareOptions{
//		ExcludePaths: []string{"/health"},
//		IncludeBody:  true,
//	}))
//
// Handlers needing richer records call Dispatcher.LogAction directly;
// security signals go through Dispatcher.LogSecurityEvent, which forces
// warning status and omits the principal.
package audit
