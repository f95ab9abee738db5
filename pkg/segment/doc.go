// Package segment compiles saved audience definitions into MongoDB queries
// over the contact base and maintains a cached cardinality per segment.
//
// A segment is either dynamic (two-level boolean rules: condition groups
// joined by a root AND/OR, plain conditions inside each group) or static
// (explicit included/excluded contact IDs, exclusion winning). Every
// compiled query is scoped by the organization and a base filter on
// subscription status and list membership, so a segment can never reach
// outside its org or address unsubscribed contacts.
//
// Compilation is pure: BuildQuery turns a Segment into a bson.M filter
// without touching the database. Evaluation goes through Manager, which
// counts, previews and refreshes against a ContactSource:
//
//	store := segment.NewStore(db)
//	contacts := segment.NewContactStore(db)
//	manager := segment.NewManager(store, contacts, log)
//
//	seg, err := store.GetByID(ctx, orgID, segmentID)
//	if err != nil {
//		return err
//	}
//	n, err := manager.Count(ctx, seg)
//
// Any write that can change membership marks the cache stale in the same
// update; the background Refresher recalculates stale active segments on a
// fixed interval:
//
//	refresher := segment.NewRefresher(manager, log,
//		segment.WithInterval(time.Minute),
//	)
//	go refresher.Run(ctx)
package segment
