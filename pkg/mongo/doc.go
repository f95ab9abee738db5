// Package mongo provides MongoDB connection management for the service.
//
// Configuration is entirely environment-driven, retry logic absorbs
// transient startup failures, and the pool defaults suit steady
// small-to-medium SaaS traffic without manual tuning. Both the audit trail
// and the segment engine share the client produced here.
package mongo
