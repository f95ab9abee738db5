// Package principal carries the authenticated actor through request context.
//
// Authentication itself lives outside this repository; whatever middleware
// performs it is expected to call WithContext so that downstream consumers
// (the audit interceptor in particular) can attribute actions to a user and
// organization without importing the auth stack.
package principal
