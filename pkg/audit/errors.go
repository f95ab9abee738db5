package audit

import "errors"

var (
	// ErrRecordValidation indicates a record is missing required fields.
	ErrRecordValidation = errors.New("audit: record validation failed")

	// ErrDispatcherClosed is returned when enqueueing after shutdown.
	ErrDispatcherClosed = errors.New("audit: dispatcher closed")
)
