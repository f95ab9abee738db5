package segment

import "errors"

var (
	// ErrInvalidDate indicates an unparseable date value in a before, after
	// or between condition. Surfaced to the caller — silently matching
	// nothing would hide user mistakes.
	ErrInvalidDate = errors.New("segment: invalid date value")

	// ErrInvalidValue indicates a condition value of the wrong shape
	// (non-numeric within_last, missing between bound).
	ErrInvalidValue = errors.New("segment: invalid condition value")

	// ErrNotFound indicates the segment does not exist or is deleted.
	ErrNotFound = errors.New("segment: not found")

	// ErrNameTaken indicates the per-org unique name constraint fired.
	ErrNameTaken = errors.New("segment: name already in use")
)
