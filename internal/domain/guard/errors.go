package guard

import "errors"

var (
	// ErrNoConflict indicates a resolution for a field with no pending
	// conflict.
	ErrNoConflict = errors.New("no pending conflict for field")
	// ErrResolutionFailed indicates the transport rejected the user's
	// resolution; the field has been reverted to the remote value.
	ErrResolutionFailed = errors.New("conflict resolution write failed")
)
