package showcaller

import "errors"

var (
	// ErrSegmentNotFound indicates the target segment doesn't exist.
	ErrSegmentNotFound = errors.New("segment not found")
	// ErrNotPlayable indicates the target item cannot go on air.
	ErrNotPlayable = errors.New("item is not a playable segment")
	// ErrNoSegments indicates the rundown has no playable segments.
	ErrNoSegments = errors.New("rundown has no playable segments")
)
