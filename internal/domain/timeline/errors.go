package timeline

import "errors"

var (
	// ErrNegativeDifference indicates Difference was called with b before a.
	ErrNegativeDifference = errors.New("negative time difference")
	// ErrNotHeader indicates a header query targeted a non-header item.
	ErrNotHeader = errors.New("item is not a header")
	// ErrIndexOutOfRange indicates an item index outside the document.
	ErrIndexOutOfRange = errors.New("item index out of range")
)
