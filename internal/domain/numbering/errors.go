package numbering

import "errors"

var (
	// ErrDepthExceeded indicates decimal nesting past MaxDepth. The engine
	// refuses to number the document; the operator must unlock numbering,
	// reorganize the affected rows, and lock again.
	ErrDepthExceeded = errors.New("row numbering depth exceeded: unlock numbering, reorganize the affected rows, and lock again")
	// ErrMalformedNumber indicates an unparseable locked row number.
	ErrMalformedNumber = errors.New("malformed row number")
)
