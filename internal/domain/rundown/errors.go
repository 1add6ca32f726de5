package rundown

import "errors"

var (
	// ErrDocumentNotFound indicates the rundown doesn't exist.
	ErrDocumentNotFound = errors.New("rundown not found")
	// ErrItemNotFound indicates the item doesn't exist in the rundown.
	ErrItemNotFound = errors.New("item not found")
	// ErrUnknownField indicates a field key outside the registry.
	ErrUnknownField = errors.New("unknown field")
	// ErrHeaderDuration indicates an attempt to store a duration on a
	// header; header durations are derived, never written.
	ErrHeaderDuration = errors.New("header duration is derived")
	// ErrNumberingLocked indicates an operation that requires unlocked
	// numbering.
	ErrNumberingLocked = errors.New("numbering is locked")
	// ErrNumberingUnlocked indicates an operation that requires locked
	// numbering.
	ErrNumberingUnlocked = errors.New("numbering is not locked")
	// ErrInvalidInput indicates invalid input for rundown operations.
	ErrInvalidInput = errors.New("invalid rundown input")
)
