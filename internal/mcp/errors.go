package mcp

import (
	"errors"
	"fmt"

	"github.com/morgantremaine/cuer-live/internal/domain/guard"
	"github.com/morgantremaine/cuer-live/internal/domain/numbering"
	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
	"github.com/morgantremaine/cuer-live/internal/domain/session"
	"github.com/morgantremaine/cuer-live/internal/domain/showcaller"
	"github.com/morgantremaine/cuer-live/internal/domain/timeline"
	"github.com/morgantremaine/cuer-live/internal/repository"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, rundown.ErrDocumentNotFound):
		return &APIError{Code: "RUNDOWN_NOT_FOUND", Message: "rundown not found", RecoveryHint: "Check ID spelling"}
	case errors.Is(err, rundown.ErrItemNotFound):
		return &APIError{Code: "ITEM_NOT_FOUND", Message: "item not found", RecoveryHint: "Check ID spelling"}
	case errors.Is(err, rundown.ErrUnknownField):
		return &APIError{Code: "UNKNOWN_FIELD", Message: "unknown field", RecoveryHint: "Use a built-in field name or the custom: prefix"}
	case errors.Is(err, rundown.ErrHeaderDuration):
		return &APIError{Code: "HEADER_DURATION", Message: "headers do not carry a duration", RecoveryHint: "Set durations on regular segments"}
	case errors.Is(err, rundown.ErrNumberingLocked):
		return &APIError{Code: "NUMBERING_LOCKED", Message: "numbering already locked"}
	case errors.Is(err, rundown.ErrNumberingUnlocked):
		return &APIError{Code: "NUMBERING_UNLOCKED", Message: "numbering is not locked"}
	case errors.Is(err, timeline.ErrNotHeader):
		return &APIError{Code: "NOT_A_HEADER", Message: "item is not a header", RecoveryHint: "Section durations are computed for headers only"}
	case errors.Is(err, numbering.ErrDepthExceeded):
		return &APIError{Code: "NUMBERING_DEPTH", Message: err.Error(), RecoveryHint: "Unlock numbering, reorganize the rows, and lock again"}
	case errors.Is(err, showcaller.ErrSegmentNotFound):
		return &APIError{Code: "SEGMENT_NOT_FOUND", Message: "segment not found"}
	case errors.Is(err, showcaller.ErrNotPlayable):
		return &APIError{Code: "NOT_PLAYABLE", Message: "segment cannot be played", RecoveryHint: "Headers and floated segments are skipped by the showcaller"}
	case errors.Is(err, showcaller.ErrNoSegments):
		return &APIError{Code: "NO_SEGMENTS", Message: "rundown has no playable segments"}
	case errors.Is(err, session.ErrSessionNotFound):
		return &APIError{Code: "SESSION_NOT_FOUND", Message: "session not found", RecoveryHint: "Open a new session"}
	case errors.Is(err, session.ErrSessionClosed):
		return &APIError{Code: "SESSION_CLOSED", Message: "session is closed", RecoveryHint: "Open a new session"}
	case errors.Is(err, guard.ErrNoConflict):
		return &APIError{Code: "NO_CONFLICT", Message: "no pending conflict for this field"}
	case errors.Is(err, guard.ErrResolutionFailed):
		return &APIError{Code: "RESOLUTION_FAILED", Message: "conflict resolution write failed", RecoveryHint: "The local value was reverted; retry"}
	case errors.Is(err, repository.ErrConflict):
		return &APIError{Code: "CONFLICT", Message: "rundown modified concurrently", RecoveryHint: "Sync and retry"}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
