package mcp

import (
	"time"

	"github.com/morgantremaine/cuer-live/internal/domain/guard"
	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
	"github.com/morgantremaine/cuer-live/internal/domain/timeline"
)

type CreateRundownParams struct {
	Title     string `json:"title"`
	StartTime string `json:"start_time,omitempty"`
}

type GetRundownParams struct {
	ID string `json:"id"`
}

type DeleteRundownParams struct {
	ID string `json:"id"`
}

type AddItemParams struct {
	DocumentID  string `json:"document_id"`
	Kind        string `json:"kind,omitempty"`
	Name        string `json:"name,omitempty"`
	Talent      string `json:"talent,omitempty"`
	Script      string `json:"script,omitempty"`
	GraphicsRef string `json:"graphics_ref,omitempty"`
	VideoRef    string `json:"video_ref,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Color       string `json:"color,omitempty"`
	Position    *int   `json:"position,omitempty"`
}

type UpdateFieldParams struct {
	DocumentID string `json:"document_id"`
	ItemID     string `json:"item_id"`
	Field      string `json:"field"`
	Value      string `json:"value"`
}

type MoveItemParams struct {
	DocumentID string `json:"document_id"`
	ItemID     string `json:"item_id"`
	Position   int    `json:"position"`
}

type DeleteItemParams struct {
	DocumentID string `json:"document_id"`
	ItemID     string `json:"item_id"`
}

type FloatItemParams struct {
	DocumentID string `json:"document_id"`
	ItemID     string `json:"item_id"`
	Floated    bool   `json:"floated"`
}

type SetStartTimeParams struct {
	DocumentID string `json:"document_id"`
	StartTime  string `json:"start_time"`
}

type NumberingParams struct {
	DocumentID string `json:"document_id"`
}

type ResolveRundownParams struct {
	DocumentID string `json:"document_id"`
}

type HeaderDurationParams struct {
	DocumentID string `json:"document_id"`
	ItemID     string `json:"item_id"`
}

type ShowcallerParams struct {
	DocumentID string `json:"document_id"`
	SegmentID  string `json:"segment_id,omitempty"`
}

type OpenSessionParams struct {
	DocumentID string `json:"document_id"`
	ClientID   string `json:"client_id"`
}

type SessionParams struct {
	SessionID string `json:"session_id,omitempty"`
}

type ListSessionsParams struct {
	DocumentID string `json:"document_id"`
}

type GuardFieldParams struct {
	SessionID  string `json:"session_id,omitempty"`
	DocumentID string `json:"document_id"`
	ItemID     string `json:"item_id"`
	Field      string `json:"field"`
	Value      string `json:"value,omitempty"`
}

type GuardFlushParams struct {
	SessionID  string `json:"session_id,omitempty"`
	DocumentID string `json:"document_id"`
}

type GuardResolveParams struct {
	SessionID  string `json:"session_id,omitempty"`
	DocumentID string `json:"document_id"`
	ItemID     string `json:"item_id"`
	Field      string `json:"field"`
	KeepLocal  bool   `json:"keep_local"`
}

// DocumentResponse is a rundown with its computed timeline projection.
type DocumentResponse struct {
	Document     rundown.Document        `json:"document"`
	Rows         []timeline.ResolvedItem `json:"rows"`
	TotalRuntime string                  `json:"total_runtime"`
}

type NumberingResponse struct {
	DocumentID      string            `json:"document_id"`
	NumberingLocked bool              `json:"numbering_locked"`
	LockedNumbers   map[string]string `json:"locked_numbers,omitempty"`
	Tick            int64             `json:"tick"`
}

type HeaderDurationResponse struct {
	ItemID   string `json:"item_id"`
	Duration string `json:"duration"`
}

type FieldChangeResponse struct {
	Change rundown.FieldChange `json:"change"`
	Tick   int64               `json:"tick"`
}

type OpenSessionResponse struct {
	SessionID    string `json:"session_id"`
	DocumentID   string `json:"document_id"`
	LastSyncTick int64  `json:"last_sync_tick"`
}

// SyncedChange pairs a remote change with the guard's verdict on it.
type SyncedChange struct {
	Change   rundown.FieldChange `json:"change"`
	Decision guard.Decision      `json:"decision"`
}

type SyncSessionResponse struct {
	SessionID string         `json:"session_id"`
	Tick      int64          `json:"tick"`
	TickGap   int64          `json:"tick_gap"`
	Changes   []SyncedChange `json:"changes"`
	Warning   string         `json:"warning,omitempty"`
}

type GuardFlushResponse struct {
	Applied []SyncedChange `json:"applied"`
}

type GuardResolveResponse struct {
	ItemID string `json:"item_id"`
	Field  string `json:"field"`
	Value  string `json:"value"`
}

type SessionInfoResponse struct {
	SessionID    string    `json:"session_id"`
	ClientID     string    `json:"client_id"`
	LastSyncTick int64     `json:"last_sync_tick"`
	TickGap      int64     `json:"tick_gap"`
	LastActivity time.Time `json:"last_activity"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

var statusOK = StatusResponse{Status: "ok"}

// sessionOrParam prefers the transport-provided session id.
func sessionOrParam(ctxSessionID, paramSessionID string) string {
	if ctxSessionID != "" {
		return ctxSessionID
	}
	return paramSessionID
}
