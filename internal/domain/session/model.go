package session

import "time"

// SessionStatus represents the lifecycle status of an editing session.
type SessionStatus string

const (
	StatusActive SessionStatus = "active"
	StatusClosed SessionStatus = "closed"
)

// Session tracks one client's connection to a rundown: who is editing
// and how far through the change feed they have synced.
type Session struct {
	ID           string        `json:"id"`
	TenantID     string        `json:"tenant_id"`
	DocumentID   string        `json:"document_id"`
	ClientID     string        `json:"client_id"`
	Status       SessionStatus `json:"status"`
	LastSyncTick int64         `json:"last_sync_tick"`
	CreatedAt    time.Time     `json:"created_at"`
	LastActivity time.Time     `json:"last_activity"`
	ClosedAt     *time.Time    `json:"closed_at,omitempty"`
}

// SessionInfo is a lightweight view of an active session.
type SessionInfo struct {
	SessionID    string    `json:"session_id"`
	ClientID     string    `json:"client_id"`
	LastSyncTick int64     `json:"last_sync_tick"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}
