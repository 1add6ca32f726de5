package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
	"github.com/morgantremaine/cuer-live/internal/repository"
	"github.com/google/uuid"
)

// defaultSyncLimit caps how many change events one Sync returns.
const defaultSyncLimit = 200

// Service handles editing session operations.
type Service struct {
	sessions  SessionRepository
	documents DocumentRepository
	changes   ChangeLogRepository
	logger    *slog.Logger
}

// NewService creates a new session service.
func NewService(
	sessions SessionRepository,
	documents DocumentRepository,
	changes ChangeLogRepository,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		sessions:  sessions,
		documents: documents,
		changes:   changes,
		logger:    logger,
	}
}

// OpenRequest describes a session open request.
type OpenRequest struct {
	DocumentID string
	ClientID   string
}

// SyncResult carries the remote changes since the session's last sync.
type SyncResult struct {
	SessionID string                `json:"session_id"`
	Tick      int64                 `json:"tick"`
	TickGap   int64                 `json:"tick_gap"`
	Changes   []rundown.FieldChange `json:"changes"`
}

// Open starts an editing session on a rundown, synced to its current
// tick so the client only receives changes made after it loaded.
func (s *Service) Open(ctx context.Context, tenantID string, req OpenRequest) (*Session, error) {
	if req.DocumentID == "" || req.ClientID == "" {
		return nil, ErrInvalidInput
	}

	doc, err := s.documents.Get(ctx, tenantID, req.DocumentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("loading rundown: %w", err)
	}

	now := time.Now()
	sess := &Session{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		DocumentID:   doc.ID,
		ClientID:     req.ClientID,
		Status:       StatusActive,
		LastSyncTick: doc.Tick,
		CreatedAt:    now,
		LastActivity: now,
	}

	if err := s.sessions.Create(ctx, tenantID, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.logger.Info("session opened", "session", sess.ID, "rundown", doc.ID, "client", req.ClientID)
	return sess, nil
}

// Get returns a session by id.
func (s *Service) Get(ctx context.Context, tenantID, id string) (*Session, error) {
	sess, err := s.sessions.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return sess, nil
}

// Sync returns the field changes since the session's last sync and
// advances its sync tick to the document's current tick.
func (s *Service) Sync(ctx context.Context, tenantID, sessionID string) (*SyncResult, error) {
	if sessionID == "" {
		return nil, ErrInvalidInput
	}

	sess, err := s.Get(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusActive {
		return nil, ErrSessionClosed
	}

	doc, err := s.documents.Get(ctx, tenantID, sess.DocumentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("loading rundown: %w", err)
	}

	changes, err := s.changes.ListSince(ctx, tenantID, sess.DocumentID, sess.LastSyncTick, defaultSyncLimit)
	if err != nil {
		return nil, fmt.Errorf("listing changes: %w", err)
	}

	result := &SyncResult{
		SessionID: sess.ID,
		Tick:      doc.Tick,
		TickGap:   doc.Tick - sess.LastSyncTick,
		Changes:   changes,
	}

	sess.LastSyncTick = doc.Tick
	sess.LastActivity = time.Now()
	if err := s.sessions.Update(ctx, tenantID, sess); err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}

	return result, nil
}

// CloseSession ends an editing session.
func (s *Service) CloseSession(ctx context.Context, tenantID, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidInput
	}
	if err := s.sessions.Close(ctx, tenantID, sessionID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("closing session: %w", err)
	}
	return nil
}

// ListActive lists the sessions currently editing a rundown.
func (s *Service) ListActive(ctx context.Context, tenantID, documentID string) ([]SessionInfo, error) {
	return s.sessions.ListActive(ctx, tenantID, documentID)
}
