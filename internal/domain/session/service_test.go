package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
	"github.com/morgantremaine/cuer-live/internal/domain/session"
	"github.com/morgantremaine/cuer-live/internal/repository"
	"github.com/morgantremaine/cuer-live/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSessionService_Open(t *testing.T) {
	ctx := context.Background()
	sessions := &mocks.SessionRepository{}
	docs := &mocks.DocumentRepository{}

	docs.On("Get", ctx, "tenant1", "doc1").Return(&rundown.Document{ID: "doc1", Tick: 12}, nil)
	sessions.On("Create", ctx, "tenant1", mock.Anything).Return(nil)

	svc := session.NewService(sessions, docs, &mocks.ChangeLogRepository{}, nil)
	sess, err := svc.Open(ctx, "tenant1", session.OpenRequest{DocumentID: "doc1", ClientID: "client1"})
	require.NoError(t, err)
	require.Equal(t, int64(12), sess.LastSyncTick)
	require.Equal(t, session.StatusActive, sess.Status)
}

func TestSessionService_Open_DocumentMissing(t *testing.T) {
	ctx := context.Background()
	docs := &mocks.DocumentRepository{}
	docs.On("Get", ctx, "tenant1", "gone").Return(nil, repository.ErrNotFound)

	svc := session.NewService(&mocks.SessionRepository{}, docs, &mocks.ChangeLogRepository{}, nil)
	_, err := svc.Open(ctx, "tenant1", session.OpenRequest{DocumentID: "gone", ClientID: "client1"})
	require.ErrorIs(t, err, session.ErrDocumentNotFound)
}

func TestSessionService_Sync(t *testing.T) {
	ctx := context.Background()
	sessions := &mocks.SessionRepository{}
	docs := &mocks.DocumentRepository{}
	changes := &mocks.ChangeLogRepository{}

	sessions.On("Get", ctx, "tenant1", "sess1").Return(&session.Session{
		ID:           "sess1",
		DocumentID:   "doc1",
		Status:       session.StatusActive,
		LastSyncTick: 10,
	}, nil)
	docs.On("Get", ctx, "tenant1", "doc1").Return(&rundown.Document{ID: "doc1", Tick: 13}, nil)
	changes.On("ListSince", ctx, "tenant1", "doc1", int64(10), 200).Return([]rundown.FieldChange{
		{ItemID: "a", Field: rundown.FieldName, Value: "new", Tick: 11, ModifiedAt: time.Now()},
	}, nil)
	sessions.On("Update", ctx, "tenant1", mock.MatchedBy(func(s *session.Session) bool {
		return s.LastSyncTick == 13
	})).Return(nil)

	svc := session.NewService(sessions, docs, changes, nil)
	result, err := svc.Sync(ctx, "tenant1", "sess1")
	require.NoError(t, err)
	require.Equal(t, int64(13), result.Tick)
	require.Equal(t, int64(3), result.TickGap)
	require.Len(t, result.Changes, 1)
	sessions.AssertExpectations(t)
}

func TestSessionService_Sync_Closed(t *testing.T) {
	ctx := context.Background()
	sessions := &mocks.SessionRepository{}
	sessions.On("Get", ctx, "tenant1", "sess1").Return(&session.Session{
		ID:     "sess1",
		Status: session.StatusClosed,
	}, nil)

	svc := session.NewService(sessions, &mocks.DocumentRepository{}, &mocks.ChangeLogRepository{}, nil)
	_, err := svc.Sync(ctx, "tenant1", "sess1")
	require.ErrorIs(t, err, session.ErrSessionClosed)
}

func TestSessionService_Close(t *testing.T) {
	ctx := context.Background()
	sessions := &mocks.SessionRepository{}
	sessions.On("Close", ctx, "tenant1", "sess1").Return(nil)

	svc := session.NewService(sessions, &mocks.DocumentRepository{}, &mocks.ChangeLogRepository{}, nil)
	require.NoError(t, svc.CloseSession(ctx, "tenant1", "sess1"))

	sessions2 := &mocks.SessionRepository{}
	sessions2.On("Close", ctx, "tenant1", "gone").Return(repository.ErrNotFound)
	svc2 := session.NewService(sessions2, &mocks.DocumentRepository{}, &mocks.ChangeLogRepository{}, nil)
	require.ErrorIs(t, svc2.CloseSession(ctx, "tenant1", "gone"), session.ErrSessionNotFound)
}
