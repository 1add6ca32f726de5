package mocks

import (
	"context"

	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
	"github.com/morgantremaine/cuer-live/internal/domain/session"
	"github.com/stretchr/testify/mock"
)

// DocumentRepository is a mock for repository.DocumentRepository.
type DocumentRepository struct {
	mock.Mock
}

func (m *DocumentRepository) Create(ctx context.Context, tenantID string, doc *rundown.Document) error {
	args := m.Called(ctx, tenantID, doc)
	return args.Error(0)
}

func (m *DocumentRepository) Get(ctx context.Context, tenantID, id string) (*rundown.Document, error) {
	args := m.Called(ctx, tenantID, id)
	if doc, ok := args.Get(0).(*rundown.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DocumentRepository) List(ctx context.Context, tenantID string) ([]rundown.DocumentSummary, error) {
	args := m.Called(ctx, tenantID)
	if list, ok := args.Get(0).([]rundown.DocumentSummary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DocumentRepository) Delete(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *DocumentRepository) UpdateMeta(ctx context.Context, tenantID string, doc *rundown.Document, expectedTick int64) error {
	args := m.Called(ctx, tenantID, doc, expectedTick)
	return args.Error(0)
}

func (m *DocumentRepository) IncrementTick(ctx context.Context, tenantID, documentID string) (int64, error) {
	args := m.Called(ctx, tenantID, documentID)
	return args.Get(0).(int64), args.Error(1)
}

// ItemRepository is a mock for repository.ItemRepository.
type ItemRepository struct {
	mock.Mock
}

func (m *ItemRepository) Insert(ctx context.Context, tenantID, documentID string, item *rundown.Item, position int) error {
	args := m.Called(ctx, tenantID, documentID, item, position)
	return args.Error(0)
}

func (m *ItemRepository) Update(ctx context.Context, tenantID, documentID string, item *rundown.Item) error {
	args := m.Called(ctx, tenantID, documentID, item)
	return args.Error(0)
}

func (m *ItemRepository) Move(ctx context.Context, tenantID, documentID, itemID string, position int) error {
	args := m.Called(ctx, tenantID, documentID, itemID, position)
	return args.Error(0)
}

func (m *ItemRepository) Delete(ctx context.Context, tenantID, documentID, itemID string) error {
	args := m.Called(ctx, tenantID, documentID, itemID)
	return args.Error(0)
}

// ChangeLogRepository is a mock for repository.ChangeLogRepository.
type ChangeLogRepository struct {
	mock.Mock
}

func (m *ChangeLogRepository) Append(ctx context.Context, tenantID string, change *rundown.FieldChange) error {
	args := m.Called(ctx, tenantID, change)
	return args.Error(0)
}

func (m *ChangeLogRepository) ListSince(ctx context.Context, tenantID, documentID string, afterTick int64, limit int) ([]rundown.FieldChange, error) {
	args := m.Called(ctx, tenantID, documentID, afterTick, limit)
	if list, ok := args.Get(0).([]rundown.FieldChange); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// SessionRepository is a mock for repository.SessionRepository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Create(ctx context.Context, tenantID string, sess *session.Session) error {
	args := m.Called(ctx, tenantID, sess)
	return args.Error(0)
}

func (m *SessionRepository) Get(ctx context.Context, tenantID, id string) (*session.Session, error) {
	args := m.Called(ctx, tenantID, id)
	if sess, ok := args.Get(0).(*session.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) Update(ctx context.Context, tenantID string, sess *session.Session) error {
	args := m.Called(ctx, tenantID, sess)
	return args.Error(0)
}

func (m *SessionRepository) Close(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *SessionRepository) ListActive(ctx context.Context, tenantID, documentID string) ([]session.SessionInfo, error) {
	args := m.Called(ctx, tenantID, documentID)
	if list, ok := args.Get(0).([]session.SessionInfo); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
