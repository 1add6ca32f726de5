package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/morgantremaine/cuer-live/internal/domain/guard"
	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
	"github.com/morgantremaine/cuer-live/internal/domain/session"
	"github.com/morgantremaine/cuer-live/internal/domain/showcaller"
	"github.com/stretchr/testify/require"
)

type rundownStub struct {
	createFn      func(context.Context, string, rundown.CreateRequest) (*rundown.Document, error)
	getFn         func(context.Context, string, string) (*rundown.Document, error)
	listFn        func(context.Context, string) ([]rundown.DocumentSummary, error)
	deleteFn      func(context.Context, string, string) error
	addItemFn     func(context.Context, string, rundown.AddItemRequest) (*rundown.Item, error)
	updateFieldFn func(context.Context, string, rundown.UpdateFieldRequest) (*rundown.FieldChange, error)
	moveFn        func(context.Context, string, string, string, int) error
	deleteItemFn  func(context.Context, string, string, string) error
	floatFn       func(context.Context, string, string, string, bool) error
	startTimeFn   func(context.Context, string, string, string) (*rundown.Document, error)
	lockFn        func(context.Context, string, string) (*rundown.Document, error)
	unlockFn      func(context.Context, string, string) (*rundown.Document, error)
}

func (r rundownStub) Create(ctx context.Context, tenantID string, req rundown.CreateRequest) (*rundown.Document, error) {
	return r.createFn(ctx, tenantID, req)
}
func (r rundownStub) Get(ctx context.Context, tenantID, id string) (*rundown.Document, error) {
	return r.getFn(ctx, tenantID, id)
}
func (r rundownStub) List(ctx context.Context, tenantID string) ([]rundown.DocumentSummary, error) {
	return r.listFn(ctx, tenantID)
}
func (r rundownStub) Delete(ctx context.Context, tenantID, id string) error {
	return r.deleteFn(ctx, tenantID, id)
}
func (r rundownStub) AddItem(ctx context.Context, tenantID string, req rundown.AddItemRequest) (*rundown.Item, error) {
	return r.addItemFn(ctx, tenantID, req)
}
func (r rundownStub) UpdateField(ctx context.Context, tenantID string, req rundown.UpdateFieldRequest) (*rundown.FieldChange, error) {
	return r.updateFieldFn(ctx, tenantID, req)
}
func (r rundownStub) MoveItem(ctx context.Context, tenantID, documentID, itemID string, position int) error {
	return r.moveFn(ctx, tenantID, documentID, itemID, position)
}
func (r rundownStub) DeleteItem(ctx context.Context, tenantID, documentID, itemID string) error {
	return r.deleteItemFn(ctx, tenantID, documentID, itemID)
}
func (r rundownStub) SetFloated(ctx context.Context, tenantID, documentID, itemID string, floated bool) error {
	return r.floatFn(ctx, tenantID, documentID, itemID, floated)
}
func (r rundownStub) SetStartTime(ctx context.Context, tenantID, documentID, startTime string) (*rundown.Document, error) {
	return r.startTimeFn(ctx, tenantID, documentID, startTime)
}
func (r rundownStub) LockNumbering(ctx context.Context, tenantID, documentID string) (*rundown.Document, error) {
	return r.lockFn(ctx, tenantID, documentID)
}
func (r rundownStub) UnlockNumbering(ctx context.Context, tenantID, documentID string) (*rundown.Document, error) {
	return r.unlockFn(ctx, tenantID, documentID)
}

type sessionStub struct {
	openFn  func(context.Context, string, session.OpenRequest) (*session.Session, error)
	getFn   func(context.Context, string, string) (*session.Session, error)
	syncFn  func(context.Context, string, string) (*session.SyncResult, error)
	closeFn func(context.Context, string, string) error
	listFn  func(context.Context, string, string) ([]session.SessionInfo, error)
}

func (s sessionStub) Open(ctx context.Context, tenantID string, req session.OpenRequest) (*session.Session, error) {
	return s.openFn(ctx, tenantID, req)
}
func (s sessionStub) Get(ctx context.Context, tenantID, id string) (*session.Session, error) {
	return s.getFn(ctx, tenantID, id)
}
func (s sessionStub) Sync(ctx context.Context, tenantID, sessionID string) (*session.SyncResult, error) {
	return s.syncFn(ctx, tenantID, sessionID)
}
func (s sessionStub) CloseSession(ctx context.Context, tenantID, sessionID string) error {
	return s.closeFn(ctx, tenantID, sessionID)
}
func (s sessionStub) ListActive(ctx context.Context, tenantID, documentID string) ([]session.SessionInfo, error) {
	return s.listFn(ctx, tenantID, documentID)
}

func newsDoc() *rundown.Document {
	return &rundown.Document{
		ID:        "d1",
		TenantID:  "tenant1",
		Title:     "Evening News",
		StartTime: "18:00:00",
		Tick:      3,
		Items: []rundown.Item{
			{ID: "h", Kind: rundown.KindHeader, Name: "Part One"},
			{ID: "a", Kind: rundown.KindRegular, Name: "Headlines", Duration: "00:02:00"},
			{ID: "b", Kind: rundown.KindRegular, Name: "Weather", Duration: "00:03:00"},
		},
	}
}

type guardWriterStub struct {
	wrote []string
}

func (w *guardWriterStub) WriteField(_ context.Context, key rundown.FieldKey, value string) error {
	w.wrote = append(w.wrote, string(key.Field)+"="+value)
	return nil
}

func newTestHandler(rundowns rundownStub, sessions sessionStub) (*Handler, *guardWriterStub) {
	writer := &guardWriterStub{}
	guards := guard.NewManager(func(_, _, _ string) guard.FieldWriter {
		return writer
	}, guard.Callbacks{}, guard.Options{}, nil)

	caller := showcaller.NewManager(func(documentID string) showcaller.DocumentSource {
		return docSourceFunc(func(ctx context.Context) (*rundown.Document, error) {
			return rundowns.getFn(ctx, "tenant1", documentID)
		})
	}, showcaller.Options{TickInterval: time.Hour}, nil)

	return NewHandler(rundowns, sessions, caller, guards), writer
}

type docSourceFunc func(ctx context.Context) (*rundown.Document, error)

func (f docSourceFunc) Document(ctx context.Context) (*rundown.Document, error) {
	return f(ctx)
}

func mustParams(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestHandler_GetRundownResolvesTimeline(t *testing.T) {
	ctx := context.Background()
	handler, _ := newTestHandler(rundownStub{
		getFn: func(_ context.Context, _ string, id string) (*rundown.Document, error) {
			require.Equal(t, "d1", id)
			return newsDoc(), nil
		},
	}, sessionStub{})

	result, err := handler.Handle(ctx, "tenant1", "", "get_rundown", mustParams(t, GetRundownParams{ID: "d1"}))
	require.NoError(t, err)

	resp := result.(DocumentResponse)
	require.Equal(t, "00:05:00", resp.TotalRuntime)
	require.Len(t, resp.Rows, 3)
	require.Equal(t, "18:00:00", resp.Rows[1].StartTime)
	require.Equal(t, "18:02:00", resp.Rows[1].EndTime)
	require.Equal(t, "1", resp.Rows[1].RowNumber)
	require.Equal(t, "00:05:00", resp.Rows[0].HeaderDuration)
}

func TestHandler_UpdateFieldStampsAuthor(t *testing.T) {
	ctx := context.Background()
	handler, _ := newTestHandler(rundownStub{
		updateFieldFn: func(_ context.Context, _ string, req rundown.UpdateFieldRequest) (*rundown.FieldChange, error) {
			require.Equal(t, "sess-9", req.AuthorID)
			require.Equal(t, rundown.FieldScript, req.Field)
			return &rundown.FieldChange{
				DocumentID: req.DocumentID,
				ItemID:     req.ItemID,
				Field:      req.Field,
				Value:      req.Value,
				AuthorID:   req.AuthorID,
				Tick:       4,
			}, nil
		},
	}, sessionStub{})

	result, err := handler.Handle(ctx, "tenant1", "sess-9", "update_field", mustParams(t, UpdateFieldParams{
		DocumentID: "d1",
		ItemID:     "a",
		Field:      "script",
		Value:      "Good evening.",
	}))
	require.NoError(t, err)

	resp := result.(FieldChangeResponse)
	require.Equal(t, int64(4), resp.Tick)
	require.Equal(t, "Good evening.", resp.Change.Value)
}

func TestHandler_UpdateFieldMapsDomainError(t *testing.T) {
	ctx := context.Background()
	handler, _ := newTestHandler(rundownStub{
		updateFieldFn: func(_ context.Context, _ string, _ rundown.UpdateFieldRequest) (*rundown.FieldChange, error) {
			return nil, rundown.ErrHeaderDuration
		},
	}, sessionStub{})

	_, err := handler.Handle(ctx, "tenant1", "", "update_field", mustParams(t, UpdateFieldParams{
		DocumentID: "d1", ItemID: "h", Field: "duration", Value: "00:01:00",
	}))
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	require.Equal(t, "HEADER_DURATION", apiErr.Code)
}

func TestHandler_HeaderDuration(t *testing.T) {
	ctx := context.Background()
	handler, _ := newTestHandler(rundownStub{
		getFn: func(_ context.Context, _ string, _ string) (*rundown.Document, error) {
			return newsDoc(), nil
		},
	}, sessionStub{})

	result, err := handler.Handle(ctx, "tenant1", "", "header_duration", mustParams(t, HeaderDurationParams{
		DocumentID: "d1", ItemID: "h",
	}))
	require.NoError(t, err)
	require.Equal(t, HeaderDurationResponse{ItemID: "h", Duration: "00:05:00"}, result)

	_, err = handler.Handle(ctx, "tenant1", "", "header_duration", mustParams(t, HeaderDurationParams{
		DocumentID: "d1", ItemID: "a",
	}))
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	require.Equal(t, "NOT_A_HEADER", apiErr.Code)
}

func TestHandler_ShowcallerPlayAndStatus(t *testing.T) {
	ctx := context.Background()
	handler, _ := newTestHandler(rundownStub{
		getFn: func(_ context.Context, _ string, _ string) (*rundown.Document, error) {
			return newsDoc(), nil
		},
	}, sessionStub{})
	defer handler.showcaller.Close()

	result, err := handler.Handle(ctx, "tenant1", "", "showcaller_play", mustParams(t, ShowcallerParams{
		DocumentID: "d1", SegmentID: "a",
	}))
	require.NoError(t, err)

	snap := result.(showcaller.Snapshot)
	require.True(t, snap.IsPlaying)
	require.Equal(t, "a", snap.CurrentSegmentID)
	require.Equal(t, 120, snap.TimeRemainingSeconds)

	_, err = handler.Handle(ctx, "tenant1", "", "showcaller_play", mustParams(t, ShowcallerParams{
		DocumentID: "d1", SegmentID: "h",
	}))
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	require.Equal(t, "NOT_PLAYABLE", apiErr.Code)
}

func TestHandler_SyncSessionGuardDecisions(t *testing.T) {
	ctx := context.Background()
	remote := []rundown.FieldChange{
		{DocumentID: "d1", ItemID: "a", Field: rundown.FieldScript, Value: "their script", AuthorID: "other", Tick: 4, ModifiedAt: time.Now()},
		{DocumentID: "d1", ItemID: "b", Field: rundown.FieldName, Value: "Sports", AuthorID: "other", Tick: 5, ModifiedAt: time.Now()},
	}
	handler, _ := newTestHandler(rundownStub{}, sessionStub{
		getFn: func(_ context.Context, _ string, id string) (*session.Session, error) {
			return &session.Session{ID: id, DocumentID: "d1", Status: session.StatusActive}, nil
		},
		syncFn: func(_ context.Context, _ string, id string) (*session.SyncResult, error) {
			return &session.SyncResult{SessionID: id, Tick: 5, TickGap: 2, Changes: remote}, nil
		},
	})

	// The client is typing in a.script; that change must be deferred.
	_, err := handler.Handle(ctx, "tenant1", "sess-1", "guard_begin_edit", mustParams(t, GuardFieldParams{
		DocumentID: "d1", ItemID: "a", Field: "script",
	}))
	require.NoError(t, err)

	result, err := handler.Handle(ctx, "tenant1", "sess-1", "sync_session", nil)
	require.NoError(t, err)

	resp := result.(SyncSessionResponse)
	require.Equal(t, int64(2), resp.TickGap)
	require.NotEmpty(t, resp.Warning)
	require.Len(t, resp.Changes, 2)
	require.Equal(t, guard.DecisionDefer, resp.Changes[0].Decision)
	require.Equal(t, guard.DecisionApply, resp.Changes[1].Decision)

	// Blur and flush: the deferred change comes through.
	_, err = handler.Handle(ctx, "tenant1", "sess-1", "guard_end_edit", mustParams(t, GuardFieldParams{
		DocumentID: "d1", ItemID: "a", Field: "script",
	}))
	require.NoError(t, err)
}

func TestHandler_GuardResolveWithoutConflict(t *testing.T) {
	ctx := context.Background()
	handler, writer := newTestHandler(rundownStub{}, sessionStub{
		getFn: func(_ context.Context, _ string, id string) (*session.Session, error) {
			return &session.Session{ID: id, DocumentID: "d1", Status: session.StatusActive}, nil
		},
		syncFn: func(_ context.Context, _ string, id string) (*session.SyncResult, error) {
			return &session.SyncResult{SessionID: id, Tick: 4, TickGap: 1, Changes: []rundown.FieldChange{
				{DocumentID: "d1", ItemID: "a", Field: rundown.FieldScript, Value: "theirs", AuthorID: "other", Tick: 4, ModifiedAt: time.Now()},
			}}, nil
		},
	})

	// Local keystroke at nearly the same moment as the remote write.
	_, err := handler.Handle(ctx, "tenant1", "sess-1", "guard_keystroke", mustParams(t, GuardFieldParams{
		DocumentID: "d1", ItemID: "a", Field: "script", Value: "mine",
	}))
	require.NoError(t, err)
	_, err = handler.Handle(ctx, "tenant1", "sess-1", "guard_end_edit", mustParams(t, GuardFieldParams{
		DocumentID: "d1", ItemID: "a", Field: "script",
	}))
	require.NoError(t, err)

	result, err := handler.Handle(ctx, "tenant1", "sess-1", "sync_session", nil)
	require.NoError(t, err)
	resp := result.(SyncSessionResponse)
	require.Equal(t, guard.DecisionDefer, resp.Changes[0].Decision)

	// A deferred change is not a conflict; resolve has nothing to act on.
	_, err = handler.Handle(ctx, "tenant1", "sess-1", "guard_resolve", mustParams(t, GuardResolveParams{
		DocumentID: "d1", ItemID: "a", Field: "script", KeepLocal: true,
	}))
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	require.Equal(t, "NO_CONFLICT", apiErr.Code)
	require.Empty(t, writer.wrote)
}

func TestHandler_OpenAndCloseSession(t *testing.T) {
	ctx := context.Background()
	closed := ""
	handler, _ := newTestHandler(rundownStub{}, sessionStub{
		openFn: func(_ context.Context, _ string, req session.OpenRequest) (*session.Session, error) {
			return &session.Session{ID: "s1", DocumentID: req.DocumentID, ClientID: req.ClientID, LastSyncTick: 3}, nil
		},
		closeFn: func(_ context.Context, _ string, id string) error {
			closed = id
			return nil
		},
	})

	result, err := handler.Handle(ctx, "tenant1", "", "open_session", mustParams(t, OpenSessionParams{
		DocumentID: "d1", ClientID: "client-a",
	}))
	require.NoError(t, err)
	require.Equal(t, OpenSessionResponse{SessionID: "s1", DocumentID: "d1", LastSyncTick: 3}, result)

	_, err = handler.Handle(ctx, "tenant1", "s1", "close_session", nil)
	require.NoError(t, err)
	require.Equal(t, "s1", closed)
}

func TestHandler_UnknownMethod(t *testing.T) {
	handler, _ := newTestHandler(rundownStub{}, sessionStub{})

	_, err := handler.Handle(context.Background(), "tenant1", "", "does_not_exist", nil)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	require.Equal(t, "METHOD_NOT_FOUND", apiErr.Code)
}
