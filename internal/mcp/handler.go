package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/morgantremaine/cuer-live/internal/domain/guard"
	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
	"github.com/morgantremaine/cuer-live/internal/domain/session"
	"github.com/morgantremaine/cuer-live/internal/domain/showcaller"
	"github.com/morgantremaine/cuer-live/internal/domain/timeline"
)

// RundownService defines rundown operations needed by MCP.
type RundownService interface {
	Create(ctx context.Context, tenantID string, req rundown.CreateRequest) (*rundown.Document, error)
	Get(ctx context.Context, tenantID, id string) (*rundown.Document, error)
	List(ctx context.Context, tenantID string) ([]rundown.DocumentSummary, error)
	Delete(ctx context.Context, tenantID, id string) error
	AddItem(ctx context.Context, tenantID string, req rundown.AddItemRequest) (*rundown.Item, error)
	UpdateField(ctx context.Context, tenantID string, req rundown.UpdateFieldRequest) (*rundown.FieldChange, error)
	MoveItem(ctx context.Context, tenantID, documentID, itemID string, position int) error
	DeleteItem(ctx context.Context, tenantID, documentID, itemID string) error
	SetFloated(ctx context.Context, tenantID, documentID, itemID string, floated bool) error
	SetStartTime(ctx context.Context, tenantID, documentID, startTime string) (*rundown.Document, error)
	LockNumbering(ctx context.Context, tenantID, documentID string) (*rundown.Document, error)
	UnlockNumbering(ctx context.Context, tenantID, documentID string) (*rundown.Document, error)
}

// SessionService defines editing session operations needed by MCP.
type SessionService interface {
	Open(ctx context.Context, tenantID string, req session.OpenRequest) (*session.Session, error)
	Get(ctx context.Context, tenantID, id string) (*session.Session, error)
	Sync(ctx context.Context, tenantID, sessionID string) (*session.SyncResult, error)
	CloseSession(ctx context.Context, tenantID, sessionID string) error
	ListActive(ctx context.Context, tenantID, documentID string) ([]session.SessionInfo, error)
}

// Handler dispatches MCP commands.
type Handler struct {
	rundowns   RundownService
	sessions   SessionService
	showcaller *showcaller.Manager
	guards     *guard.Manager
}

// NewHandler creates a new MCP handler.
func NewHandler(rundowns RundownService, sessions SessionService, caller *showcaller.Manager, guards *guard.Manager) *Handler {
	return &Handler{
		rundowns:   rundowns,
		sessions:   sessions,
		showcaller: caller,
		guards:     guards,
	}
}

// Handle dispatches MCP requests to domain services.
func (h *Handler) Handle(ctx context.Context, tenantID, sessionID, method string, params json.RawMessage) (any, error) {
	switch method {
	case "create_rundown":
		var req CreateRundownParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		doc, err := h.rundowns.Create(ctx, tenantID, rundown.CreateRequest{
			Title:     req.Title,
			StartTime: req.StartTime,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return doc, nil
	case "list_rundowns":
		return h.rundowns.List(ctx, tenantID)
	case "get_rundown":
		var req GetRundownParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.resolvedDocument(ctx, tenantID, req.ID)
	case "delete_rundown":
		var req DeleteRundownParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.rundowns.Delete(ctx, tenantID, req.ID); err != nil {
			return nil, mapError(err)
		}
		h.showcaller.Reset(req.ID)
		return statusOK, nil
	case "add_item":
		var req AddItemParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		kind := rundown.ItemKind(req.Kind)
		if req.Kind == "" {
			kind = rundown.KindRegular
		}
		position := -1
		if req.Position != nil {
			position = *req.Position
		}
		item, err := h.rundowns.AddItem(ctx, tenantID, rundown.AddItemRequest{
			DocumentID:  req.DocumentID,
			Kind:        kind,
			Name:        req.Name,
			Talent:      req.Talent,
			Script:      req.Script,
			GraphicsRef: req.GraphicsRef,
			VideoRef:    req.VideoRef,
			Notes:       req.Notes,
			Duration:    req.Duration,
			Color:       req.Color,
			Position:    position,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return item, nil
	case "update_field":
		var req UpdateFieldParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		change, err := h.rundowns.UpdateField(ctx, tenantID, rundown.UpdateFieldRequest{
			DocumentID: req.DocumentID,
			ItemID:     req.ItemID,
			Field:      rundown.Field(req.Field),
			Value:      req.Value,
			AuthorID:   sessionID,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return FieldChangeResponse{Change: *change, Tick: change.Tick}, nil
	case "move_item":
		var req MoveItemParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.rundowns.MoveItem(ctx, tenantID, req.DocumentID, req.ItemID, req.Position); err != nil {
			return nil, mapError(err)
		}
		return statusOK, nil
	case "delete_item":
		var req DeleteItemParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.rundowns.DeleteItem(ctx, tenantID, req.DocumentID, req.ItemID); err != nil {
			return nil, mapError(err)
		}
		return statusOK, nil
	case "float_item":
		var req FloatItemParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.rundowns.SetFloated(ctx, tenantID, req.DocumentID, req.ItemID, req.Floated); err != nil {
			return nil, mapError(err)
		}
		return statusOK, nil
	case "set_start_time":
		var req SetStartTimeParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		doc, err := h.rundowns.SetStartTime(ctx, tenantID, req.DocumentID, req.StartTime)
		if err != nil {
			return nil, mapError(err)
		}
		return doc, nil
	case "lock_numbering":
		var req NumberingParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		doc, err := h.rundowns.LockNumbering(ctx, tenantID, req.DocumentID)
		if err != nil {
			return nil, mapError(err)
		}
		return numberingResponse(doc), nil
	case "unlock_numbering":
		var req NumberingParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		doc, err := h.rundowns.UnlockNumbering(ctx, tenantID, req.DocumentID)
		if err != nil {
			return nil, mapError(err)
		}
		return numberingResponse(doc), nil
	case "resolve_rundown":
		var req ResolveRundownParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.resolvedDocument(ctx, tenantID, req.DocumentID)
	case "header_duration":
		var req HeaderDurationParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		doc, err := h.rundowns.Get(ctx, tenantID, req.DocumentID)
		if err != nil {
			return nil, mapError(err)
		}
		idx := doc.ItemIndex(req.ItemID)
		if idx < 0 {
			return nil, mapError(rundown.ErrItemNotFound)
		}
		duration, err := timeline.HeaderDuration(doc, idx)
		if err != nil {
			return nil, mapError(err)
		}
		return HeaderDurationResponse{ItemID: req.ItemID, Duration: duration}, nil
	case "showcaller_play":
		var req ShowcallerParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		c := h.showcaller.Controller(req.DocumentID)
		if err := c.Play(ctx, req.SegmentID); err != nil {
			return nil, mapError(err)
		}
		return h.snapshot(ctx, req.DocumentID)
	case "showcaller_pause":
		var req ShowcallerParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		h.showcaller.Controller(req.DocumentID).Pause()
		return h.snapshot(ctx, req.DocumentID)
	case "showcaller_forward":
		var req ShowcallerParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.showcaller.Controller(req.DocumentID).Forward(ctx); err != nil {
			return nil, mapError(err)
		}
		return h.snapshot(ctx, req.DocumentID)
	case "showcaller_backward":
		var req ShowcallerParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.showcaller.Controller(req.DocumentID).Backward(ctx); err != nil {
			return nil, mapError(err)
		}
		return h.snapshot(ctx, req.DocumentID)
	case "showcaller_jump":
		var req ShowcallerParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.showcaller.Controller(req.DocumentID).Jump(ctx, req.SegmentID); err != nil {
			return nil, mapError(err)
		}
		return h.snapshot(ctx, req.DocumentID)
	case "showcaller_reset":
		var req ShowcallerParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		h.showcaller.Reset(req.DocumentID)
		return h.snapshot(ctx, req.DocumentID)
	case "showcaller_status":
		var req ShowcallerParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.snapshot(ctx, req.DocumentID)
	case "open_session":
		var req OpenSessionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		sess, err := h.sessions.Open(ctx, tenantID, session.OpenRequest{
			DocumentID: req.DocumentID,
			ClientID:   req.ClientID,
		})
		if err != nil {
			return nil, mapError(err)
		}
		return OpenSessionResponse{
			SessionID:    sess.ID,
			DocumentID:   sess.DocumentID,
			LastSyncTick: sess.LastSyncTick,
		}, nil
	case "sync_session":
		var req SessionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.syncSession(ctx, tenantID, sessionOrParam(sessionID, req.SessionID))
	case "close_session":
		var req SessionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		sid := sessionOrParam(sessionID, req.SessionID)
		if err := h.sessions.CloseSession(ctx, tenantID, sid); err != nil {
			return nil, mapError(err)
		}
		h.guards.Release(sid)
		return statusOK, nil
	case "list_sessions":
		var req ListSessionsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.listSessions(ctx, tenantID, req.DocumentID)
	case "guard_begin_edit":
		return h.guardFieldOp(ctx, tenantID, sessionID, params, func(g *guard.Service, key rundown.FieldKey, _ string) {
			g.BeginEdit(key)
		})
	case "guard_end_edit":
		return h.guardFieldOp(ctx, tenantID, sessionID, params, func(g *guard.Service, key rundown.FieldKey, _ string) {
			g.EndEdit(key)
		})
	case "guard_keystroke":
		return h.guardFieldOp(ctx, tenantID, sessionID, params, func(g *guard.Service, key rundown.FieldKey, value string) {
			g.RecordKeystroke(key, value)
		})
	case "guard_flush":
		var req GuardFlushParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		sid := sessionOrParam(sessionID, req.SessionID)
		g := h.guards.Guard(tenantID, req.DocumentID, sid)
		applied := g.Flush()
		resp := GuardFlushResponse{Applied: make([]SyncedChange, 0, len(applied))}
		for _, change := range applied {
			resp.Applied = append(resp.Applied, SyncedChange{Change: change, Decision: guard.DecisionApply})
		}
		return resp, nil
	case "guard_resolve":
		var req GuardResolveParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		sid := sessionOrParam(sessionID, req.SessionID)
		g := h.guards.Guard(tenantID, req.DocumentID, sid)
		key := rundown.FieldKey{ItemID: req.ItemID, Field: rundown.Field(req.Field)}
		value, err := g.Resolve(ctx, key, req.KeepLocal)
		if err != nil {
			return nil, mapError(err)
		}
		return GuardResolveResponse{ItemID: req.ItemID, Field: req.Field, Value: value}, nil
	default:
		return nil, &APIError{Code: "METHOD_NOT_FOUND", Message: fmt.Sprintf("unknown method %q", method)}
	}
}

func (h *Handler) resolvedDocument(ctx context.Context, tenantID, documentID string) (any, error) {
	doc, err := h.rundowns.Get(ctx, tenantID, documentID)
	if err != nil {
		return nil, mapError(err)
	}
	rows, err := timeline.Resolve(doc)
	if err != nil {
		return nil, mapError(err)
	}
	return DocumentResponse{
		Document:     *doc,
		Rows:         rows,
		TotalRuntime: timeline.TotalRuntime(doc),
	}, nil
}

func (h *Handler) snapshot(ctx context.Context, documentID string) (any, error) {
	snap, err := h.showcaller.Controller(documentID).Snapshot(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return snap, nil
}

func (h *Handler) syncSession(ctx context.Context, tenantID, sessionID string) (any, error) {
	sess, err := h.sessions.Get(ctx, tenantID, sessionID)
	if err != nil {
		return nil, mapError(err)
	}
	result, err := h.sessions.Sync(ctx, tenantID, sessionID)
	if err != nil {
		return nil, mapError(err)
	}

	g := h.guards.Guard(tenantID, sess.DocumentID, sessionID)
	changes := make([]SyncedChange, 0, len(result.Changes))
	for _, change := range result.Changes {
		changes = append(changes, SyncedChange{
			Change:   change,
			Decision: g.Offer(change),
		})
	}

	warning := ""
	if result.TickGap > 0 {
		warning = fmt.Sprintf("%d writes have occurred since last sync", result.TickGap)
	}
	return SyncSessionResponse{
		SessionID: result.SessionID,
		Tick:      result.Tick,
		TickGap:   result.TickGap,
		Changes:   changes,
		Warning:   warning,
	}, nil
}

func (h *Handler) listSessions(ctx context.Context, tenantID, documentID string) (any, error) {
	doc, err := h.rundowns.Get(ctx, tenantID, documentID)
	if err != nil {
		return nil, mapError(err)
	}
	infos, err := h.sessions.ListActive(ctx, tenantID, documentID)
	if err != nil {
		return nil, mapError(err)
	}
	resp := make([]SessionInfoResponse, 0, len(infos))
	for _, info := range infos {
		resp = append(resp, SessionInfoResponse{
			SessionID:    info.SessionID,
			ClientID:     info.ClientID,
			LastSyncTick: info.LastSyncTick,
			TickGap:      doc.Tick - info.LastSyncTick,
			LastActivity: info.LastActivity,
		})
	}
	return resp, nil
}

func (h *Handler) guardFieldOp(ctx context.Context, tenantID, sessionID string, params json.RawMessage, op func(*guard.Service, rundown.FieldKey, string)) (any, error) {
	var req GuardFieldParams
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	sid := sessionOrParam(sessionID, req.SessionID)
	g := h.guards.Guard(tenantID, req.DocumentID, sid)
	op(g, rundown.FieldKey{ItemID: req.ItemID, Field: rundown.Field(req.Field)}, req.Value)
	return statusOK, nil
}

func numberingResponse(doc *rundown.Document) NumberingResponse {
	return NumberingResponse{
		DocumentID:      doc.ID,
		NumberingLocked: doc.NumberingLocked,
		LockedNumbers:   doc.LockedNumbers,
		Tick:            doc.Tick,
	}
}

func decodeParams(params json.RawMessage, target any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, target); err != nil {
		return &APIError{Code: "INVALID_PARAMS", Message: fmt.Sprintf("invalid parameters: %v", err)}
	}
	return nil
}
