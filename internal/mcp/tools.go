package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolDefinition describes one MCP tool and its input schema.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func boolProp(description string) map[string]any {
	return map[string]any{"type": "boolean", "description": description}
}

func intProp(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

var documentIDProp = stringProp("Rundown document ID")

var guardFieldProps = map[string]any{
	"session_id":  stringProp("Editing session ID (omit when sent via Mcp-Session-Id)"),
	"document_id": documentIDProp,
	"item_id":     stringProp("Item ID"),
	"field":       stringProp("Field name (built-in or custom:<name>)"),
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Rundown documents
		{
			Name:        "create_rundown",
			Description: "Create a new rundown document",
			InputSchema: objectSchema(map[string]any{
				"title":      stringProp("Rundown title"),
				"start_time": stringProp("Show start time as HH:MM:SS (defaults to 00:00:00)"),
			}, "title"),
		},
		{
			Name:        "list_rundowns",
			Description: "List all rundowns for the current tenant",
			InputSchema: objectSchema(map[string]any{}),
		},
		{
			Name:        "get_rundown",
			Description: "Get a rundown with its computed timeline: start/end times, elapsed times, and row numbers per item",
			InputSchema: objectSchema(map[string]any{
				"id": documentIDProp,
			}, "id"),
		},
		{
			Name:        "delete_rundown",
			Description: "Delete a rundown and everything attached to it",
			InputSchema: objectSchema(map[string]any{
				"id": documentIDProp,
			}, "id"),
		},

		// Items
		{
			Name:        "add_item",
			Description: "Insert a segment or header into a rundown",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
				"kind": map[string]any{
					"type":        "string",
					"description": "Item kind",
					"enum":        []string{"regular", "header"},
				},
				"name":         stringProp("Item name"),
				"talent":       stringProp("On-air talent"),
				"script":       stringProp("Script text"),
				"graphics_ref": stringProp("Graphics reference"),
				"video_ref":    stringProp("Video reference"),
				"notes":        stringProp("Production notes"),
				"duration":     stringProp("Planned duration as HH:MM:SS or MM:SS (segments only)"),
				"color":        stringProp("Row color"),
				"position":     intProp("Insertion index (omit to append)"),
			}, "document_id"),
		},
		{
			Name:        "update_field",
			Description: "Write one field of one item; the change lands on the change feed for other sessions",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
				"item_id":     stringProp("Item ID"),
				"field":       stringProp("Field name (built-in or custom:<name>)"),
				"value":       stringProp("New value"),
			}, "document_id", "item_id", "field"),
		},
		{
			Name:        "move_item",
			Description: "Reorder an item within its rundown",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
				"item_id":     stringProp("Item ID"),
				"position":    intProp("Target index"),
			}, "document_id", "item_id", "position"),
		},
		{
			Name:        "delete_item",
			Description: "Remove an item from a rundown",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
				"item_id":     stringProp("Item ID"),
			}, "document_id", "item_id"),
		},
		{
			Name:        "float_item",
			Description: "Float or unfloat a segment; floated segments keep their duration but stop pushing the timeline",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
				"item_id":     stringProp("Item ID"),
				"floated":     boolProp("True to float, false to restore"),
			}, "document_id", "item_id", "floated"),
		},
		{
			Name:        "set_start_time",
			Description: "Change the show start time; all computed item times shift with it",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
				"start_time":  stringProp("New start time as HH:MM:SS"),
			}, "document_id", "start_time"),
		},

		// Numbering
		{
			Name:        "lock_numbering",
			Description: "Lock row numbers; rows added later get decimal numbers under the preceding locked row",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
			}, "document_id"),
		},
		{
			Name:        "unlock_numbering",
			Description: "Unlock row numbers and return to plain sequential numbering",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
			}, "document_id"),
		},

		// Timeline
		{
			Name:        "resolve_rundown",
			Description: "Compute the full timeline projection without the document metadata round-trip",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
			}, "document_id"),
		},
		{
			Name:        "header_duration",
			Description: "Sum the timed segments under a header, up to the next header",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
				"item_id":     stringProp("Header item ID"),
			}, "document_id", "item_id"),
		},

		// Showcaller
		{
			Name:        "showcaller_play",
			Description: "Start or resume live playback; pass segment_id to start a specific segment",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
				"segment_id":  stringProp("Segment to play (omit to resume)"),
			}, "document_id"),
		},
		{
			Name:        "showcaller_pause",
			Description: "Pause playback, keeping the remaining time",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
			}, "document_id"),
		},
		{
			Name:        "showcaller_forward",
			Description: "Advance to the next playable segment",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
			}, "document_id"),
		},
		{
			Name:        "showcaller_backward",
			Description: "Step back to the previous playable segment",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
			}, "document_id"),
		},
		{
			Name:        "showcaller_jump",
			Description: "Jump the showcaller to a segment; playback state is preserved",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
				"segment_id":  stringProp("Target segment ID"),
			}, "document_id", "segment_id"),
		},
		{
			Name:        "showcaller_reset",
			Description: "Stop playback and clear showcaller state",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
			}, "document_id"),
		},
		{
			Name:        "showcaller_status",
			Description: "Current showcaller snapshot: segment, remaining time, and schedule adherence",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
			}, "document_id"),
		},

		// Sessions
		{
			Name:        "open_session",
			Description: "Open an editing session on a rundown, synced to its current tick",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
				"client_id":   stringProp("Client identifier"),
			}, "document_id", "client_id"),
		},
		{
			Name:        "sync_session",
			Description: "Fetch remote changes since the last sync; each change carries the guard's apply/defer/drop/conflict decision",
			InputSchema: objectSchema(map[string]any{
				"session_id": stringProp("Editing session ID (omit when sent via Mcp-Session-Id)"),
			}),
		},
		{
			Name:        "close_session",
			Description: "Close an editing session and release its guard",
			InputSchema: objectSchema(map[string]any{
				"session_id": stringProp("Editing session ID (omit when sent via Mcp-Session-Id)"),
			}),
		},
		{
			Name:        "list_sessions",
			Description: "List active editing sessions on a rundown with their sync lag",
			InputSchema: objectSchema(map[string]any{
				"document_id": documentIDProp,
			}, "document_id"),
		},

		// Concurrency guard
		{
			Name:        "guard_begin_edit",
			Description: "Mark a field as actively edited; remote changes to it are deferred",
			InputSchema: objectSchema(guardFieldProps, "document_id", "item_id", "field"),
		},
		{
			Name:        "guard_end_edit",
			Description: "Mark a field blurred; protection decays after the grace interval",
			InputSchema: objectSchema(guardFieldProps, "document_id", "item_id", "field"),
		},
		{
			Name:        "guard_keystroke",
			Description: "Record a local keystroke on a field, refreshing its protection window",
			InputSchema: objectSchema(map[string]any{
				"session_id":  stringProp("Editing session ID (omit when sent via Mcp-Session-Id)"),
				"document_id": documentIDProp,
				"item_id":     stringProp("Item ID"),
				"field":       stringProp("Field name"),
				"value":       stringProp("Current local value"),
			}, "document_id", "item_id", "field"),
		},
		{
			Name:        "guard_flush",
			Description: "Re-offer deferred remote changes whose protection has expired",
			InputSchema: objectSchema(map[string]any{
				"session_id":  stringProp("Editing session ID (omit when sent via Mcp-Session-Id)"),
				"document_id": documentIDProp,
			}, "document_id"),
		},
		{
			Name:        "guard_resolve",
			Description: "Resolve a field conflict: keep the local value (rebroadcast) or accept the remote one",
			InputSchema: objectSchema(map[string]any{
				"session_id":  stringProp("Editing session ID (omit when sent via Mcp-Session-Id)"),
				"document_id": documentIDProp,
				"item_id":     stringProp("Item ID"),
				"field":       stringProp("Field name"),
				"keep_local":  boolProp("True to keep the local value"),
			}, "document_id", "item_id", "field"),
		},
	}
}

// compileSchema turns a catalog schema map into the SDK's schema type.
func compileSchema(m map[string]any) *jsonschema.Schema {
	data, err := json.Marshal(m)
	if err != nil {
		panic(fmt.Sprintf("marshaling tool schema: %v", err))
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		panic(fmt.Sprintf("compiling tool schema: %v", err))
	}
	return &schema
}

// registerTools registers the catalog against the SDK server, routing every
// call through the dispatch handler.
func registerTools(server *sdkmcp.Server, h *Handler) {
	for _, def := range buildToolCatalog() {
		def := def
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: compileSchema(def.InputSchema),
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil && req.Params.Arguments != nil {
				data, err := json.Marshal(req.Params.Arguments)
				if err != nil {
					return toolError(&APIError{Code: "INVALID_PARAMS", Message: err.Error()}), nil
				}
				args = data
			}

			result, err := h.Handle(ctx, getTenantID(ctx), getSessionID(ctx), def.Name, args)
			if err != nil {
				return toolError(err), nil
			}

			payload, err := json.Marshal(result)
			if err != nil {
				return toolError(&APIError{Code: "INTERNAL", Message: err.Error()}), nil
			}
			return &sdkmcp.CallToolResult{
				Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(payload)}},
			}, nil
		})
	}
}

func toolError(err error) *sdkmcp.CallToolResult {
	payload := err.Error()
	if apiErr, ok := err.(*APIError); ok {
		if data, merr := json.Marshal(apiErr); merr == nil {
			payload = string(data)
		}
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: payload}},
	}
}
