package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `cuer-live is a collaborative rundown engine: timeline math, row numbering, live showcaller control, and conflict-guarded multi-client editing.

Core concepts:
- Rundown: an ordered list of items anchored to a show start time, with a monotonic tick (logical clock). "Stale" means tick gap, not wall time.
- Item: a timed segment or a section header. Headers never carry a duration; floated segments keep theirs but stop pushing the timeline.
- Row numbers: sequential while unlocked; after lock_numbering, existing rows keep their numbers and insertions get decimal numbers (3.1, 3.1.1).
- Showcaller: live playback cursor with a per-second countdown and on-time/ahead/behind schedule status.
- Session: one client's connection; sync_session delivers field changes made by others since your last sync.
- Guard: protects fields you are actively typing in from being clobbered by remote changes; divergent edits surface as conflicts.

Rules of engagement:
1) Orient: list_rundowns, then get_rundown for the full computed timeline.
2) Edit: add_item / update_field / move_item / delete_item / float_item. Every write bumps the rundown tick.
3) Collaborate: open_session before editing alongside others; call sync_session regularly and honor each change's guard decision.
4) Type safely: bracket text editing with guard_begin_edit / guard_end_edit and report keystrokes; call guard_flush after fields go idle.
5) Conflicts: a "conflict" decision means both sides changed the same field near-simultaneously. Resolve explicitly with guard_resolve.
6) Going live: showcaller_play starts the countdown; forward/backward skip headers and floats; showcaller_status reports schedule adherence.

Transport notes:
- HTTP: pass session id via Mcp-Session-Id header.
- Stdio: pass session id via _meta.session_id when supported; otherwise tools accept session_id arguments.

Docs (progressive disclosure):
- cuer://docs/index (what to read when)
- cuer://docs/concepts (glossary + invariants)
- cuer://docs/workflows/numbering
- cuer://docs/workflows/collaboration
- cuer://docs/workflows/showcaller
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "cuer://docs/index",
		Name:        "docs_index",
		Title:       "cuer-live docs index",
		Description: "Entry point for agent-facing docs: what exists and what to read.",
		Content: `# cuer-live: Docs Index

Load deeper docs only when needed.

## Quick start

1. list_rundowns, get_rundown — orient.
2. add_item / update_field — edit. Durations are HH:MM:SS or MM:SS.
3. open_session + sync_session — collaborate.
4. showcaller_play / showcaller_status — go live.

## Deeper docs

- concepts: glossary and invariants (ticks, floats, headers).
- workflows/numbering: locked vs sequential row numbers.
- workflows/collaboration: sessions, the guard, and conflicts.
- workflows/showcaller: playback and schedule adherence.
`,
	},
	{
		URI:         "cuer://docs/concepts",
		Name:        "docs_concepts",
		Title:       "Concepts and invariants",
		Description: "Glossary of rundown concepts and the invariants the engine enforces.",
		Content: `# Concepts

- Tick: per-rundown monotonic counter. Every mutation increments it. Sync positions are ticks, never timestamps.
- Timed item: a regular, non-floated segment. Only timed items advance start times and elapsed time.
- Floated segment: excluded from the timeline but kept in the list with its duration visible.
- Header: a section marker. It occupies an instant on the timeline and reports the summed duration of the segments below it, up to the next header.
- Elapsed time: cumulative show time, not wall clock. It keeps counting past 24h (25:00:00 is valid).
- Start/end times: wall clock, wrapped at midnight.

# Invariants

- Malformed time strings are treated as zero, never as errors.
- Headers reject duration writes.
- Row numbering depth never exceeds three levels; deeper insertions are rejected with a remediation hint.
- A stale tick write returns CONFLICT; re-read and retry.
`,
	},
	{
		URI:         "cuer://docs/workflows/numbering",
		Name:        "docs_workflow_numbering",
		Title:       "Workflow: row numbering",
		Description: "How sequential and locked numbering behave.",
		Content: `# Workflow: row numbering

Unlocked: rows are numbered 1..n top to bottom. Headers and floated rows
are unnumbered. Any edit renumbers everything.

lock_numbering freezes the current numbers. From then on:

- Existing rows keep their numbers even when neighbours are deleted.
- A row inserted after locked row 3 becomes 3.1; the next one 3.2.
- Rows inserted before the first locked row get 0.1, 0.2.
- Locking again freezes decimal numbers too, so later insertions go a
  level deeper (3.1.1). Three levels is the limit.

unlock_numbering returns to plain sequential numbering. If the structure
has drifted too deep, unlock, reorganize, and lock again.
`,
	},
	{
		URI:         "cuer://docs/workflows/collaboration",
		Name:        "docs_workflow_collaboration",
		Title:       "Workflow: sessions and the guard",
		Description: "How to edit alongside other clients without losing keystrokes.",
		Content: `# Workflow: collaboration

1. open_session with your client id. The session records the rundown tick
   you loaded at.
2. Call sync_session on a cadence. Each returned change carries a decision:
   - apply: write it to your view.
   - defer: you are typing in that field; it is queued. Call guard_flush
     once the field goes idle to collect it.
   - drop: your local edit is newer; the remote value is discarded.
   - conflict: both sides changed the field near-simultaneously.
3. While typing, call guard_begin_edit / guard_keystroke / guard_end_edit
   so the engine knows which fields to protect.
4. On conflict, ask the user (or decide) and call guard_resolve:
   keep_local=true rebroadcasts your value; false accepts the remote one.
5. close_session when done.

A large tick_gap warning means you synced too rarely; sync before any
significant edit.
`,
	},
	{
		URI:         "cuer://docs/workflows/showcaller",
		Name:        "docs_workflow_showcaller",
		Title:       "Workflow: showcaller",
		Description: "Live playback control and schedule adherence.",
		Content: `# Workflow: showcaller

- showcaller_play with a segment_id starts that segment's countdown;
  without one it resumes after a pause.
- The countdown may go negative on overrun; nothing auto-advances. Use
  showcaller_forward when the broadcast actually moves on.
- forward/backward skip headers and floated segments.
- showcaller_jump repositions without starting playback (unless already
  playing).
- showcaller_status reports the current segment, remaining seconds, and
  schedule adherence: on_time within tolerance, otherwise ahead or behind
  with the offset as HH:MM:SS.
- showcaller_reset clears all playback state.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
