package guard

import (
	"time"

	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
)

// Decision is the outcome of offering a remote change to the guard.
type Decision string

const (
	// DecisionApply means the remote value may overwrite the local field.
	DecisionApply Decision = "apply"
	// DecisionDefer means the field is under local protection; the change
	// is queued and re-offered once the field goes idle.
	DecisionDefer Decision = "defer"
	// DecisionDrop means a newer local edit supersedes the remote change.
	DecisionDrop Decision = "drop"
	// DecisionConflict means local and remote diverge with no clear
	// winner; a Conflict has been surfaced for the user to resolve.
	DecisionConflict Decision = "conflict"
)

// Conflict is a divergence needing an explicit user decision. No text
// merge is ever attempted.
type Conflict struct {
	Key              rundown.FieldKey `json:"key"`
	LocalValue       string           `json:"local_value"`
	RemoteValue      string           `json:"remote_value"`
	RemoteModifiedAt time.Time        `json:"remote_modified_at"`
}

// localEdit buffers the most recent locally typed value for a field.
type localEdit struct {
	value string
	at    time.Time
}
