package guard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
)

// FieldWriter delivers a field value to the transport layer. Writes are
// expected to be idempotent.
type FieldWriter interface {
	WriteField(ctx context.Context, key rundown.FieldKey, value string) error
}

// FieldWriterFunc adapts a function to the FieldWriter interface.
type FieldWriterFunc func(ctx context.Context, key rundown.FieldKey, value string) error

func (f FieldWriterFunc) WriteField(ctx context.Context, key rundown.FieldKey, value string) error {
	return f(ctx, key, value)
}

// Callbacks notify the owning session of guard events.
type Callbacks struct {
	// OnConflict fires once per divergence.
	OnConflict func(Conflict)
	// OnRevert fires when a failed resolution forces the field back to
	// the remote value.
	OnRevert func(key rundown.FieldKey, value string)
}

// Options configures a guard Service.
type Options struct {
	// ProtectionWindow is how long after a keystroke the field stays
	// protected from remote overwrites. Defaults to three seconds.
	ProtectionWindow time.Duration
	// GraceInterval extends protection past blur so a quick refocus
	// doesn't lose the buffered edit. Defaults to two seconds.
	GraceInterval time.Duration
	// AmbiguityWindow is the timestamp spread within which neither side
	// is clearly older and a divergence becomes a conflict. Defaults to
	// two seconds.
	AmbiguityWindow time.Duration
	// MaxTrackedFields bounds the recent-edits map. Defaults to 64.
	MaxTrackedFields int
	// Clock overrides the wall clock for tests.
	Clock func() time.Time
}

// Service is the field-granularity concurrency guard for one editing
// session. It tracks which fields are under active local edit, buffers
// the latest locally typed value per field, gates remote updates, and
// surfaces conflicts for explicit resolution. It is local state, never
// shared between clients.
type Service struct {
	writer    FieldWriter
	callbacks Callbacks
	logger    *slog.Logger
	opts      Options

	mu        sync.Mutex
	active    *rundown.FieldKey
	recent    map[rundown.FieldKey]localEdit
	blurredAt map[rundown.FieldKey]time.Time
	deferred  map[rundown.FieldKey]rundown.FieldChange
	conflicts map[rundown.FieldKey]Conflict
}

// NewService creates a guard for one editing session.
func NewService(writer FieldWriter, callbacks Callbacks, opts Options, logger *slog.Logger) *Service {
	if opts.ProtectionWindow <= 0 {
		opts.ProtectionWindow = 3 * time.Second
	}
	if opts.GraceInterval <= 0 {
		opts.GraceInterval = 2 * time.Second
	}
	if opts.AmbiguityWindow <= 0 {
		opts.AmbiguityWindow = 2 * time.Second
	}
	if opts.MaxTrackedFields <= 0 {
		opts.MaxTrackedFields = 64
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		writer:    writer,
		callbacks: callbacks,
		logger:    logger,
		opts:      opts,
		recent:    make(map[rundown.FieldKey]localEdit),
		blurredAt: make(map[rundown.FieldKey]time.Time),
		deferred:  make(map[rundown.FieldKey]rundown.FieldChange),
		conflicts: make(map[rundown.FieldKey]Conflict),
	}
}

// BeginEdit marks a field as under direct user focus. Only one field is
// active at a time.
func (s *Service) BeginEdit(key rundown.FieldKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = &key
	delete(s.blurredAt, key)
}

// EndEdit releases focus. The field keeps a grace interval of protection
// so a rapid refocus doesn't drop the buffered edit.
func (s *Service) EndEdit(key rundown.FieldKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil && *s.active == key {
		s.active = nil
	}
	s.blurredAt[key] = s.opts.Clock()
}

// RecordKeystroke buffers the latest locally typed value for a field.
func (s *Service) RecordKeystroke(key rundown.FieldKey, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent[key] = localEdit{value: value, at: s.opts.Clock()}
	s.evictLocked()
}

// ShouldApplyRemote reports whether a remote update with the given
// timestamp may overwrite the field right now.
func (s *Service) ShouldApplyRemote(key rundown.FieldKey, remoteTS time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.gatedLocked(key, remoteTS)
}

// Offer evaluates one incoming remote change. DecisionApply means the
// caller should write the remote value into local state; any other
// decision means it must not.
func (s *Service) Offer(change rundown.FieldChange) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rundown.FieldKey{ItemID: change.ItemID, Field: change.Field}

	if s.gatedLocked(key, change.ModifiedAt) {
		// Queue only the newest remote change per field.
		if pending, ok := s.deferred[key]; !ok || change.ModifiedAt.After(pending.ModifiedAt) {
			s.deferred[key] = change
		}
		return DecisionDefer
	}
	return s.decideLocked(key, change)
}

// Flush re-offers deferred changes whose fields have left protection.
// It returns the changes the caller should now apply to local state.
func (s *Service) Flush() []rundown.FieldChange {
	s.mu.Lock()
	defer s.mu.Unlock()

	var apply []rundown.FieldChange
	for key, change := range s.deferred {
		if s.gatedLocked(key, change.ModifiedAt) {
			continue
		}
		delete(s.deferred, key)
		if s.decideLocked(key, change) == DecisionApply {
			apply = append(apply, change)
		}
	}
	return apply
}

// Conflict returns the pending conflict for a field, if any.
func (s *Service) Conflict(key rundown.FieldKey) (Conflict, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conflicts[key]
	return c, ok
}

// Resolve settles a pending conflict. keep=true re-broadcasts the local
// value; keep=false accepts the remote value and discards the buffered
// local edit. The returned value is what the field must now show.
//
// If the transport rejects a keep-mine write, the field reverts to the
// remote value and OnRevert is notified; the conflict is never silently
// dropped.
func (s *Service) Resolve(ctx context.Context, key rundown.FieldKey, keep bool) (string, error) {
	s.mu.Lock()
	conflict, ok := s.conflicts[key]
	if !ok {
		s.mu.Unlock()
		return "", ErrNoConflict
	}
	delete(s.conflicts, key)
	delete(s.deferred, key)
	delete(s.recent, key)
	s.mu.Unlock()

	if !keep {
		return conflict.RemoteValue, nil
	}

	if err := s.writer.WriteField(ctx, key, conflict.LocalValue); err != nil {
		s.logger.Warn("keep-mine write rejected, reverting to remote value",
			"item", key.ItemID, "field", key.Field, "error", err)
		if s.callbacks.OnRevert != nil {
			s.callbacks.OnRevert(key, conflict.RemoteValue)
		}
		return conflict.RemoteValue, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	return conflict.LocalValue, nil
}

// gatedLocked reports whether the field is protected against a remote
// update with the given timestamp. Callers hold s.mu.
func (s *Service) gatedLocked(key rundown.FieldKey, remoteTS time.Time) bool {
	if s.active != nil && *s.active == key {
		return true
	}
	now := s.opts.Clock()
	if blurred, ok := s.blurredAt[key]; ok && now.Sub(blurred) < s.opts.GraceInterval {
		return true
	}
	if edit, ok := s.recent[key]; ok {
		if now.Sub(edit.at) < s.opts.ProtectionWindow && edit.at.After(remoteTS) {
			return true
		}
	}
	return false
}

// decideLocked settles an ungated change: newest timestamp wins, and a
// material divergence with no clear winner raises a conflict exactly
// once. Callers hold s.mu.
func (s *Service) decideLocked(key rundown.FieldKey, change rundown.FieldChange) Decision {
	edit, ok := s.recent[key]
	if !ok || edit.value == change.Value {
		delete(s.recent, key)
		return DecisionApply
	}

	drift := edit.at.Sub(change.ModifiedAt)
	if drift < 0 {
		drift = -drift
	}
	if drift < s.opts.AmbiguityWindow {
		conflict := Conflict{
			Key:              key,
			LocalValue:       edit.value,
			RemoteValue:      change.Value,
			RemoteModifiedAt: change.ModifiedAt,
		}
		if pending, dup := s.conflicts[key]; dup &&
			pending.LocalValue == conflict.LocalValue &&
			pending.RemoteValue == conflict.RemoteValue {
			return DecisionConflict
		}
		s.conflicts[key] = conflict
		if s.callbacks.OnConflict != nil {
			s.callbacks.OnConflict(conflict)
		}
		return DecisionConflict
	}

	if edit.at.After(change.ModifiedAt) {
		// Last local keystroke wins over any older remote update.
		return DecisionDrop
	}
	delete(s.recent, key)
	return DecisionApply
}

// evictLocked drops the oldest buffered edits once the map outgrows its
// bound. Callers hold s.mu.
func (s *Service) evictLocked() {
	for len(s.recent) > s.opts.MaxTrackedFields {
		var oldest rundown.FieldKey
		var oldestAt time.Time
		first := true
		for key, edit := range s.recent {
			if s.active != nil && *s.active == key {
				continue
			}
			if first || edit.at.Before(oldestAt) {
				oldest, oldestAt, first = key, edit.at, false
			}
		}
		if first {
			return
		}
		delete(s.recent, oldest)
	}
}
