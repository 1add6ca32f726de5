package showcaller_test

import (
	"context"
	"testing"
	"time"

	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
	"github.com/morgantremaine/cuer-live/internal/domain/showcaller"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	doc *rundown.Document
}

func (s *staticSource) Document(context.Context) (*rundown.Document, error) {
	return s.doc, nil
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func liveDoc() *rundown.Document {
	return &rundown.Document{
		ID:        "doc1",
		StartTime: "09:00:00",
		Items: []rundown.Item{
			{ID: "h", Kind: rundown.KindHeader, Name: "A Block"},
			{ID: "a", Kind: rundown.KindRegular, Duration: "00:05:00"},
			{ID: "f", Kind: rundown.KindRegular, Duration: "00:03:00", Floated: true},
			{ID: "b", Kind: rundown.KindRegular, Duration: "00:10:00"},
			{ID: "c", Kind: rundown.KindRegular, Duration: "00:01:00"},
		},
	}
}

func newController(doc *rundown.Document, clock *fakeClock) *showcaller.Controller {
	return showcaller.NewController(&staticSource{doc: doc}, showcaller.Options{
		TickInterval: time.Hour, // loop ticker is irrelevant; tests call Tick directly
		Clock:        clock.Now,
	}, nil)
}

func at(t *testing.T, clockStr string) *fakeClock {
	t.Helper()
	parsed, err := time.Parse("15:04:05", clockStr)
	require.NoError(t, err)
	return &fakeClock{now: parsed}
}

func TestPlayStartsCountdownAtSegmentDuration(t *testing.T) {
	ctx := context.Background()
	clock := at(t, "09:00:00")
	c := newController(liveDoc(), clock)
	defer c.Close()

	require.NoError(t, c.Play(ctx, "a"))

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.True(t, snap.IsPlaying)
	require.Equal(t, "a", snap.CurrentSegmentID)
	require.Equal(t, 300, snap.TimeRemainingSeconds)
}

func TestPlayWithoutSegmentResumes(t *testing.T) {
	ctx := context.Background()
	clock := at(t, "09:00:00")
	c := newController(liveDoc(), clock)
	defer c.Close()

	require.NoError(t, c.Play(ctx, "a"))
	clock.Advance(30 * time.Second)
	c.Tick()
	c.Pause()

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.False(t, snap.IsPlaying)
	require.Equal(t, 270, snap.TimeRemainingSeconds)

	// Resume keeps the remaining time.
	require.NoError(t, c.Play(ctx, ""))
	snap, err = c.Snapshot(ctx)
	require.NoError(t, err)
	require.True(t, snap.IsPlaying)
	require.Equal(t, 270, snap.TimeRemainingSeconds)
}

func TestPlayRejectsHeadersAndFloated(t *testing.T) {
	ctx := context.Background()
	c := newController(liveDoc(), at(t, "09:00:00"))
	defer c.Close()

	require.ErrorIs(t, c.Play(ctx, "h"), showcaller.ErrNotPlayable)
	require.ErrorIs(t, c.Play(ctx, "f"), showcaller.ErrNotPlayable)
	require.ErrorIs(t, c.Play(ctx, "nope"), showcaller.ErrSegmentNotFound)
}

func TestTickDoesNotAutoAdvance(t *testing.T) {
	ctx := context.Background()
	clock := at(t, "09:00:00")
	c := newController(liveDoc(), clock)
	defer c.Close()

	require.NoError(t, c.Play(ctx, "c"))
	clock.Advance(90 * time.Second)
	c.Tick()

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	// Past zero the countdown shows the overrun; the operator advances.
	require.Equal(t, "c", snap.CurrentSegmentID)
	require.Equal(t, -30, snap.TimeRemainingSeconds)
}

func TestForwardSkipsFloatedAndHeaders(t *testing.T) {
	ctx := context.Background()
	c := newController(liveDoc(), at(t, "09:00:00"))
	defer c.Close()

	require.NoError(t, c.Play(ctx, "a"))
	require.NoError(t, c.Forward(ctx))

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, "b", snap.CurrentSegmentID)
	require.Equal(t, 600, snap.TimeRemainingSeconds)
	require.True(t, snap.IsPlaying)

	// At the last segment, forward stays put.
	require.NoError(t, c.Forward(ctx))
	require.NoError(t, c.Forward(ctx))
	snap, err = c.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, "c", snap.CurrentSegmentID)
}

func TestBackward(t *testing.T) {
	ctx := context.Background()
	c := newController(liveDoc(), at(t, "09:00:00"))
	defer c.Close()

	require.NoError(t, c.Play(ctx, "b"))
	require.NoError(t, c.Backward(ctx))

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", snap.CurrentSegmentID)

	// At the first segment, backward stays put.
	require.NoError(t, c.Backward(ctx))
	snap, err = c.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", snap.CurrentSegmentID)
}

func TestJumpWhilePausedDoesNotGoLive(t *testing.T) {
	ctx := context.Background()
	c := newController(liveDoc(), at(t, "09:00:00"))
	defer c.Close()

	require.NoError(t, c.Jump(ctx, "b"))

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.False(t, snap.IsPlaying)
	require.Equal(t, "b", snap.CurrentSegmentID)
	require.Equal(t, 600, snap.TimeRemainingSeconds)
}

func TestJumpWhilePlayingContinues(t *testing.T) {
	ctx := context.Background()
	c := newController(liveDoc(), at(t, "09:00:00"))
	defer c.Close()

	require.NoError(t, c.Play(ctx, "a"))
	require.NoError(t, c.Jump(ctx, "c"))

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.True(t, snap.IsPlaying)
	require.Equal(t, "c", snap.CurrentSegmentID)
	require.Equal(t, 60, snap.TimeRemainingSeconds)
}

func TestScheduleBehind(t *testing.T) {
	ctx := context.Background()
	clock := at(t, "09:00:00")
	c := newController(liveDoc(), clock)
	defer c.Close()

	// Still on the first segment at 16:34: seven and a half hours over.
	require.NoError(t, c.Play(ctx, "a"))
	clock.now = mustClock(t, "16:34:00")

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, showcaller.Behind, snap.Schedule.Adherence)
	require.Equal(t, "07:34:00", snap.Schedule.Offset)
}

func TestScheduleAhead(t *testing.T) {
	ctx := context.Background()
	clock := at(t, "09:00:00")
	c := newController(liveDoc(), clock)
	defer c.Close()

	// Pointer on "b" (planned 09:05:00) while the clock reads 09:01:00.
	require.NoError(t, c.Play(ctx, "b"))
	clock.now = mustClock(t, "09:01:00")

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, showcaller.Ahead, snap.Schedule.Adherence)
	require.Equal(t, "00:04:00", snap.Schedule.Offset)
}

func TestScheduleOnTimeWithinTolerance(t *testing.T) {
	ctx := context.Background()
	clock := at(t, "09:05:02")
	c := newController(liveDoc(), clock)
	defer c.Close()

	require.NoError(t, c.Play(ctx, "b"))

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, showcaller.OnTime, snap.Schedule.Adherence)
	require.Equal(t, "00:00:02", snap.Schedule.Offset)
}

func TestResetClearsPlayback(t *testing.T) {
	ctx := context.Background()
	c := newController(liveDoc(), at(t, "09:00:00"))
	defer c.Close()

	require.NoError(t, c.Play(ctx, "a"))
	c.Reset()

	snap, err := c.Snapshot(ctx)
	require.NoError(t, err)
	require.False(t, snap.IsPlaying)
	require.Empty(t, snap.CurrentSegmentID)
	require.Zero(t, snap.TimeRemainingSeconds)
}

func TestManagerReusesControllers(t *testing.T) {
	doc := liveDoc()
	m := showcaller.NewManager(func(string) showcaller.DocumentSource {
		return &staticSource{doc: doc}
	}, showcaller.Options{TickInterval: time.Hour}, nil)
	defer m.Close()

	require.Same(t, m.Controller("doc1"), m.Controller("doc1"))
	require.NotSame(t, m.Controller("doc1"), m.Controller("doc2"))
}

func mustClock(t *testing.T, clockStr string) time.Time {
	t.Helper()
	parsed, err := time.Parse("15:04:05", clockStr)
	require.NoError(t, err)
	return parsed
}
