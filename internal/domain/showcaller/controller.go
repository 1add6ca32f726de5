package showcaller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/morgantremaine/cuer-live/internal/domain/rundown"
	"github.com/morgantremaine/cuer-live/internal/domain/timeline"
)

// DocumentSource supplies the current rundown to the controller.
type DocumentSource interface {
	Document(ctx context.Context) (*rundown.Document, error)
}

// DocumentSourceFunc adapts a function to the DocumentSource interface.
type DocumentSourceFunc func(ctx context.Context) (*rundown.Document, error)

func (f DocumentSourceFunc) Document(ctx context.Context) (*rundown.Document, error) {
	return f(ctx)
}

// Options configures a Controller.
type Options struct {
	// TickInterval is the countdown resolution. Defaults to one second.
	TickInterval time.Duration
	// Tolerance is how far actual time may drift from the planned
	// schedule before the status leaves onTime. Defaults to five seconds.
	Tolerance time.Duration
	// Clock overrides the wall clock for tests.
	Clock func() time.Time
}

// Controller is the live playback state machine for one rundown. It owns
// the countdown ticker: started on Play, stopped on Pause and Close, so
// no timer outlives the playback it drives.
type Controller struct {
	source    DocumentSource
	logger    *slog.Logger
	interval  time.Duration
	tolerance int
	clock     func() time.Time

	mu        sync.Mutex
	current   string
	playing   bool
	remaining int
	lastTick  time.Time
	stop      chan struct{}
	loopDone  sync.WaitGroup
}

// NewController creates a paused controller over a rundown source.
func NewController(source DocumentSource, opts Options, logger *slog.Logger) *Controller {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = 5 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		source:    source,
		logger:    logger,
		interval:  opts.TickInterval,
		tolerance: int(opts.Tolerance / time.Second),
		clock:     opts.Clock,
	}
}

// Play starts or resumes playback. A non-empty segmentID moves the
// pointer there and resets the countdown to that segment's duration; an
// empty one resumes from the current segment and remaining time.
func (c *Controller) Play(ctx context.Context, segmentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.source.Document(ctx)
	if err != nil {
		return fmt.Errorf("loading rundown: %w", err)
	}

	if segmentID != "" {
		if err := c.pointTo(doc, segmentID); err != nil {
			return err
		}
	} else if c.current == "" {
		first := firstTimed(doc)
		if first == "" {
			return ErrNoSegments
		}
		if err := c.pointTo(doc, first); err != nil {
			return err
		}
	}

	if !c.playing {
		c.playing = true
		c.lastTick = c.clock()
		c.startLoop()
		c.logger.Info("showcaller playing", "segment", c.current)
	}
	return nil
}

// Pause freezes the countdown and stops the ticker.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		return
	}
	c.playing = false
	c.stopLoop()
	c.logger.Info("showcaller paused", "segment", c.current, "remaining", c.remaining)
}

// Forward moves the pointer to the next timed segment, resetting the
// countdown. Playing state is preserved. At the end of the rundown the
// pointer stays put.
func (c *Controller) Forward(ctx context.Context) error {
	return c.step(ctx, +1)
}

// Backward moves the pointer to the previous timed segment.
func (c *Controller) Backward(ctx context.Context) error {
	return c.step(ctx, -1)
}

// Jump moves the pointer to a specific segment. While playing it behaves
// like Play: jump and keep running. While paused it only pre-positions
// the pointer, so an operator lining up the next segment never goes live
// by accident.
func (c *Controller) Jump(ctx context.Context, segmentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.source.Document(ctx)
	if err != nil {
		return fmt.Errorf("loading rundown: %w", err)
	}
	return c.pointTo(doc, segmentID)
}

// Reset clears playback state. Called when the rundown changes shape
// underneath the pointer.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = false
	c.current = ""
	c.remaining = 0
	c.stopLoop()
}

// Close stops the ticker and waits for the loop to exit.
func (c *Controller) Close() {
	c.mu.Lock()
	c.playing = false
	c.stopLoop()
	c.mu.Unlock()
	c.loopDone.Wait()
}

// Snapshot reports current playback state and schedule adherence.
func (c *Controller) Snapshot(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		CurrentSegmentID:     c.current,
		IsPlaying:            c.playing,
		TimeRemainingSeconds: c.remaining,
		Schedule:             ScheduleStatus{Adherence: OnTime, Offset: "00:00:00"},
	}

	if c.current == "" {
		return snap, nil
	}

	doc, err := c.source.Document(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading rundown: %w", err)
	}
	snap.Schedule = c.schedule(doc)
	return snap, nil
}

// Tick advances the countdown by the real time elapsed since the last
// tick. It is called by the ticker loop and directly by tests.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		return
	}
	now := c.clock()
	elapsed := int(now.Sub(c.lastTick) / time.Second)
	if elapsed <= 0 {
		return
	}
	// Consume whole seconds only; the fraction carries into the next tick.
	c.remaining -= elapsed
	c.lastTick = c.lastTick.Add(time.Duration(elapsed) * time.Second)
}

func (c *Controller) step(ctx context.Context, dir int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.source.Document(ctx)
	if err != nil {
		return fmt.Errorf("loading rundown: %w", err)
	}

	idx := doc.ItemIndex(c.current)
	for i := idx + dir; i >= 0 && i < len(doc.Items); i += dir {
		if doc.Items[i].Timed() {
			return c.pointTo(doc, doc.Items[i].ID)
		}
	}
	// No timed segment in that direction: the pointer stays.
	return nil
}

// pointTo moves the pointer and freshly resets the countdown. Callers
// hold c.mu.
func (c *Controller) pointTo(doc *rundown.Document, segmentID string) error {
	it := doc.Item(segmentID)
	if it == nil {
		return fmt.Errorf("%w: %s", ErrSegmentNotFound, segmentID)
	}
	if !it.Timed() {
		return fmt.Errorf("%w: %s", ErrNotPlayable, segmentID)
	}
	c.current = segmentID
	c.remaining = timeline.ToSeconds(it.Duration)
	c.lastTick = c.clock()
	return nil
}

// schedule compares the actual wall clock against the planned wall-clock
// position of the current segment (document start plus planned cumulative
// duration before it). Running past the planned position is behind;
// running early is ahead. Callers hold c.mu.
func (c *Controller) schedule(doc *rundown.Document) ScheduleStatus {
	planned, err := timeline.PlannedElapsed(doc, c.current)
	if err != nil {
		c.logger.Warn("current segment missing from rundown", "segment", c.current)
		return ScheduleStatus{Adherence: OnTime, Offset: "00:00:00"}
	}

	plannedClock := timeline.ToSeconds(doc.StartTime) + planned
	actualClock := timeline.ToSeconds(c.clock().Format("15:04:05"))

	delta := actualClock - plannedClock
	status := ScheduleStatus{Adherence: OnTime}
	switch {
	case delta > c.tolerance:
		status.Adherence = Behind
	case delta < -c.tolerance:
		status.Adherence = Ahead
	}
	if delta < 0 {
		delta = -delta
	}
	status.Offset = timeline.FromSecondsNoWrap(delta)
	return status
}

func (c *Controller) startLoop() {
	stop := make(chan struct{})
	c.stop = stop
	c.loopDone.Add(1)
	go func() {
		defer c.loopDone.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.Tick()
			}
		}
	}()
}

func (c *Controller) stopLoop() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func firstTimed(doc *rundown.Document) string {
	for i := range doc.Items {
		if doc.Items[i].Timed() {
			return doc.Items[i].ID
		}
	}
	return ""
}
