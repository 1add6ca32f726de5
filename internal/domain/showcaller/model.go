package showcaller

// Adherence classifies actual show progress against the planned schedule.
type Adherence string

const (
	OnTime Adherence = "onTime"
	Ahead  Adherence = "ahead"
	Behind Adherence = "behind"
)

// ScheduleStatus pairs an adherence verdict with its magnitude.
type ScheduleStatus struct {
	Adherence Adherence `json:"adherence"`
	Offset    string    `json:"offset"`
}

// Snapshot is the read-only view of live playback state.
type Snapshot struct {
	CurrentSegmentID     string         `json:"current_segment_id,omitempty"`
	IsPlaying            bool           `json:"is_playing"`
	TimeRemainingSeconds int            `json:"time_remaining_seconds"`
	Schedule             ScheduleStatus `json:"schedule"`
}
