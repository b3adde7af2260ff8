package player

// Event is a notification on an engine's event feed.
type Event interface {
	isEvent()
}

// PositionChanged is emitted when the position jumps, e.g. after a seek completes.
type PositionChanged struct {
	Position int64
}

// StateChanged is emitted when the lifecycle state or the playing flag changes.
type StateChanged struct {
	State   State
	Playing bool
}

// CuesChanged is emitted when the active subtitle cues change. An empty slice clears them.
type CuesChanged struct {
	Cues []string
}

func (PositionChanged) isEvent() {}
func (StateChanged) isEvent()    {}
func (CuesChanged) isEvent()     {}
