package playback

// Snapshot is a consistent copy of the observable session state.
type Snapshot struct {
	URI      string
	Title    string
	Playing  bool
	Position int64
	Duration int64

	Volume     float64
	Brightness float64
	Fullscreen bool

	HasSubtitles bool
	Subtitle     string

	Completed           bool
	InPip               bool
	WasPlayingBeforePip bool
}

// Progress returns the played fraction in [0, 1], or 0 while the duration is unknown.
func (s Snapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	p := float64(s.Position) / float64(s.Duration)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
