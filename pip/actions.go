package pip

import (
	"github.com/vidplay-cli/vidplay/icon"
	"github.com/vidplay-cli/vidplay/remote"
)

// Rational is an exact width:height ratio.
type Rational struct {
	Num, Den int
}

// Float returns the ratio as a float, or 0 for a zero denominator.
func (r Rational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// AspectRatio is the shape requested for the PiP window.
var AspectRatio = Rational{Num: 16, Den: 9}

// Action is one button attached to the PiP window.
type Action struct {
	Code      remote.Code
	Icon      icon.Icon
	Label     string
	RequestID int
}

// Params configures the PiP window.
type Params struct {
	AspectRatio Rational
	Actions     []Action
}

var actionDefs = map[remote.Code]struct {
	icon  icon.Icon
	label string
}{
	remote.Play:    {icon.Play, "Play"},
	remote.Pause:   {icon.Pause, "Pause"},
	remote.Forward: {icon.Forward, "Forward"},
	remote.Rewind:  {icon.Rewind, "Rewind"},
	remote.Replay:  {icon.Replay, "Replay"},
}

// NewAction returns the button for code.
func NewAction(code remote.Code) Action {
	def := actionDefs[code]
	return Action{
		Code:      code,
		Icon:      def.icon,
		Label:     def.label,
		RequestID: code.RequestID(),
	}
}

// BuildActions returns the ordered PiP buttons for the given playback state:
// rewind, then replay, pause or play, then forward.
func BuildActions(completed, playing bool) []Action {
	middle := remote.Play
	switch {
	case completed:
		middle = remote.Replay
	case playing:
		middle = remote.Pause
	}

	return []Action{
		NewAction(remote.Rewind),
		NewAction(middle),
		NewAction(remote.Forward),
	}
}

// BuildParams returns the PiP configuration for the given playback state.
func BuildParams(completed, playing bool) Params {
	return Params{
		AspectRatio: AspectRatio,
		Actions:     BuildActions(completed, playing),
	}
}
