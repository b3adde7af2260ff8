package playback

import (
	"time"

	"github.com/spf13/viper"
	"github.com/vidplay-cli/vidplay/key"
)

const (
	// FallbackTitle is shown when the media metadata carries no usable title.
	FallbackTitle = "Unknown Video"

	defaultSeekStep     = 10 * time.Second
	defaultPollInterval = 500 * time.Millisecond
	defaultVolume       = 0.5
	volumeStep          = 0.1

	// echoWindow bounds how long a play or pause command waits for the
	// engine to report the matching state.
	echoWindow = 2 * time.Second
)

// Options tunes a playback session.
type Options struct {
	// SeekStep is the distance covered by Rewind and Forward.
	SeekStep time.Duration

	// PollInterval is the delay between engine position reads.
	PollInterval time.Duration

	// Volume is applied to the engine when the session starts.
	Volume float64
}

// DefaultOptions reads the session options from the configuration,
// falling back to built-in values for missing or invalid entries.
func DefaultOptions() Options {
	opts := Options{
		SeekStep:     time.Duration(viper.GetInt(key.PlayerSeekStepMs)) * time.Millisecond,
		PollInterval: time.Duration(viper.GetInt(key.PlayerPollIntervalMs)) * time.Millisecond,
		Volume:       defaultVolume,
	}

	if viper.IsSet(key.PlayerVolume) {
		opts.Volume = viper.GetFloat64(key.PlayerVolume)
	}

	return opts.normalized()
}

func (o Options) normalized() Options {
	if o.SeekStep <= 0 {
		o.SeekStep = defaultSeekStep
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.Volume < 0 || o.Volume > 1 {
		o.Volume = defaultVolume
	}
	return o
}
