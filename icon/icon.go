// Package icon provides a multi-variant rendering engine for UI symbols and feedback indicators.
//
// Icons can be displayed as emoji, nerd-font glyphs or plain ASCII depending on user preference.
package icon

import (
	"github.com/spf13/viper"
	"github.com/vidplay-cli/vidplay/key"
)

// Visual Variant Constants - these define the supported aesthetic styles for icon rendering.
const (
	emoji = "emoji"
	nerd  = "nerd"
	plain = "plain"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Video
	Play
	Pause
	Replay
	Rewind
	Forward
	Volume
	Brightness
	Fullscreen
	Pip
)

// iconDef encapsulates the visual representations of a single UI symbol across all supported variants.
type iconDef struct {
	emoji string
	nerd  string
	plain string
}

var icons = map[Icon]*iconDef{
	Success:    {emoji: "🎉", nerd: "", plain: "✓"},
	Fail:       {emoji: "💀", nerd: "", plain: "✗"},
	Progress:   {emoji: "⏳", nerd: "", plain: "..."},
	Video:      {emoji: "🎞️", nerd: "", plain: "*"},
	Play:       {emoji: "▶️", nerd: "", plain: ">"},
	Pause:      {emoji: "⏸️", nerd: "", plain: "||"},
	Replay:     {emoji: "🔁", nerd: "", plain: "<>"},
	Rewind:     {emoji: "⏪", nerd: "", plain: "<<"},
	Forward:    {emoji: "⏩", nerd: "", plain: ">>"},
	Volume:     {emoji: "🔊", nerd: "", plain: "vol"},
	Brightness: {emoji: "🔆", nerd: "", plain: "bri"},
	Fullscreen: {emoji: "⛶", nerd: "", plain: "[ ]"},
	Pip:        {emoji: "🪟", nerd: "", plain: "pip"},
}

// Get retrieves the visual representation for the receiver based on the global icons variant configuration.
func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	default:
		return ""
	}
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	def, ok := icons[i]
	if !ok {
		return ""
	}
	return def.Get()
}
