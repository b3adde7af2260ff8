// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
	"github.com/spf13/viper"
	"github.com/vidplay-cli/vidplay/color"
	"github.com/vidplay-cli/vidplay/host"
	"github.com/vidplay-cli/vidplay/icon"
	"github.com/vidplay-cli/vidplay/key"
	"github.com/vidplay-cli/vidplay/media"
	"github.com/vidplay-cli/vidplay/player"
	"github.com/vidplay-cli/vidplay/style"
	"github.com/vidplay-cli/vidplay/util"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case libraryState:
		output = b.viewLibrary()
	case playerState:
		if b.app.Pip.InPipMode {
			output = b.viewPip()
		} else {
			output = b.viewPlayer()
		}
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " " + b.progressStatus,
		},
	)
}

func (b *statefulBubble) viewLibrary() string {
	switch {
	case !b.scanned:
		return b.renderLines(
			false,
			[]string{
				style.Title("Videos"),
				"",
				b.spinnerC.View() + " Scanning " + style.Fg(color.Purple)(b.dir),
			},
		)
	case errors.Is(b.libraryErr, media.ErrPermissionDenied):
		return b.renderLines(
			true,
			[]string{
				style.ErrorTitle("Permission needed"),
				"",
				wrap.String(fmt.Sprintf("vidplay cannot read %s. Grant read access to the directory or point %s at another one.", b.dir, key.LibraryPath), b.width),
			},
		)
	case b.libraryErr != nil:
		return b.renderLines(
			true,
			[]string{
				style.ErrorTitle("Videos"),
				"",
				icon.Get(icon.Fail) + " " + wrap.String(b.libraryErr.Error(), b.width),
			},
		)
	}

	return listExtraPaddingStyle.Render(b.libraryC.View())
}

func (b *statefulBubble) viewPlayer() string {
	s := b.app.Session

	lines := []string{
		style.Title(s.Title),
		"",
	}

	if b.controlsVisible {
		status := icon.Get(icon.Play)
		if s.Playing {
			status = icon.Get(icon.Pause)
		}
		if s.Completed {
			status = icon.Get(icon.Replay)
		}

		duration := "--:--"
		if s.Duration != player.DurationUnknown {
			duration = util.FormatDuration(s.Duration)
		}

		lines = append(lines,
			b.progressC.ViewAs(s.Progress()),
			fmt.Sprintf("%s %s / %s", status, util.FormatDuration(s.Position), duration),
			"",
			style.Truncate(b.width)(strings.Join([]string{
				fmt.Sprintf("%s %s", icon.Get(icon.Volume), percent(s.Volume)),
				fmt.Sprintf("%s %s", icon.Get(icon.Brightness), percent(s.Brightness)),
				fmt.Sprintf("%s %s", icon.Get(icon.Fullscreen), onOff(s.Fullscreen)),
			}, "   ")),
		)

		if s.Completed {
			lines = append(lines, "", style.Fg(color.Orange)("Finished. Press r to watch again."))
		}
	}

	if viper.GetBool(key.TUIShowSubtitles) && s.HasSubtitles && s.Subtitle != "" {
		lines = append(lines, "", style.Italic(wordwrap.String(s.Subtitle, b.width)))
	}

	return b.renderLines(b.controlsVisible, lines)
}

// viewPip is the stripped view shown while the player window floats: just the buttons.
func (b *statefulBubble) viewPip() string {
	line := icon.Get(icon.Pip) + "  " + host.OSDLine(b.app.Actions)
	return paddingStyle.Render(style.Truncate(b.width)(line))
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	errorBody := errorStyle.Render(b.lastError.Error())
	errorMsg := wrap.String(errorBody, b.width)
	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " An error occurred:",
			"",
			errorMsg,
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}

func percent(level float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(level*100)))
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
