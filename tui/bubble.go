// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
	"github.com/vidplay-cli/vidplay/app"
	"github.com/vidplay-cli/vidplay/internal/ui"
	"github.com/vidplay-cli/vidplay/key"
	"github.com/vidplay-cli/vidplay/pip"
	"github.com/vidplay-cli/vidplay/playback"
	"github.com/vidplay-cli/vidplay/style"
	"github.com/vidplay-cli/vidplay/util"
)

// App is the hosting screen the interface drives.
type App interface {
	Navigate(route string) error
	Back() (bool, error)
	WithSession(fn func(*playback.Controller) error) error
	OnUserLeaveHint() error
	OnPipModeChanged(inPip bool) error
	OnResume() error
	OnStop() error
	PipState() pip.State
	Updates() <-chan app.Update
}

// brightnessStep is the change applied by one brightness key press.
const brightnessStep = 0.1

// statefulBubble encapsulates the application state, including component models and workflow tracking.
type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]

	keymap *statefulKeymap

	// components
	spinnerC  spinner.Model
	libraryC  list.Model
	progressC progress.Model
	helpC     help.Model

	app     app.Update
	host    App
	dir        string
	scanned    bool
	libraryErr error

	// playback controls auto-hide
	controlsVisible bool
	controlsSeq     int
	controlsTimeout time.Duration

	progressStatus string
	lastError      error

	width, height int
	notifier      *ui.Model
}

// raiseError dispatches a terminal error and transitions the application to the failure view.
func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

// setState performs a synchronous transition of both the application workflow and its associated keymap.
func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState facilitates an idempotent transition to a target state, recording the previous state in the navigation history when appropriate.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	// Do not push these states to history
	if b.state != loadingState {
		b.statesHistory.Push(b.state)
	}

	b.setState(s)
}

// previousState restores the application to its immediate predecessor in the navigation stack.
func (b *statefulBubble) previousState() {
	if s, ok := b.statesHistory.Pop(); ok {
		b.setState(s)
	}
}

// resize propagates terminal dimension changes to all child component models.
func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	styledWidth := width - x
	styledHeight := height - y

	listWidth := width - xx
	listHeight := height - yy

	b.libraryC.SetSize(listWidth, listHeight)
	b.libraryC.Help.Width = listWidth

	b.progressC.Width = styledWidth

	b.width = styledWidth
	b.height = styledHeight
	b.helpC.Width = listWidth
}

// newBubble performs a complete initialization of the application's primary UI model.
func newBubble(host App, options *Options) *statefulBubble {
	keymap := newStatefulKeymap()
	bubble := statefulBubble{
		statesHistory: util.Stack[state]{},
		keymap:        keymap,
		host:          host,
		dir:           options.Dir,
		notifier:      &ui.Model{},

		controlsVisible: true,
		controlsTimeout: time.Duration(viper.GetInt(key.TUIControlsTimeoutMs)) * time.Millisecond,
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(style.AccentColor).
		Foreground(style.AccentColor).
		Padding(0, 0, 0, 1)
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("7"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

	bubble.libraryC = list.New([]list.Item{}, delegate, 0, 0)
	bubble.libraryC.KeyMap = keymap.forList()
	bubble.libraryC.AdditionalShortHelpKeys = keymap.ShortHelp
	bubble.libraryC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
		return keymap.FullHelp()[0]
	}
	bubble.libraryC.Title = "Videos"
	bubble.libraryC.Styles.Title = lipgloss.NewStyle().Foreground(style.Base).Background(style.AccentColor).Padding(0, 1)
	bubble.libraryC.Styles.NoItems = paddingStyle
	bubble.libraryC.Filter = fuzzyFilter
	bubble.libraryC.SetStatusBarItemName("video", "videos")
	bubble.libraryC.StatusMessageLifetime = time.Hour * 999
	bubble.libraryC.SetShowPagination(false)

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bubble.progressC = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return &bubble
}
