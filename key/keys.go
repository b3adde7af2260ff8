// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 15

// Media Library - these keys control where videos are enumerated from and how scans are cached.
const (
	LibraryPath     = "library.path"
	LibraryCacheTTL = "library.cache_ttl_minutes"
)

// Playback Session - these keys tune the playback controller and the engine it drives.
const (
	PlayerVolume         = "player.volume"
	PlayerPollIntervalMs = "player.poll_interval_ms"
	PlayerSeekStepMs     = "player.seek_step_ms"
	PlayerMPVPath        = "player.mpv_path"
)

// Picture-in-Picture - these keys govern the reduced floating window.
const (
	PipEnabled = "pip.enabled"
	PipWidth   = "pip.width"
)

// Terminal User Interface (TUI) - these keys define presentation behavior.
const (
	TUIControlsTimeoutMs = "tui.controls_timeout_ms"
	TUIShowSubtitles     = "tui.show_subtitles"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored = "cli.colored"
)
