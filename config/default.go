package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vidplay-cli/vidplay/color"
	"github.com/vidplay-cli/vidplay/constant"
	"github.com/vidplay-cli/vidplay/icon"
	"github.com/vidplay-cli/vidplay/key"
	"github.com/vidplay-cli/vidplay/style"
)

// Field is a single setting with its factory default.
type Field struct {
	Key         string
	Value       any
	Description string

	check func(any) error
}

// Validate reports whether v is acceptable for the field.
// v must already have the type of the default.
func (f *Field) Validate(v any) error {
	if reflect.TypeOf(v) != reflect.TypeOf(f.Value) {
		return fmt.Errorf("%s expects %s, got %T", f.Key, f.typeName(), v)
	}
	if f.check == nil {
		return nil
	}
	if err := f.check(v); err != nil {
		return fmt.Errorf("%s: %w", f.Key, err)
	}
	return nil
}

// Pretty renders the field for `config info`.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable that overrides the field.
func (f *Field) Env() string {
	env := strings.ToUpper(EnvKeyReplacer.Replace(f.Key))
	prefix := strings.ToUpper(constant.App + "_")
	if strings.HasPrefix(env, prefix) {
		return env
	}
	return prefix + env
}

func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.typeName(),
	})
}

func (f *Field) typeName() string {
	switch f.Value.(type) {
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	default:
		return "unknown"
	}
}

// Default maps every known key to its field.
var Default = make(map[string]Field)

// EnvExposed lists the keys bound to environment variables, in registration order.
var EnvExposed []string

func between(low, high float64) func(any) error {
	return func(v any) error {
		if f := v.(float64); f < low || f > high {
			return fmt.Errorf("must be between %v and %v", low, high)
		}
		return nil
	}
}

func atLeast(n int) func(any) error {
	return func(v any) error {
		if v.(int) < n {
			return fmt.Errorf("must be at least %d", n)
		}
		return nil
	}
}

func oneOf(options ...string) func(any) error {
	return func(v any) error {
		if !lo.Contains(options, strings.ToLower(v.(string))) {
			return fmt.Errorf("must be one of %s", strings.Join(options, ", "))
		}
		return nil
	}
}

func init() {
	register := func(k string, v any, check func(any) error, desc string) {
		if _, exists := Default[k]; exists {
			panic("duplicate config key: " + k)
		}
		Default[k] = Field{Key: k, Value: v, Description: desc, check: check}
		EnvExposed = append(EnvExposed, k)
	}

	// library
	register(key.LibraryPath, "", nil, "Directory to enumerate videos from.\nDefaults to the user's Videos directory when empty")
	register(key.LibraryCacheTTL, 10, atLeast(0), "Minutes a library scan stays cached before the directory is walked again")

	// playback
	register(key.PlayerVolume, 0.5, between(0, 1), "Initial playback volume, from 0.0 to 1.0")
	register(key.PlayerPollIntervalMs, 500, atLeast(50), "Interval in milliseconds between playback position polls")
	register(key.PlayerSeekStepMs, 10000, atLeast(1), "Milliseconds skipped by rewind and forward")
	register(key.PlayerMPVPath, "mpv", nil, "Path to the mpv executable used as the playback engine")

	// pip
	register(key.PipEnabled, true, nil, "Enter picture-in-picture when the terminal loses focus on the player screen")
	register(key.PipWidth, 480, atLeast(160), "Width in pixels of the picture-in-picture window")

	// tui
	register(key.TUIControlsTimeoutMs, 3000, atLeast(0), "Milliseconds before on-screen player controls hide themselves.\n0 keeps them visible")
	register(key.TUIShowSubtitles, true, nil, "Render the current subtitle line under the player controls")
	register(key.IconsVariant, "plain", oneOf(icon.AvailableVariants()...), "Icons variant.\nAvailable options are: emoji, nerd, plain")

	// diagnostics
	register(key.LogsWrite, false, nil, "Write logs")
	register(key.LogsLevel, "info", oneOf("panic", "fatal", "error", "warn", "info", "debug", "trace"), "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, nil, "Use json format for logs")
	register(key.CliColored, true, nil, "Enable colored CLI output")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"key":      style.Fg(color.Purple),
	"label":    style.Fg(color.Blue),
	"env":      style.Fg(color.Cyan),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			b := strconv.FormatBool(value)
			if value {
				return style.Fg(color.Green)(b)
			}
			return style.Fg(color.Red)(b)
		case string:
			if value == "" {
				return style.Faint(`""`)
			}
			return style.Fg(color.Yellow)(value)
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ label "Key:" }}     {{ key .Key }}
{{ label "Env:" }}     {{ env .Env }}
{{ label "Value:" }}   {{ hl (value .Key) }}
{{ label "Default:" }} {{ hl (.Value) }}
{{ label "Type:" }}    {{ typename .Value }}`))
