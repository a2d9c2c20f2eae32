package config

import (
	"math"
	"strings"
	"time"

	"github.com/dshills/osk/internal/config/layer"
)

// Settings is an immutable snapshot of the merged configuration.
type Settings struct {
	Keyboard   KeyboardSettings
	Dwell      DwellSettings
	Window     WindowSettings
	Lockdown   LockdownSettings
	Prediction PredictionSettings
	Access     AccessSettings
	Logging    LoggingSettings
	Paths      PathSettings
}

// KeyboardSettings controls key gestures.
type KeyboardSettings struct {
	LongPressDelay time.Duration
	// StickyKeyReleaseDelay releases stuck sticky keys after this much
	// inactivity. Zero disables the auto-release timer.
	StickyKeyReleaseDelay time.Duration
	DragThreshold         float64
	DragProtection        bool
	DoubleClickTime       time.Duration
	ShowClickButtons      bool
	TouchHandlesTimeout   time.Duration
}

type DwellSettings struct {
	Delay        time.Duration
	PollInterval time.Duration
}

type WindowSettings struct {
	ActiveOpacity              float64
	InactiveOpacity            float64
	EnableInactiveTransparency bool
	InactiveTransparencyDelay  time.Duration
	Decorated                  bool
	Docking                    bool
	Composited                 bool
}

// LockdownSettings are policy switches for kiosk setups.
type LockdownSettings struct {
	DisableLockedState     bool
	DisableDwellActivation bool
	DisableClickButtons    bool
	DisableHoverClick      bool
	DisablePreferences     bool
	DisableQuit            bool
	DisableTouchHandles    bool
}

type PredictionSettings struct {
	Enabled         bool
	AutoLearn       bool
	AutoPunctuation bool
	StealthMode     bool
	MaxChoices      int
	Database        string
}

type AccessSettings struct {
	HoverClickEnabled bool
	UseMousetweaks    bool
}

type LoggingSettings struct {
	Level  string
	Format string
	Output string
	File   string
}

type PathSettings struct {
	Layout   string
	Snippets string
	Scripts  string
}

// decoder reads typed values out of a merged map. Bad values are recorded
// and replaced by the value from defaults.
type decoder struct {
	data     map[string]any
	defaults map[string]any
	errs     []error
}

func (d *decoder) value(path string) any {
	if v, ok := layer.GetByPath(d.data, path); ok {
		return v
	}
	v, _ := layer.GetByPath(d.defaults, path)
	return v
}

func (d *decoder) fallback(path string, err error) any {
	d.errs = append(d.errs, err)
	v, _ := layer.GetByPath(d.defaults, path)
	return v
}

func (d *decoder) getBool(path string) bool {
	v := d.value(path)
	b, ok := v.(bool)
	if !ok {
		b, _ = d.fallback(path, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}).(bool)
	}
	return b
}

func (d *decoder) getFloat(path string) float64 {
	v := d.value(path)
	f, err := toFloat(path, v)
	if err != nil {
		f, _ = toFloat(path, d.fallback(path, err))
	}
	return f
}

func (d *decoder) getInt(path string) int {
	return int(math.Round(d.getFloat(path)))
}

func (d *decoder) getString(path string) string {
	v := d.value(path)
	s, ok := v.(string)
	if !ok {
		s, _ = d.fallback(path, &TypeError{Path: path, Expected: "string", Actual: typeName(v)}).(string)
	}
	return s
}

func (d *decoder) getDuration(path string) time.Duration {
	v := d.value(path)
	dur, err := toDuration(path, v)
	if err != nil {
		dur, _ = toDuration(path, d.fallback(path, err))
	}
	return dur
}

func toFloat(path string, v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "number", Actual: typeName(v)}
	}
}

// toDuration accepts seconds as a number or a Go duration string.
func toDuration(path string, v any) (time.Duration, error) {
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(val))
		if err != nil {
			return 0, &TypeError{Path: path, Expected: "duration", Actual: "string " + val}
		}
		return d, nil
	default:
		f, err := toFloat(path, v)
		if err != nil {
			return 0, &TypeError{Path: path, Expected: "duration", Actual: typeName(v)}
		}
		return time.Duration(f * float64(time.Second)), nil
	}
}

func decodeSettings(data, defaults map[string]any) (*Settings, []error) {
	d := &decoder{data: data, defaults: defaults}
	s := &Settings{
		Keyboard: KeyboardSettings{
			LongPressDelay:        d.getDuration("keyboard.long_press_delay"),
			StickyKeyReleaseDelay: d.getDuration("keyboard.sticky_key_release_delay"),
			DragThreshold:         d.getFloat("keyboard.drag_threshold"),
			DragProtection:        d.getBool("keyboard.drag_protection"),
			DoubleClickTime:       d.getDuration("keyboard.double_click_time"),
			ShowClickButtons:      d.getBool("keyboard.show_click_buttons"),
			TouchHandlesTimeout:   d.getDuration("keyboard.touch_handles_timeout"),
		},
		Dwell: DwellSettings{
			Delay:        d.getDuration("dwell.delay"),
			PollInterval: d.getDuration("dwell.poll_interval"),
		},
		Window: WindowSettings{
			ActiveOpacity:              clamp01(d.getFloat("window.active_opacity")),
			InactiveOpacity:            clamp01(d.getFloat("window.inactive_opacity")),
			EnableInactiveTransparency: d.getBool("window.enable_inactive_transparency"),
			InactiveTransparencyDelay:  d.getDuration("window.inactive_transparency_delay"),
			Decorated:                  d.getBool("window.decorated"),
			Docking:                    d.getBool("window.docking"),
			Composited:                 d.getBool("window.composited"),
		},
		Lockdown: LockdownSettings{
			DisableLockedState:     d.getBool("lockdown.disable_locked_state"),
			DisableDwellActivation: d.getBool("lockdown.disable_dwell_activation"),
			DisableClickButtons:    d.getBool("lockdown.disable_click_buttons"),
			DisableHoverClick:      d.getBool("lockdown.disable_hover_click"),
			DisablePreferences:     d.getBool("lockdown.disable_preferences"),
			DisableQuit:            d.getBool("lockdown.disable_quit"),
			DisableTouchHandles:    d.getBool("lockdown.disable_touch_handles"),
		},
		Prediction: PredictionSettings{
			Enabled:         d.getBool("prediction.enabled"),
			AutoLearn:       d.getBool("prediction.auto_learn"),
			AutoPunctuation: d.getBool("prediction.auto_punctuation"),
			StealthMode:     d.getBool("prediction.stealth_mode"),
			MaxChoices:      d.getInt("prediction.max_choices"),
			Database:        d.getString("prediction.database"),
		},
		Access: AccessSettings{
			HoverClickEnabled: d.getBool("access.hover_click_enabled"),
			UseMousetweaks:    d.getBool("access.use_mousetweaks"),
		},
		Logging: LoggingSettings{
			Level:  d.getString("logging.level"),
			Format: d.getString("logging.format"),
			Output: d.getString("logging.output"),
			File:   d.getString("logging.file"),
		},
		Paths: PathSettings{
			Layout:   d.getString("paths.layout"),
			Snippets: d.getString("paths.snippets"),
			Scripts:  d.getString("paths.scripts"),
		},
	}
	if s.Dwell.PollInterval <= 0 {
		s.Dwell.PollInterval = 50 * time.Millisecond
	}
	return s, d.errs
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
