package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/osk/internal/config/layer"
	"github.com/dshills/osk/internal/config/loader"
	"github.com/dshills/osk/internal/config/notify"
	"github.com/dshills/osk/internal/config/watcher"
	"github.com/dshills/osk/internal/logging"
)

// Layer names.
const (
	LayerDefaults = "defaults"
	LayerUser     = "user"
	LayerEnv      = "environment"
	LayerSession  = "session"
)

// Config provides unified access to the osk configuration. It manages
// loading, live reloading and change notification.
type Config struct {
	mu sync.Mutex

	layers   *layer.Manager
	notifier *notify.Notifier
	watcher  *watcher.Watcher
	log      *logging.Logger

	configDir string
	dataDir   string
	defaults  map[string]any

	enableWatcher bool
	enableEnv     bool

	current  atomic.Pointer[Settings]
	warnings []error
}

// Option configures a Config instance.
type Option func(*Config)

// WithConfigDir sets the directory holding settings.toml.
func WithConfigDir(dir string) Option {
	return func(c *Config) {
		c.configDir = dir
	}
}

// WithDataDir sets the directory for the word database.
func WithDataDir(dir string) Option {
	return func(c *Config) {
		c.dataDir = dir
	}
}

// WithWatcher enables file watching for live reload.
func WithWatcher(enable bool) Option {
	return func(c *Config) {
		c.enableWatcher = enable
	}
}

// WithEnv enables the OSK_ environment layer.
func WithEnv(enable bool) Option {
	return func(c *Config) {
		c.enableEnv = enable
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Config) {
		c.log = l
	}
}

// New creates a Config holding only the built-in defaults. Call Load to
// read the user file and the environment.
func New(opts ...Option) *Config {
	c := &Config{
		layers:        layer.NewManager(),
		notifier:      notify.New(),
		enableWatcher: true,
		enableEnv:     true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logging.OrDefault(c.log).WithComponent("config")
	if c.configDir == "" {
		c.configDir = DefaultConfigDir()
	}
	if c.dataDir == "" {
		c.dataDir = DefaultDataDir()
	}
	c.defaults = defaultConfig(c.configDir, c.dataDir)

	c.layers.AddLayer(layer.NewLayerWithData(LayerDefaults, layer.SourceBuiltin, layer.Clone(c.defaults)))
	c.layers.AddLayer(layer.NewLayer(LayerSession, layer.SourceSession))
	c.rebuild()
	return c
}

// Path returns the user settings file.
func (c *Config) Path() string {
	return filepath.Join(c.configDir, SettingsFile)
}

// Dir returns the configuration directory.
func (c *Config) Dir() string {
	return c.configDir
}

// Load reads the user settings file and the environment, then starts the
// watcher if enabled. A missing settings file is not an error.
func (c *Config) Load(_ context.Context) error {
	c.mu.Lock()
	if err := c.loadUserSettings(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.enableEnv {
		data, err := loader.NewEnvLoader(loader.EnvPrefix).Load()
		if err != nil {
			c.mu.Unlock()
			return err
		}
		c.layers.AddLayer(layer.NewLayerWithData(LayerEnv, layer.SourceEnv, data))
	}
	c.rebuild()
	c.mu.Unlock()

	if c.enableWatcher && c.watcher == nil {
		if err := c.startWatcher(); err != nil {
			c.log.Warn("live reload disabled", "error", err)
		}
	}
	return nil
}

func (c *Config) loadUserSettings() error {
	data, err := loader.NewTOMLLoader(c.Path()).Load()
	if err != nil {
		return err
	}
	l := layer.NewLayerWithData(LayerUser, layer.SourceUser, data)
	l.Path = c.Path()
	c.layers.AddLayer(l)
	return nil
}

func (c *Config) startWatcher() error {
	w, err := watcher.New(watcher.WithLogger(c.log))
	if err != nil {
		return err
	}
	if err := w.Watch(c.Path()); err != nil {
		_ = w.Close()
		return err
	}
	w.OnChange(func(ev watcher.Event) {
		if err := c.Reload(); err != nil {
			c.log.Error("reloading settings", "path", ev.Path, "error", err)
		}
	})
	c.watcher = w
	return nil
}

// Reload re-reads the user settings file and notifies observers. On a
// parse error the previous settings stay in effect.
func (c *Config) Reload() error {
	c.mu.Lock()
	if err := c.loadUserSettings(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.rebuild()
	c.mu.Unlock()

	c.log.Info("settings reloaded", "path", c.Path())
	c.notifier.NotifyReload(LayerUser)
	return nil
}

// rebuild decodes a new snapshot. Must be called with c.mu held, or before
// c is shared.
func (c *Config) rebuild() {
	s, errs := decodeSettings(c.layers.Merge(), c.defaults)
	for _, err := range errs {
		c.log.Warn("invalid setting, using default", "error", err)
	}
	c.warnings = errs
	c.current.Store(s)
}

// Current returns the settings snapshot. It never returns nil and is safe
// to call from any goroutine.
func (c *Config) Current() *Settings {
	return c.current.Load()
}

// Warnings returns the problems found while decoding the current settings.
func (c *Config) Warnings() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]error(nil), c.warnings...)
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	val, _, ok := c.layers.Get(path)
	return val, ok
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetFloat returns a float64 value at the given path.
func (c *Config) GetFloat(path string) (float64, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	return toFloat(path, v)
}

// GetDuration returns a duration. Numbers are seconds.
func (c *Config) GetDuration(path string) (time.Duration, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	return toDuration(path, v)
}

// Set stores a value in the session layer. Only known settings can be set
// and the value must fit the type of the default.
func (c *Config) Set(path string, value any) error {
	def, ok := layer.GetByPath(c.defaults, path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	if _, isSection := def.(map[string]any); isSection {
		return fmt.Errorf("%w: %s is a section", ErrSettingNotFound, path)
	}
	if err := checkType(path, def, value); err != nil {
		return err
	}

	c.mu.Lock()
	old, _ := c.Get(path)
	if err := c.layers.Set(LayerSession, path, value); err != nil {
		c.mu.Unlock()
		return err
	}
	c.rebuild()
	c.mu.Unlock()

	c.notifier.NotifySet(path, old, value, LayerSession)
	return nil
}

// Toggle flips a boolean setting and returns the new value.
func (c *Config) Toggle(path string) (bool, error) {
	cur, err := c.GetBool(path)
	if err != nil {
		return false, err
	}
	if err := c.Set(path, !cur); err != nil {
		return false, err
	}
	return !cur, nil
}

func checkType(path string, def, value any) error {
	switch def.(type) {
	case bool:
		if _, ok := value.(bool); !ok {
			return &TypeError{Path: path, Expected: "bool", Actual: typeName(value)}
		}
	case string:
		if _, ok := value.(string); !ok {
			return &TypeError{Path: path, Expected: "string", Actual: typeName(value)}
		}
	case float64, int64:
		if _, err := toFloat(path, value); err != nil {
			if _, derr := toDuration(path, value); derr != nil {
				return err
			}
		}
	}
	return nil
}

// Save writes the user layer merged with the session layer to
// settings.toml. Session values move into the user layer.
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var user map[string]any
	if l := c.layers.Layer(LayerUser); l != nil {
		user = layer.Clone(l.Data)
	}
	if s := c.layers.Layer(LayerSession); s != nil {
		user = layer.DeepMerge(user, s.Data)
	}
	if user == nil {
		user = make(map[string]any)
	}
	if err := loader.NewTOMLLoader(c.Path()).Save(durationsToSeconds(user)); err != nil {
		return err
	}

	ul := layer.NewLayerWithData(LayerUser, layer.SourceUser, user)
	ul.Path = c.Path()
	c.layers.AddLayer(ul)
	return c.layers.UpdateLayer(LayerSession, nil)
}

// durationsToSeconds converts time.Duration values, which TOML can't
// hold, to seconds.
func durationsToSeconds(m map[string]any) map[string]any {
	for k, v := range m {
		switch val := v.(type) {
		case time.Duration:
			m[k] = val.Seconds()
		case map[string]any:
			durationsToSeconds(val)
		}
	}
	return m
}

// Subscribe registers an observer for all configuration changes.
func (c *Config) Subscribe(observer notify.Observer) *notify.Subscription {
	return c.notifier.Subscribe(observer)
}

// SubscribePath registers an observer for changes to a specific path.
func (c *Config) SubscribePath(path string, observer notify.Observer) *notify.Subscription {
	return c.notifier.SubscribePath(path, observer)
}

// Close stops the watcher.
func (c *Config) Close() error {
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	if errors.Is(err, watcher.ErrWatcherClosed) {
		return nil
	}
	return err
}
