// Package app provides the main application structure and coordination
// for osk. It wires the keyboard, its terminal window and the optional
// services (hover click daemon, word prediction, snippets, scripts)
// together and manages the application lifecycle.
package app

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/osk/internal/config"
	"github.com/dshills/osk/internal/event"
	"github.com/dshills/osk/internal/inject"
	"github.com/dshills/osk/internal/keyboard"
	"github.com/dshills/osk/internal/layout"
	"github.com/dshills/osk/internal/logging"
	"github.com/dshills/osk/internal/loop"
	"github.com/dshills/osk/internal/mousectl"
	"github.com/dshills/osk/internal/predict"
	"github.com/dshills/osk/internal/script"
	"github.com/dshills/osk/internal/snippet"
	"github.com/dshills/osk/internal/term"
	"github.com/dshills/osk/internal/widget"
)

// Application is the central coordinator for all osk components.
type Application struct {
	mu sync.Mutex

	// Core infrastructure
	log    *logging.Logger
	config *config.Config
	bus    *event.Bus
	loop   *loop.Loop
	subs   *subscriptionManager

	// Output
	sink      inject.Sink
	recorder  *inject.Recorder
	closeSink func() error

	// Optional services
	mousetweaks *mousectl.Mousetweaks
	predictor   *predict.Predictor
	snippets    *snippet.Store
	scripts     *script.Runner

	// Keyboard and window
	layout   *layout.Layout
	reloader *layout.Reloader
	keyboard *keyboard.Keyboard
	host     *term.Host
	widget   *widget.Widget

	// State
	running  atomic.Bool
	closed   atomic.Bool
	shutdown sync.Once
	cancel   context.CancelFunc

	// Options
	opts Options
}

// Options configures the application.
type Options struct {
	// ConfigDir holds settings.toml. Empty means config.DefaultConfigDir.
	ConfigDir string

	// DataDir holds the word database. Empty means config.DefaultDataDir.
	DataDir string

	// LayoutPath overrides the layout file from the settings. Empty and no
	// layout in the settings means the built-in layout.
	LayoutPath string

	// DryRun logs synthesized input instead of sending it to the system.
	DryRun bool

	// NoWatch disables live reloading of the settings and layout files.
	NoWatch bool

	// Screen replaces the terminal. Tests pass a simulation screen.
	Screen tcell.Screen

	// Logger replaces the logger built from the logging settings.
	Logger *logging.Logger

	// Editor is the command used to edit the settings file. Empty means
	// $VISUAL, then $EDITOR, then vi.
	Editor string

	// In and Out are used to prompt for snippets. They default to the
	// process's standard input and output.
	In  io.Reader
	Out io.Writer
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}

	b := newBootstrapper(app, opts)
	if err := b.bootstrap(); err != nil {
		return nil, err
	}

	return app, nil
}

// Config returns the configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Bus returns the event bus.
func (app *Application) Bus() *event.Bus {
	return app.bus
}

// Loop returns the event loop every component runs on.
func (app *Application) Loop() *loop.Loop {
	return app.loop
}

// Keyboard returns the keyboard.
func (app *Application) Keyboard() *keyboard.Keyboard {
	return app.keyboard
}

// Widget returns the keyboard window's input handler.
func (app *Application) Widget() *widget.Widget {
	return app.widget
}

// Host returns the terminal window.
func (app *Application) Host() *term.Host {
	return app.host
}

// Snippets returns the snippet store.
func (app *Application) Snippets() *snippet.Store {
	return app.snippets
}

// Recorder returns the sink used in dry-run mode, or nil.
func (app *Application) Recorder() *inject.Recorder {
	return app.recorder
}

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger {
	return app.log
}

// IsRunning reports whether Run is active.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}
