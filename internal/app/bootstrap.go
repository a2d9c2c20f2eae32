package app

import (
	"context"
	"errors"

	"github.com/dshills/osk/internal/config"
	"github.com/dshills/osk/internal/event"
	"github.com/dshills/osk/internal/inject"
	"github.com/dshills/osk/internal/input/pointer"
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

// uinputPath is the device synthesized input is written to.
const uinputPath = "/dev/uinput"

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      opts,
		initOrder: make([]string, 0, 14),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initConfig,
		b.initLogging,
		b.initEventBus,
		b.initLoop,
		b.initSink,
		b.initMousetweaks,
		b.initPredictor,
		b.initSnippets,
		b.initScripts,
		b.initLayout,
		b.initKeyboard,
		b.initHost,
		b.initWidget,
		b.initLayoutWatch,
		b.initSubscriptions,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}
	b.app.log.Info("osk started", "components", b.initOrder, "dry_run", b.opts.DryRun)
	return nil
}

// initConfig loads the settings. The logger is not configured yet, so
// problems are reported through the process-wide default logger.
func (b *bootstrapper) initConfig() error {
	configOpts := []config.Option{
		config.WithWatcher(!b.opts.NoWatch),
		config.WithLogger(logging.OrDefault(b.opts.Logger)),
	}
	if b.opts.ConfigDir != "" {
		configOpts = append(configOpts, config.WithConfigDir(b.opts.ConfigDir))
	}
	if b.opts.DataDir != "" {
		configOpts = append(configOpts, config.WithDataDir(b.opts.DataDir))
	}

	b.app.config = config.New(configOpts...)
	if err := b.app.config.Load(context.Background()); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	b.initOrder = append(b.initOrder, "config")
	return nil
}

// initLogging builds the application logger from the logging settings.
func (b *bootstrapper) initLogging() error {
	if b.opts.Logger != nil {
		b.app.log = b.opts.Logger
		b.initOrder = append(b.initOrder, "logging")
		return nil
	}

	s := b.app.config.Current().Logging
	cfg := logging.DefaultConfig()
	if lvl, err := logging.ParseLevel(s.Level); err == nil {
		cfg.Level = lvl
	}
	cfg.Format = logging.ParseFormat(s.Format)
	cfg.Output = s.Output
	if s.File != "" {
		cfg.FilePath = s.File
	}

	log, err := logging.New(cfg)
	if err != nil {
		return &InitError{Component: "logging", Err: err}
	}
	b.app.log = log
	logging.SetDefault(log)
	b.initOrder = append(b.initOrder, "logging")
	return nil
}

// initEventBus initializes the event bus.
func (b *bootstrapper) initEventBus() error {
	b.app.bus = event.NewBus(b.app.log)
	b.initOrder = append(b.initOrder, "eventBus")
	return nil
}

// initLoop creates the event loop. Nothing runs on it before Run.
func (b *bootstrapper) initLoop() error {
	b.app.loop = loop.New(loop.WithLogger(b.app.log))
	b.initOrder = append(b.initOrder, "loop")
	return nil
}

// initSink opens the uinput device. Dry runs, and systems where the device
// cannot be opened, get a recorder that logs the input instead.
func (b *bootstrapper) initSink() error {
	log := b.app.log.WithComponent("inject")
	if !b.opts.DryRun {
		u, err := inject.OpenUInput(uinputPath, log)
		if err == nil {
			b.app.sink = u
			b.app.closeSink = u.Close
			b.initOrder = append(b.initOrder, "uinput")
			return nil
		}
		log.Warn("cannot open uinput, input is only logged", "path", uinputPath, "error", err)
	}
	b.app.recorder = &inject.Recorder{Log: log}
	b.app.sink = b.app.recorder
	b.initOrder = append(b.initOrder, "recorder")
	return nil
}

// initMousetweaks connects to the hover click daemon. Without a session
// bus hover click is simply unavailable.
func (b *bootstrapper) initMousetweaks() error {
	if !b.app.config.Current().Access.UseMousetweaks {
		return nil
	}
	mt, err := mousectl.NewMousetweaks(b.app.loop, b.app.log)
	if err != nil {
		if errors.Is(err, mousectl.ErrNoDaemonBus) {
			b.app.log.Info("hover click unavailable", "error", err)
		} else {
			b.app.log.Warn("mousetweaks", "error", err)
		}
		return nil
	}
	b.app.mousetweaks = mt
	b.initOrder = append(b.initOrder, "mousetweaks")
	return nil
}

// initPredictor opens the word database. It is opened even while
// prediction is disabled so it can be switched on from the keyboard.
func (b *bootstrapper) initPredictor() error {
	s := b.app.config.Current().Prediction
	p, err := predict.Open(s.Database, s.MaxChoices, b.app.log)
	if err != nil {
		b.app.log.Warn("word prediction unavailable", "database", s.Database, "error", err)
		return nil
	}
	b.app.predictor = p
	b.initOrder = append(b.initOrder, "predictor")
	return nil
}

// initSnippets loads the snippet store.
func (b *bootstrapper) initSnippets() error {
	b.app.snippets = snippet.NewStore()
	path := b.app.config.Current().Paths.Snippets
	if err := snippet.Load(b.app.snippets, path); err != nil {
		b.app.log.Warn("snippets not loaded", "path", path, "error", err)
	}
	b.initOrder = append(b.initOrder, "snippets")
	return nil
}

// initScripts creates the script runner. Its host is bound to the keyboard
// once that exists.
func (b *bootstrapper) initScripts() error {
	dir := b.app.config.Current().Paths.Scripts
	b.app.scripts = script.NewRunner(dir, b.app.loop, &scriptTarget{app: b.app}, b.app.log)
	b.initOrder = append(b.initOrder, "scripts")
	return nil
}

// initLayout loads the layout file, or the built-in layout when none is
// configured.
func (b *bootstrapper) initLayout() error {
	path := b.layoutPath()
	if path == "" {
		b.app.layout = layout.Default(b.app.log)
		b.initOrder = append(b.initOrder, "layout")
		return nil
	}
	l, err := layout.Load(path, b.app.log)
	if err != nil {
		return &InitError{Component: "layout", Err: err}
	}
	b.app.layout = l
	b.initOrder = append(b.initOrder, "layout")
	return nil
}

func (b *bootstrapper) layoutPath() string {
	if b.opts.LayoutPath != "" {
		return b.opts.LayoutPath
	}
	return b.app.config.Current().Paths.Layout
}

// initKeyboard creates the keyboard with the optional services that are
// available.
func (b *bootstrapper) initKeyboard() error {
	kbOpts := []keyboard.Option{
		keyboard.WithLogger(b.app.log),
		keyboard.WithBus(b.app.bus),
		keyboard.WithSnippets(b.app.snippets),
		keyboard.WithScripts(b.app.scripts),
	}
	if b.app.mousetweaks != nil {
		kbOpts = append(kbOpts, keyboard.WithMousetweaks(b.app.mousetweaks))
	}
	if b.app.predictor != nil {
		kbOpts = append(kbOpts, keyboard.WithPredictor(b.app.predictor))
	}
	b.app.keyboard = keyboard.New(b.app.layout, b.app.sink, b.app.loop, b.app.config, kbOpts...)
	b.initOrder = append(b.initOrder, "keyboard")
	return nil
}

// initHost takes over the terminal.
func (b *bootstrapper) initHost() error {
	h, err := term.NewHost(b.opts.Screen, b.app.loop, b.app.log)
	if err != nil {
		return &InitError{Component: "terminal", Err: err}
	}
	h.OnQuit = b.app.Quit
	b.app.host = h
	b.initOrder = append(b.initOrder, "terminal")
	return nil
}

// initWidget connects the terminal to the keyboard.
func (b *bootstrapper) initWidget() error {
	b.app.widget = widget.New(b.app.keyboard, b.app.host, b.app.loop, b.app.config,
		widget.WithLogger(b.app.log),
		widget.WithBus(b.app.bus),
		widget.WithFrameWidth(1),
	)
	// Terminal cells are coarse; a couple of cells already is a drag.
	pcfg := pointer.DefaultConfig()
	pcfg.MoveThreshold = 2
	b.app.host.Attach(b.app.widget, pcfg)
	b.initOrder = append(b.initOrder, "widget")
	return nil
}

// initLayoutWatch reloads the layout file when it changes.
func (b *bootstrapper) initLayoutWatch() error {
	if b.opts.NoWatch || b.app.layout.Path == "" {
		return nil
	}
	r, err := layout.Watch(b.app.layout.Path, b.app.bus, b.app.loop.Post, b.app.setLayout, b.app.log)
	if err != nil {
		b.app.log.Warn("layout live reload disabled", "error", err)
		return nil
	}
	b.app.reloader = r
	b.initOrder = append(b.initOrder, "layoutWatch")
	return nil
}

// initSubscriptions registers the event handlers that tie components
// together.
func (b *bootstrapper) initSubscriptions() error {
	b.app.subs = newSubscriptionManager(b.app)
	if err := b.app.subs.setupSubscriptions(); err != nil {
		return &InitError{Component: "subscriptions", Err: err}
	}
	b.initOrder = append(b.initOrder, "subscriptions")
	return nil
}

// cleanup shuts down components that were initialized, in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		_ = b.app.closeComponent(b.initOrder[i])
	}
}

// scriptTarget applies script commands to the keyboard. The runner is
// created before the keyboard, so the target looks it up when called.
type scriptTarget struct {
	app *Application
}

func (t *scriptTarget) TypeText(text string) {
	t.app.keyboard.TypeText(text)
}

func (t *scriptTarget) PressKeyName(name string) error {
	return t.app.keyboard.PressKeyName(name)
}
