package app

import (
	"context"
	"errors"

	"github.com/dshills/osk/internal/layout"
	"github.com/dshills/osk/internal/loop"
	"github.com/dshills/osk/internal/snippet"
)

// Run shows the keyboard and processes input until ctx is done or Quit is
// called. Components are shut down before Run returns.
func (app *Application) Run(ctx context.Context) error {
	if app.closed.Load() {
		return ErrClosed
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	app.mu.Lock()
	app.cancel = cancel
	app.mu.Unlock()

	app.scripts.Start(ctx)
	go app.host.Run(ctx)
	app.loop.Post(func() {
		app.keyboard.UpdateUI()
		app.widget.SetVisible(true)
	})

	err := app.loop.Run(ctx)
	shutdownErr := app.Shutdown()
	if errors.Is(err, loop.ErrStopped) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return err
	}
	return shutdownErr
}

// Quit makes Run return. Safe to call from any goroutine.
func (app *Application) Quit() {
	app.log.Info("quit requested")
	app.loop.Stop()
}

// Shutdown releases every component in reverse start order. Held keys are
// released first so nothing stays pressed after exit. It is safe to call
// more than once; only the first call does work.
func (app *Application) Shutdown() error {
	errs := NewErrorList()
	app.shutdown.Do(func() {
		app.closed.Store(true)
		app.mu.Lock()
		if app.cancel != nil {
			app.cancel()
		}
		app.mu.Unlock()

		for _, name := range []string{
			"subscriptions", "layoutWatch", "widget", "terminal", "keyboard",
			"scripts", "snippets", "predictor", "mousetweaks", "uinput",
			"config", "logging",
		} {
			errs.AddComponent(name, "close", app.closeComponent(name))
		}
	})
	return errs.AsError()
}

// closeComponent releases one component by its init name. Components that
// were never started are skipped.
func (app *Application) closeComponent(name string) error {
	switch name {
	case "subscriptions":
		if app.subs != nil {
			app.subs.cleanup()
		}
	case "layoutWatch":
		if app.reloader != nil {
			return app.reloader.Close()
		}
	case "widget":
		if app.widget != nil {
			app.widget.Close()
		}
	case "terminal":
		if app.host != nil {
			app.host.Close()
		}
	case "keyboard":
		if app.keyboard != nil {
			app.keyboard.Cleanup()
		}
	case "scripts":
		if app.scripts != nil {
			app.scripts.Close()
		}
	case "snippets":
		return app.saveSnippets()
	case "predictor":
		if app.predictor != nil {
			return app.predictor.Close()
		}
	case "mousetweaks":
		if app.mousetweaks != nil {
			return app.mousetweaks.Close()
		}
	case "uinput":
		if app.closeSink != nil {
			return app.closeSink()
		}
	case "config":
		if app.config != nil {
			return app.config.Close()
		}
	case "logging":
		if app.log != nil && app.opts.Logger == nil {
			return app.log.Close()
		}
	}
	return nil
}

// saveSnippets writes the snippet store if it changed.
func (app *Application) saveSnippets() error {
	if app.snippets == nil || !app.snippets.Dirty() {
		return nil
	}
	return snippet.Save(app.snippets, app.config.Current().Paths.Snippets)
}

// setLayout switches the keyboard to a reloaded layout. Runs on the loop.
func (app *Application) setLayout(l *layout.Layout) {
	app.layout = l
	app.keyboard.SetLayout(l)
	app.host.Fit()
	app.host.Invalidate()
}
