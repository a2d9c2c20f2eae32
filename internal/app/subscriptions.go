package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/dshills/osk/internal/config/notify"
	"github.com/dshills/osk/internal/event"
)

// subscriptionManager manages event bus and settings subscriptions for the
// application.
type subscriptionManager struct {
	mu            sync.Mutex
	subscriptions []*event.Subscription
	observers     []*notify.Subscription
	app           *Application
}

// newSubscriptionManager creates a new subscription manager.
func newSubscriptionManager(app *Application) *subscriptionManager {
	return &subscriptionManager{app: app}
}

// setupSubscriptions registers all event subscriptions.
func (sm *subscriptionManager) setupSubscriptions() error {
	// Settings changes -> keyboard and window
	sm.addObserver(sm.app.config.Subscribe(sm.handleConfigChange))

	handlers := []struct {
		topic event.Topic
		fn    event.HandlerFunc
	}{
		{event.TopicQuit, sm.handleQuit},
		{event.TopicPreferences, sm.handlePreferences},
		{event.TopicSnippetEdit, sm.handleSnippetEdit},
		{event.TopicLayoutReloaded, sm.handleLayoutReloaded},
		{event.TopicWindowVisibility, sm.handleVisibility},
	}
	for _, h := range handlers {
		sub, err := sm.app.bus.Subscribe(h.topic, h.fn)
		if err != nil {
			return err
		}
		sm.addSubscription(sub)
	}
	return nil
}

// addSubscription adds a subscription to be managed.
func (sm *subscriptionManager) addSubscription(sub *event.Subscription) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.subscriptions = append(sm.subscriptions, sub)
}

func (sm *subscriptionManager) addObserver(sub *notify.Subscription) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.observers = append(sm.observers, sub)
}

// cleanup unsubscribes from everything.
func (sm *subscriptionManager) cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for _, sub := range sm.subscriptions {
		_ = sm.app.bus.Unsubscribe(sub)
	}
	sm.subscriptions = nil
	for _, sub := range sm.observers {
		sub.Unsubscribe()
	}
	sm.observers = nil
}

// handleConfigChange runs on whichever goroutine changed the settings, so
// the work is moved to the loop.
func (sm *subscriptionManager) handleConfigChange(change notify.Change) {
	sm.app.loop.Post(func() {
		sm.app.log.Debug("settings changed", "path", change.Path, "source", change.Source)
		sm.app.widget.ApplySettings()
		sm.app.keyboard.UpdateUI()
		if change.Type == notify.ChangeReload {
			sm.app.bus.Emit(event.TopicConfigReloaded, event.Reloaded{Path: sm.app.config.Path()}, "app")
		}
	})
}

func (sm *subscriptionManager) handleQuit(event.Event) {
	if sm.app.config.Current().Lockdown.DisableQuit {
		sm.app.log.Warn("quit ignored", "error", ErrLockedDown)
		return
	}
	sm.app.Quit()
}

func (sm *subscriptionManager) handleLayoutReloaded(ev event.Event) {
	r, ok := ev.Payload.(event.Reloaded)
	if ok && r.Err != nil {
		sm.app.log.Warn("layout reload failed, keeping current layout", "path", r.Path, "error", r.Err)
	}
}

func (sm *subscriptionManager) handleVisibility(ev event.Event) {
	if v, ok := ev.Payload.(event.WindowVisibility); ok {
		sm.app.log.Debug("window visibility", "visible", v.Visible)
	}
}

// handlePreferences opens the settings file in an editor. The settings are
// reloaded when the editor exits.
func (sm *subscriptionManager) handlePreferences(event.Event) {
	if err := sm.app.EditSettings(); err != nil {
		sm.app.log.Error("edit settings", "error", err)
	}
}

// handleSnippetEdit asks the user for the missing snippet.
func (sm *subscriptionManager) handleSnippetEdit(ev event.Event) {
	req, ok := ev.Payload.(event.SnippetEdit)
	if !ok {
		return
	}
	if err := sm.app.EditSnippet(req.ID); err != nil {
		sm.app.log.Error("edit snippet", "error", err)
	}
}

// EditSettings suspends the keyboard window and runs the editor on the
// settings file. Must be called on the loop.
func (app *Application) EditSettings() error {
	path := app.config.Path()
	if app.config.Current().Lockdown.DisablePreferences {
		return NewOperationError("edit settings", path, ErrLockedDown)
	}
	if err := os.MkdirAll(app.config.Dir(), 0o755); err != nil {
		return NewOperationError("edit settings", path, err)
	}

	editor := app.editor()
	err := app.host.Suspend(func() error {
		args := strings.Fields(editor)
		if len(args) == 0 {
			return errors.New("no editor configured")
		}
		cmd := exec.Command(args[0], append(args[1:], path)...)
		cmd.Stdin = app.in()
		cmd.Stdout = app.out()
		cmd.Stderr = os.Stderr
		return cmd.Run()
	})
	if err != nil {
		return NewOperationError("edit settings", path, err).WithContext(editor)
	}
	if !app.opts.NoWatch {
		return nil
	}
	return WrapError(app.config.Reload(), "reload %s", path)
}

func (app *Application) editor() string {
	if app.opts.Editor != "" {
		return app.opts.Editor
	}
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if e := strings.TrimSpace(os.Getenv(env)); e != "" {
			return e
		}
	}
	return "vi"
}

// EditSnippet prompts for the label and text of snippet id, stores it and
// lets the keyboard leave snippet editing. An empty text leaves the
// snippet unset. Must be called on the loop.
func (app *Application) EditSnippet(id int) error {
	target := strconv.Itoa(id)
	defer app.keyboard.FinishSnippetEdit()

	var label, text string
	err := app.host.Suspend(func() error {
		var err error
		label, text, err = promptSnippet(app.in(), app.out(), id)
		return err
	})
	if err != nil {
		return NewOperationError("edit snippet", target, err)
	}
	if text == "" {
		app.log.Info("snippet left empty", "id", id)
		return nil
	}
	if label == "" {
		label = text
	}
	if err := app.snippets.Set(id, label, text); err != nil {
		return NewOperationError("edit snippet", target, err)
	}
	if err := app.saveSnippets(); err != nil {
		return NewOperationError("save snippets", app.config.Current().Paths.Snippets, err)
	}
	app.keyboard.UpdateUI()
	return nil
}

func promptSnippet(in io.Reader, out io.Writer, id int) (label, text string, err error) {
	r := bufio.NewReader(in)
	read := func(prompt string) (string, error) {
		if _, err := fmt.Fprint(out, prompt); err != nil {
			return "", err
		}
		line, err := r.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	if _, err := fmt.Fprintf(out, "New snippet %d\n", id); err != nil {
		return "", "", err
	}
	if label, err = read("Label: "); err != nil {
		return "", "", err
	}
	if text, err = read("Text: "); err != nil {
		return "", "", err
	}
	return label, text, nil
}

func (app *Application) in() io.Reader {
	if app.opts.In != nil {
		return app.opts.In
	}
	return os.Stdin
}

func (app *Application) out() io.Writer {
	if app.opts.Out != nil {
		return app.opts.Out
	}
	return os.Stdout
}
