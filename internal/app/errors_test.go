package app

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/osk/internal/config"
	"github.com/dshills/osk/internal/logging"
)

// blockedSnippets returns settings whose snippet file sits below a regular
// file, so saving it always fails.
func blockedSnippets(t *testing.T) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	return fmt.Sprintf("[paths]\nsnippets = %q\n", filepath.Join(file, "snippets.json"))
}

func TestInitErrorForBrokenSettings(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte("[keyboard"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := New(Options{
		ConfigDir: dir,
		DataDir:   t.TempDir(),
		DryRun:    true,
		NoWatch:   true,
		Screen:    tcell.NewSimulationScreen("UTF-8"),
		Logger:    logging.Discard(),
	})

	var initErr *InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("New() error = %v, want *InitError", err)
	}
	if initErr.Component != "config" {
		t.Errorf("Component = %q, want %q", initErr.Component, "config")
	}
	if !strings.HasPrefix(err.Error(), "init config: ") {
		t.Errorf("Error() = %q, want prefix %q", err.Error(), "init config: ")
	}
	var pe *config.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("error %v does not wrap *config.ParseError", err)
	}
}

func TestEditSettingsLockdownError(t *testing.T) {
	app := newTestApp(t, "[lockdown]\ndisable_preferences = true\n", nil)

	err := app.EditSettings()
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("EditSettings() error = %v, want *OperationError", err)
	}
	if opErr.Op != "edit settings" || opErr.Target != app.Config().Path() {
		t.Errorf("OperationError = %+v", opErr)
	}
	want := "edit settings " + app.Config().Path() + ": disabled by lockdown settings"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestEditSettingsEditorFailure(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("no false(1) on this system")
	}
	app := newTestApp(t, "", func(o *Options) {
		o.Editor = "false"
		o.Out = &bytes.Buffer{}
	})

	err := app.EditSettings()
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("EditSettings() error = %v, want *OperationError", err)
	}
	if opErr.Context != "false" {
		t.Errorf("Context = %q, want the editor command", opErr.Context)
	}
	if !strings.Contains(err.Error(), "(false): ") {
		t.Errorf("Error() = %q, want the editor in parentheses", err.Error())
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Errorf("error %v does not wrap *exec.ExitError", err)
	}
}

func TestEditSettingsReloadError(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("no sh(1) on this system")
	}
	script := filepath.Join(t.TempDir(), "edit.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho '[keyboard' > \"$1\"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	app := newTestApp(t, "", func(o *Options) {
		o.Editor = script
		o.Out = &bytes.Buffer{}
	})

	err := app.EditSettings()
	if err == nil {
		t.Fatal("EditSettings() error = nil, want a reload error")
	}
	if !strings.HasPrefix(err.Error(), "reload "+app.Config().Path()+": ") {
		t.Errorf("Error() = %q", err.Error())
	}
	var pe *config.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("error %v does not wrap *config.ParseError", err)
	}
}

func TestEditSnippetSaveError(t *testing.T) {
	app := newTestApp(t, blockedSnippets(t), func(o *Options) {
		o.In = strings.NewReader("hi\nhello\n")
		o.Out = &bytes.Buffer{}
	})

	err := app.EditSnippet(2)
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("EditSnippet() error = %v, want *OperationError", err)
	}
	if opErr.Op != "save snippets" {
		t.Errorf("Op = %q, want %q", opErr.Op, "save snippets")
	}
	if app.Keyboard().EditingSnippet() {
		t.Error("keyboard still editing a snippet")
	}
}

func TestShutdownCollectsCloseErrors(t *testing.T) {
	app := newTestApp(t, blockedSnippets(t), nil)
	if err := app.Snippets().Set(1, "a", "b"); err != nil {
		t.Fatal(err)
	}

	err := app.Shutdown()
	var list *ErrorList
	if !errors.As(err, &list) {
		t.Fatalf("Shutdown() error = %v, want *ErrorList", err)
	}
	if list.Len() != 1 {
		t.Fatalf("Len() = %d, want 1: %v", list.Len(), list.Errors())
	}

	var compErr *ComponentError
	if !errors.As(err, &compErr) {
		t.Fatalf("error %v does not contain a *ComponentError", err)
	}
	if compErr.Component != "snippets" || compErr.Action != "close" {
		t.Errorf("ComponentError = %+v", compErr)
	}
	if !strings.HasPrefix(err.Error(), "snippets: close: ") {
		t.Errorf("Error() = %q", err.Error())
	}

	// The second call reports nothing; everything was already closed.
	if err := app.Shutdown(); err != nil {
		t.Errorf("second Shutdown() = %v, want nil", err)
	}
}

func TestErrorListSummary(t *testing.T) {
	var errs ErrorList
	if errs.AsError() != nil {
		t.Fatal("empty list should not be an error")
	}

	errs.AddComponent("predictor", "close", nil)
	errs.AddComponent("predictor", "close", errors.New("database is locked"))
	errs.AddComponent("uinput", "close", os.ErrClosed)

	if errs.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", errs.Len())
	}
	want := "2 errors: first: predictor: close: database is locked"
	if got := errs.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(errs.AsError(), os.ErrClosed) {
		t.Error("errors.Is() does not reach a later error")
	}
}

func TestWrapErrorKeepsNil(t *testing.T) {
	if err := WrapError(nil, "reload %s", "settings.toml"); err != nil {
		t.Errorf("WrapError(nil) = %v, want nil", err)
	}
}
