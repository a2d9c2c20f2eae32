// Package config provides the configuration system for osk.
//
// # Architecture
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Session                 │  ← runtime toggles, highest priority
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← OSK_SECTION_SETTING
//	├─────────────────────────────┤
//	│  2. User Settings           │  ← ~/.config/osk/settings.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← lowest priority
//	└─────────────────────────────┘
//
// The merged layers are decoded into an immutable Settings snapshot. The
// keyboard reads settings only through Current, so a reload simply swaps
// the snapshot.
//
// # Sub-packages
//
//   - layer: layer storage and priority merging
//   - loader: TOML files and environment variables
//   - notify: change observers
//   - watcher: fsnotify based live reload
//
// # Live Reload
//
// With the watcher enabled, edits to settings.toml are picked up
// automatically. Observers run on the watcher goroutine; callers that own
// state on the event loop must post the work there.
package config
