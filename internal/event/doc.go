// Package event is the keyboard's small publish/subscribe bus.
//
// Components that must not know about each other (the keyboard, the host,
// the configuration watcher) talk through topics:
//
//	snippet.edit      - a snippet key with no text was pressed
//	config.reloaded   - settings changed on disk
//	layout.reloaded   - the layout file changed on disk
//	window.visibility - the keyboard was shown or hidden
//	app.quit          - the user asked to quit
//	app.preferences   - the user asked to edit the settings
//
// # Wildcard Patterns
//
// Subscriptions may use wildcards:
//
//	"*"  matches exactly one segment ("config.*" matches "config.reloaded")
//	"**" matches zero or more segments ("**" matches everything)
//
// Delivery is synchronous on the publishing goroutine, which in osk is
// always the event loop. A handler that panics is logged and the remaining
// handlers still run.
package event
