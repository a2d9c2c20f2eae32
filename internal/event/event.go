package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is a published message.
type Event struct {
	Topic     Topic
	Payload   any
	ID        uuid.UUID
	Timestamp time.Time
	// Source names the publishing component.
	Source string
}

// New creates an event with a fresh id.
func New(t Topic, payload any, source string) Event {
	return Event{
		Topic:     t,
		Payload:   payload,
		ID:        uuid.New(),
		Timestamp: time.Now(),
		Source:    source,
	}
}

// SnippetEdit asks the host to let the user fill in an empty snippet.
type SnippetEdit struct {
	ID int
}

// WindowVisibility reports a finished show or hide.
type WindowVisibility struct {
	Visible bool
}

// Reloaded reports a file that was reloaded from disk.
type Reloaded struct {
	Path string
	Err  error
}
