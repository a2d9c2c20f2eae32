package event

import "errors"

// Sentinel errors for the event bus.
var (
	// ErrInvalidTopic is returned when a topic is empty or malformed.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrSubscriptionNotFound is returned when trying to unsubscribe a
	// non-existent subscription.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
