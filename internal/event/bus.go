package event

import (
	"runtime/debug"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/osk/internal/logging"
)

// HandlerFunc handles one event.
type HandlerFunc func(ev Event)

// Subscription is a handle returned by Subscribe.
type Subscription struct {
	ID      uuid.UUID
	Pattern Topic
	handler HandlerFunc
	once    bool
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*Subscription)

// WithOnce removes the subscription after its first delivery.
func WithOnce() SubscriptionOption {
	return func(s *Subscription) {
		s.once = true
	}
}

// Bus delivers events to the handlers whose pattern matches, in
// subscription order.
type Bus struct {
	mu   sync.RWMutex
	subs []*Subscription
	log  *logging.Logger
}

// NewBus creates an empty bus.
func NewBus(log *logging.Logger) *Bus {
	return &Bus{log: logging.OrDefault(log).WithComponent("event")}
}

// Subscribe registers fn for topics matching pattern.
func (b *Bus) Subscribe(pattern Topic, fn HandlerFunc, opts ...SubscriptionOption) (*Subscription, error) {
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}
	if fn == nil {
		return nil, ErrNilHandler
	}
	sub := &Subscription{ID: uuid.New(), Pattern: pattern, handler: fn}
	for _, opt := range opts {
		opt(sub)
	}
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub, nil
}

// Unsubscribe removes sub.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s == sub {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return nil
		}
	}
	return ErrSubscriptionNotFound
}

// Count returns the number of live subscriptions.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers ev and returns the number of handlers that ran.
func (b *Bus) Publish(ev Event) (int, error) {
	if !ev.Topic.IsValid() {
		return 0, ErrInvalidTopic
	}

	b.mu.Lock()
	var matched []*Subscription
	kept := b.subs[:0:0]
	for _, s := range b.subs {
		if ev.Topic.Matches(s.Pattern) {
			matched = append(matched, s)
			if s.once {
				continue
			}
		}
		kept = append(kept, s)
	}
	b.subs = kept
	b.mu.Unlock()

	for _, s := range matched {
		b.deliver(s, ev)
	}
	return len(matched), nil
}

// Emit is Publish for callers that have no use for the result.
func (b *Bus) Emit(t Topic, payload any, source string) {
	if _, err := b.Publish(New(t, payload, source)); err != nil {
		b.log.Warn("publish failed", "topic", t, "error", err)
	}
}

func (b *Bus) deliver(s *Subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				"topic", ev.Topic,
				"subscription", s.ID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	s.handler(ev)
}
