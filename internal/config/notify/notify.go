// Package notify delivers configuration change notifications to
// observers, either for every change or for a path and its children.
package notify

import (
	"sort"
	"sync"
)

// ChangeType represents the type of configuration change.
type ChangeType int

const (
	// ChangeSet indicates a value was set or updated.
	ChangeSet ChangeType = iota

	// ChangeReload indicates the entire configuration was reloaded.
	ChangeReload
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeSet:
		return "set"
	case ChangeReload:
		return "reload"
	default:
		return "unknown"
	}
}

// Change represents a configuration change event.
type Change struct {
	// Path is the dot-separated path to the changed setting.
	// Empty for reload events.
	Path string

	Type     ChangeType
	OldValue any
	NewValue any

	// Source identifies where the change came from.
	Source string
}

// Observer is called when configuration changes occur.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

type entry struct {
	path     string
	observer Observer
}

// Notifier manages configuration change subscriptions. Observers run on
// the goroutine that calls Notify, in subscription order.
type Notifier struct {
	mu      sync.RWMutex
	entries map[uint64]entry
	nextID  uint64
}

// New creates a new Notifier.
func New() *Notifier {
	return &Notifier{entries: make(map[uint64]entry)}
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.SubscribePath("", observer)
}

// SubscribePath registers an observer for changes to a path. Subscribing
// to "keyboard" receives changes to "keyboard.long_press_delay". Reloads
// reach every observer.
func (n *Notifier) SubscribePath(path string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	n.entries[n.nextID] = entry{path: path, observer: observer}
	return &Subscription{id: n.nextID, notifier: n}
}

// Notify sends a change notification to all relevant observers.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	ids := make([]uint64, 0, len(n.entries))
	for id, e := range n.entries {
		if change.Type == ChangeReload || matches(e.path, change.Path) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	observers := make([]Observer, len(ids))
	for i, id := range ids {
		observers[i] = n.entries[id].observer
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(change)
	}
}

// NotifySet is a convenience method for set changes.
func (n *Notifier) NotifySet(path string, oldValue, newValue any, source string) {
	n.Notify(Change{Path: path, Type: ChangeSet, OldValue: oldValue, NewValue: newValue, Source: source})
}

// NotifyReload is a convenience method for reload events.
func (n *Notifier) NotifyReload(source string) {
	n.Notify(Change{Type: ChangeReload, Source: source})
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.entries, id)
}

// matches reports whether an observer of path wants a change of child.
func matches(path, child string) bool {
	if path == "" || path == child {
		return true
	}
	return len(child) > len(path) && child[:len(path)] == path && child[len(path)] == '.'
}
