package event

import "strings"

// Topic is a hierarchical event type using dot notation.
type Topic string

// Wildcard constants for pattern matching.
const (
	WildcardSingle = "*"
	WildcardMulti  = "**"
	Separator      = "."
)

// Topics published by osk components.
const (
	TopicSnippetEdit      Topic = "snippet.edit"
	TopicConfigReloaded   Topic = "config.reloaded"
	TopicLayoutReloaded   Topic = "layout.reloaded"
	TopicWindowVisibility Topic = "window.visibility"
	TopicQuit             Topic = "app.quit"
	TopicPreferences      Topic = "app.preferences"
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the topic split by the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// IsValid reports whether the topic is non-empty and has no empty segments.
func (t Topic) IsValid() bool {
	if t == "" {
		return false
	}
	for _, seg := range t.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}

// Matches returns true if this topic matches the given pattern.
func (t Topic) Matches(pattern Topic) bool {
	return matchSegments(t.Segments(), pattern.Segments())
}

func matchSegments(topic, pattern []string) bool {
	ti, pi := 0, 0
	for pi < len(pattern) {
		if pattern[pi] == WildcardMulti {
			for ti <= len(topic) {
				if matchSegments(topic[ti:], pattern[pi+1:]) {
					return true
				}
				ti++
			}
			return false
		}
		if ti >= len(topic) {
			return false
		}
		if pattern[pi] != WildcardSingle && pattern[pi] != topic[ti] {
			return false
		}
		ti++
		pi++
	}
	return ti == len(topic)
}
