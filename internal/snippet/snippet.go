// Package snippet stores the text snippets that macro keys type.
//
// Snippets are addressed by a small integer id, the payload of a macro key.
// A key whose snippet is empty asks the user to define one.
package snippet

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrSnippetNotFound is returned for ids without a snippet.
var ErrSnippetNotFound = errors.New("snippet not found")

// Snippet is a labeled piece of text.
type Snippet struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Store holds snippets in memory. It is safe for concurrent use so the CLI
// and the running keyboard can share the same code.
type Store struct {
	mu       sync.RWMutex
	snippets map[int]Snippet
	dirty    bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{snippets: make(map[int]Snippet)}
}

// Get returns the snippet with the given id.
func (s *Store) Get(id int) (Snippet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sn, ok := s.snippets[id]
	return sn, ok
}

// Text returns the snippet text for id, or "" if there is none.
func (s *Store) Text(id int) string {
	sn, _ := s.Get(id)
	return sn.Text
}

// Set creates or replaces a snippet.
func (s *Store) Set(id int, label, text string) error {
	if id < 0 {
		return fmt.Errorf("invalid snippet id %d", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snippets[id] = Snippet{ID: id, Label: label, Text: text}
	s.dirty = true
	return nil
}

// Delete removes a snippet.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snippets[id]; !ok {
		return fmt.Errorf("%w: %d", ErrSnippetNotFound, id)
	}
	delete(s.snippets, id)
	s.dirty = true
	return nil
}

// List returns all snippets ordered by id.
func (s *Store) List() []Snippet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Snippet, 0, len(s.snippets))
	for _, sn := range s.snippets {
		out = append(out, sn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of snippets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snippets)
}

// Dirty reports whether the store changed since it was last loaded or saved.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *Store) replace(list []Snippet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snippets = make(map[int]Snippet, len(list))
	for _, sn := range list {
		s.snippets[sn.ID] = sn
	}
	s.dirty = false
}
