// Package selection holds the per-chat product selection and active
// category, mirrored to durable storage after every mutation.
package selection

import "sync"

// State is the durable shape of one chat's selection.
type State struct {
	Items    []string `json:"itemList"`
	Category string   `json:"selectedCategory"`
}

// Repository abstracts persistence of selection state. Load must fail soft:
// absent or unreadable state degrades to the zero State, never an error
// that would take the session down.
type Repository interface {
	Save(chatID int64, st State) error
	Load(chatID int64) State
}

type Store struct {
	mu    sync.RWMutex
	chats map[int64]*State
	repo  Repository
}

// NewStore creates a store backed by repo. A nil repo keeps the store
// purely in-memory, which the tests use.
func NewStore(repo Repository) *Store {
	return &Store{chats: make(map[int64]*State), repo: repo}
}

// Toggle flips membership of name: removes it when present, appends it
// otherwise. Insertion order is preserved for display. Returns whether the
// product is selected after the call.
func (s *Store) Toggle(chatID int64, name string) (bool, error) {
	s.mu.Lock()
	st := s.state(chatID)
	selected := false
	if contains(st.Items, name) {
		st.Items = remove(st.Items, name)
	} else {
		st.Items = append(st.Items, name)
		selected = true
	}
	snapshot := snapshotOf(st)
	s.mu.Unlock()
	return selected, s.persist(chatID, snapshot)
}

func (s *Store) IsSelected(chatID int64, name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.chats[chatID]
	return ok && contains(st.Items, name)
}

// Names returns the selected product names in insertion order. The slice is
// a copy; callers may not mutate store state through it.
func (s *Store) Names(chatID int64) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.chats[chatID]
	if !ok {
		return nil
	}
	out := make([]string, len(st.Items))
	copy(out, st.Items)
	return out
}

// Clear empties the selection, keeping the category. Invoked on category
// change before the new product set renders.
func (s *Store) Clear(chatID int64) error {
	s.mu.Lock()
	st := s.state(chatID)
	st.Items = nil
	snapshot := snapshotOf(st)
	s.mu.Unlock()
	return s.persist(chatID, snapshot)
}

func (s *Store) SetCategory(chatID int64, category string) error {
	s.mu.Lock()
	st := s.state(chatID)
	st.Category = category
	snapshot := snapshotOf(st)
	s.mu.Unlock()
	return s.persist(chatID, snapshot)
}

func (s *Store) Category(chatID int64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.chats[chatID]
	if !ok {
		return ""
	}
	return st.Category
}

// Restore rehydrates the chat's state from the repository, replacing any
// in-memory state. Missing or corrupt stored data yields an empty state.
func (s *Store) Restore(chatID int64) State {
	var st State
	if s.repo != nil {
		st = s.repo.Load(chatID)
	}
	s.mu.Lock()
	cp := st
	s.chats[chatID] = &cp
	s.mu.Unlock()
	return st
}

func (s *Store) state(chatID int64) *State {
	st, ok := s.chats[chatID]
	if !ok {
		st = &State{}
		s.chats[chatID] = st
	}
	return st
}

func (s *Store) persist(chatID int64, st State) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Save(chatID, st)
}

// snapshotOf copies the state so persistence never shares a slice with
// later in-memory mutations.
func snapshotOf(st *State) State {
	out := State{Category: st.Category}
	if len(st.Items) > 0 {
		out.Items = append([]string(nil), st.Items...)
	}
	return out
}

func contains(items []string, name string) bool {
	for _, it := range items {
		if it == name {
			return true
		}
	}
	return false
}

func remove(items []string, name string) []string {
	var out []string
	for _, it := range items {
		if it != name {
			out = append(out, it)
		}
	}
	return out
}
