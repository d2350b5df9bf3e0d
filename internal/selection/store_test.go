package selection

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

const chatID = int64(100)

func TestToggleAddRemove(t *testing.T) {
	s := NewStore(nil)

	on, err := s.Toggle(chatID, "Foaming Cleanser")
	if err != nil || !on {
		t.Fatalf("first toggle: on=%v err=%v", on, err)
	}
	if !s.IsSelected(chatID, "Foaming Cleanser") {
		t.Fatalf("product not selected after toggle")
	}

	off, err := s.Toggle(chatID, "Foaming Cleanser")
	if err != nil || off {
		t.Fatalf("second toggle: on=%v err=%v", off, err)
	}
	if s.IsSelected(chatID, "Foaming Cleanser") {
		t.Fatalf("product still selected after double toggle")
	}
	if n := s.Names(chatID); len(n) != 0 {
		t.Fatalf("expected empty selection, got %v", n)
	}
}

func TestToggle_PreservesInsertionOrder(t *testing.T) {
	s := NewStore(nil)
	for _, name := range []string{"C", "A", "B"} {
		if _, err := s.Toggle(chatID, name); err != nil {
			t.Fatalf("toggle %s: %v", name, err)
		}
	}
	got := s.Names(chatID)
	want := []string{"C", "A", "B"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	// Removing from the middle keeps the rest in order.
	if _, err := s.Toggle(chatID, "A"); err != nil {
		t.Fatalf("toggle A: %v", err)
	}
	got = s.Names(chatID)
	if len(got) != 2 || got[0] != "C" || got[1] != "B" {
		t.Fatalf("unexpected order after removal: %v", got)
	}
}

func TestNames_CopyOut(t *testing.T) {
	s := NewStore(nil)
	_, _ = s.Toggle(chatID, "Foaming Cleanser")
	names := s.Names(chatID)
	names[0] = "mutated"
	if got := s.Names(chatID); got[0] != "Foaming Cleanser" {
		t.Fatalf("internal state mutated via returned slice")
	}
}

func TestDoubleToggle_LeavesStorageUntouched(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileRepository(dir)
	if err != nil {
		t.Fatalf("repo init: %v", err)
	}
	s := NewStore(repo)
	_, _ = s.Toggle(chatID, "Foaming Cleanser")

	path := filepath.Join(dir, "state_"+strconv.FormatInt(chatID, 10)+".json")
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}

	_, _ = s.Toggle(chatID, "Daily Moisturizer")
	_, _ = s.Toggle(chatID, "Daily Moisturizer")

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("storage changed across a toggle round trip:\nbefore: %s\nafter: %s", before, after)
	}
}

func TestPersistRestore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileRepository(dir)
	if err != nil {
		t.Fatalf("repo init: %v", err)
	}

	s := NewStore(repo)
	if err := s.SetCategory(chatID, "cleansers"); err != nil {
		t.Fatalf("set category: %v", err)
	}
	for _, name := range []string{"Foaming Cleanser", "Hydrating Cleanser"} {
		if _, err := s.Toggle(chatID, name); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}

	// Fresh store over the same repo simulates a reload.
	s2 := NewStore(repo)
	st := s2.Restore(chatID)
	if st.Category != "cleansers" {
		t.Fatalf("category not restored: %q", st.Category)
	}
	got := s2.Names(chatID)
	if len(got) != 2 || got[0] != "Foaming Cleanser" || got[1] != "Hydrating Cleanser" {
		t.Fatalf("selection not restored in order: %v", got)
	}
}

func TestRestore_MissingAndCorruptState(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileRepository(dir)
	if err != nil {
		t.Fatalf("repo init: %v", err)
	}
	s := NewStore(repo)

	if st := s.Restore(chatID); len(st.Items) != 0 || st.Category != "" {
		t.Fatalf("expected empty state for missing file, got %+v", st)
	}

	path := filepath.Join(dir, "state_"+strconv.FormatInt(chatID, 10)+".json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write corrupt state: %v", err)
	}
	if st := s.Restore(chatID); len(st.Items) != 0 || st.Category != "" {
		t.Fatalf("expected empty state for corrupt file, got %+v", st)
	}
}

func TestClear_KeepsCategory(t *testing.T) {
	s := NewStore(nil)
	_ = s.SetCategory(chatID, "haircare")
	_, _ = s.Toggle(chatID, "Elvive Shampoo")
	if err := s.Clear(chatID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n := s.Names(chatID); len(n) != 0 {
		t.Fatalf("selection not cleared: %v", n)
	}
	if c := s.Category(chatID); c != "haircare" {
		t.Fatalf("category lost on clear: %q", c)
	}
}

func TestStores_AreIndependentPerChat(t *testing.T) {
	s := NewStore(nil)
	_, _ = s.Toggle(1, "A")
	_, _ = s.Toggle(2, "B")
	if s.IsSelected(1, "B") || s.IsSelected(2, "A") {
		t.Fatalf("selection leaked across chats")
	}
}
