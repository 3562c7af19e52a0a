package notes

import (
	"path/filepath"
	"slices"
	"testing"

	"github.com/noted-app/noted/internal/logstore"
)

func newTestStore(t *testing.T, path string) *Store {
	t.Helper()
	return New(logstore.New[Note](path), nil)
}

// S1 — add and retrieve.
func TestAddAndRetrieve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	s := newTestStore(t, path)

	id, err := s.Add("hello", []string{"X"})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if id == "" {
		t.Fatal("Add() returned empty id")
	}

	got := s.NotesForLink("X")
	if len(got) != 1 {
		t.Fatalf("NotesForLink(X) = %d notes, want 1", len(got))
	}
	if got[0].Text != "hello" {
		t.Errorf("Text = %q, want %q", got[0].Text, "hello")
	}
	if got[0].Status != StatusActive {
		t.Errorf("Status = %q, want %q", got[0].Status, StatusActive)
	}
}

// S2 — archive removes from active view.
func TestArchiveRemovesFromActiveView(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	s := newTestStore(t, path)

	id, err := s.Add("hello", []string{"X"})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	s.Archive(id)

	got := s.NotesForLink("X")
	if len(got) != 0 {
		t.Fatalf("NotesForLink(X) after archive = %d notes, want 0", len(got))
	}
}

// S4 — restart: the note store rebuilt from the log matches the
// pre-restart in-memory state.
func TestRestartReplaysLastRevisionPerID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	s := newTestStore(t, path)

	id, err := s.Add("hello", []string{"X"})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	before := s.NotesForLink("X")

	restarted := newTestStore(t, path)
	if _, err := restarted.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	after := restarted.NotesForLink("X")

	if len(before) != 1 || len(after) != 1 {
		t.Fatalf("before = %d, after = %d, want 1 each", len(before), len(after))
	}
	b, a := before[0], after[0]
	if a.ID != b.ID || a.Text != b.Text || a.Status != b.Status || a.Revision != b.Revision ||
		!slices.Equal(a.Links, b.Links) || !a.CreatedAt.Equal(b.CreatedAt) {
		t.Errorf("after restart = %+v, want %+v", after[0], before[0])
	}
	if after[0].ID != id {
		t.Errorf("ID = %q, want %q", after[0].ID, id)
	}
}

func TestLoadKeepsOnlyLastRevisionPerID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	s := newTestStore(t, path)

	id, err := s.Add("v0", []string{"X"})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	s.Edit(id, "v1")
	s.Edit(id, "v2")

	restarted := newTestStore(t, path)
	if _, err := restarted.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	got := restarted.NotesForLink("X")
	if len(got) != 1 {
		t.Fatalf("NotesForLink(X) = %d notes, want 1", len(got))
	}
	if got[0].Text != "v2" {
		t.Errorf("Text = %q, want %q", got[0].Text, "v2")
	}
	if got[0].Revision != 2 {
		t.Errorf("Revision = %d, want 2", got[0].Revision)
	}
}

func TestEditUnknownIDIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	s := newTestStore(t, path)

	s.Edit("does-not-exist", "text")

	records, _, err := logstore.New[Note](path).LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("log has %d records after no-op edit, want 0", len(records))
	}
}

func TestNotesForLinkOrderedNewestFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	s := newTestStore(t, path)

	if _, err := s.Add("first", []string{"X"}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if _, err := s.Add("second", []string{"X"}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	got := s.NotesForLink("X")
	if len(got) != 2 {
		t.Fatalf("NotesForLink(X) = %d notes, want 2", len(got))
	}
	if got[0].Text != "second" || got[1].Text != "first" {
		t.Errorf("order = [%q, %q], want [second, first]", got[0].Text, got[1].Text)
	}
}
