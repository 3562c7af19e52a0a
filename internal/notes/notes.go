// Package notes implements the note store: an in-memory map
// of notes keyed by id, loaded from the append-only notes log on
// startup, and mutated only by the dispatcher. Every mutation appends a
// new revision; edit and archive never rewrite a prior line.
package notes

import (
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/noted-app/noted/internal/logstore"
)

// Status is a note's lifecycle state.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Note is one revision of a note. The id is assigned once
// at creation and never changes; later revisions carrying the same id
// supersede earlier ones on replay.
type Note struct {
	ID        string    `json:"id"`
	Links     []string  `json:"links"`
	CreatedAt time.Time `json:"created_at"`
	Text      string    `json:"text"`
	Status    Status    `json:"status"`
	Revision  int       `json:"revision"`
}

// Store is the in-memory note map. It is not safe for concurrent use:
// all operations are invoked only from the dispatcher's single
// goroutine.
type Store struct {
	log    *logstore.Store[Note]
	logger *log.Logger
	notes  map[string]Note
}

// New constructs an empty Store backed by the given log.
func New(log *logstore.Store[Note], logger *log.Logger) *Store {
	return &Store{log: log, logger: logger, notes: make(map[string]Note)}
}

// Load replays the notes log into memory. The log is read in file order
// and inserted into the map keyed by id, so later writes overwrite
// earlier ones and the result is exactly one entry per id, equal to its
// last logged revision.
func (s *Store) Load() (skipped int, err error) {
	records, skipped, err := s.log.LoadAll()
	if err != nil {
		return 0, err
	}
	for _, n := range records {
		s.notes[n.ID] = n
	}
	return skipped, nil
}

// Add constructs a new note with a freshly minted id, appends it, and
// inserts it into the map. Returns the new id.
func (s *Store) Add(text string, links []string) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()
	n := Note{
		ID:        id,
		Links:     links,
		CreatedAt: time.Now(),
		Text:      text,
		Status:    StatusActive,
		Revision:  0,
	}
	if err := s.log.Append(n); err != nil {
		return "", err
	}
	s.notes[id] = n
	return id, nil
}

// Edit replaces a note's text, appending a new revision. If id does not
// exist this is a no-op that logs a warning.
func (s *Store) Edit(id, text string) {
	n, ok := s.notes[id]
	if !ok {
		if s.logger != nil {
			s.logger.Printf("notes: edit of unknown id %s ignored", id)
		}
		return
	}
	n.Text = text
	n.Revision++
	if err := s.log.Append(n); err != nil {
		if s.logger != nil {
			s.logger.Printf("notes: append edit revision failed: %v", err)
		}
		return
	}
	s.notes[id] = n
}

// Archive marks a note Archived, appending a new revision. If id does
// not exist this is a no-op that logs a warning.
func (s *Store) Archive(id string) {
	n, ok := s.notes[id]
	if !ok {
		if s.logger != nil {
			s.logger.Printf("notes: archive of unknown id %s ignored", id)
		}
		return
	}
	n.Status = StatusArchived
	n.Revision++
	if err := s.log.Append(n); err != nil {
		if s.logger != nil {
			s.logger.Printf("notes: append archive revision failed: %v", err)
		}
		return
	}
	s.notes[id] = n
}

// NotesForLink returns active notes whose link list contains label,
// newest first.
func (s *Store) NotesForLink(label string) []Note {
	var out []Note
	for _, n := range s.notes {
		if n.Status != StatusActive {
			continue
		}
		if !contains(n.Links, label) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func contains(links []string, label string) bool {
	for _, l := range links {
		if l == label {
			return true
		}
	}
	return false
}
