package watcher

import (
	"os"
	"strings"
	"unicode/utf8"
)

// splitNotes implements the marker-splitting rule: the marker is both
// an opening and closing delimiter, so a file containing N paired notes
// splits into 2N+1 pieces, alternating (text, note, text, note, ...,
// text). An even split count, or a single piece, means no notes are
// present.
func splitNotes(content, marker string) (remaining string, extracted []string, found bool) {
	pieces := strings.Split(content, marker)
	if len(pieces) <= 1 || len(pieces)%2 == 0 {
		return content, nil, false
	}

	var text []string
	for i, piece := range pieces {
		if i%2 == 0 {
			text = append(text, piece)
		} else {
			note := strings.TrimSpace(piece)
			if note != "" {
				extracted = append(extracted, note)
			}
		}
	}
	return strings.Join(text, "") + "\n", extracted, len(extracted) > 0
}

// extractNotes runs inline-note extraction for one modify event: read
// the file, split on the marker, rewrite the marker-free content, and
// fire a NewNote request per extracted note.
func (p *Pool) extractNotes(event Event) {
	for _, path := range event.Paths {
		p.extractNotesFromFile(path, event.Paths)
	}
}

func (p *Pool) extractNotesFromFile(path string, eventPaths []string) {
	data, err := os.ReadFile(path)
	if err != nil {
		p.logf("watcher: reading %s for extraction: %v", path, err)
		return
	}
	if !utf8.Valid(data) {
		// Binary file; silently skip.
		return
	}

	remaining, extracted, found := splitNotes(string(data), p.marker)
	if !found {
		return
	}

	if err := os.WriteFile(path, []byte(remaining), 0o644); err != nil {
		// Do not emit note requests on a write failure; the next
		// modification tick retries.
		p.logf("watcher: rewriting %s after extraction: %v", path, err)
		return
	}

	links := append([]string{}, eventPaths...)
	if title, ok := p.dispatcher.CurrentAppTitle(); ok {
		links = append(links, title)
	}

	for _, note := range extracted {
		p.dispatcher.NewNote(note, links)
	}
}
