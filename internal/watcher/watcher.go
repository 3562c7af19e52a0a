// Package watcher implements the file watcher pool: one goroutine per
// watched directory holding a recursive fsnotify subscription, all
// funneling into a single consumer goroutine that normalizes events,
// appends them to the file-change log, and extracts inline notes from
// modified files.
package watcher

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/noted-app/noted/internal/logstore"
)

// Kind is a normalized file-change kind.
type Kind string

const (
	KindAccess Kind = "access"
	KindCreate Kind = "create"
	KindModify Kind = "modify"
	KindRemove Kind = "remove"
)

// Event is a normalized file-change event, appended to the files log.
type Event struct {
	Kind      Kind      `json:"kind"`
	Paths     []string  `json:"paths"`
	Timestamp time.Time `json:"timestamp"`
}

// Dispatcher is the slice of the dispatcher's request vocabulary the
// watcher needs. Keeping it as a narrow interface here (rather than
// importing the dispatcher package) breaks what would otherwise be a
// cyclic package reference: the watcher is a pure request-sender, never
// a holder of note or app state.
type Dispatcher interface {
	// CurrentAppTitle synchronously queries the dispatcher for the
	// currently focused window's title, fixing a consistent snapshot at
	// note-extraction time.
	CurrentAppTitle() (string, bool)
	// NewNote is fire-and-forget.
	NewNote(text string, links []string)
}

// Pool owns one fsnotify.Watcher per configured directory plus the
// single consumer goroutine that drains all of them.
type Pool struct {
	dirs          []string
	changeLogPath string
	marker        string
	log           *logstore.Store[Event]
	dispatcher    Dispatcher
	logger        *log.Logger

	events  chan fsnotify.Event
	fsWatch []*fsnotify.Watcher

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New constructs a Pool. dirs is the list of directories to watch
// recursively (may be empty); changeLogPath is the files-log's own path,
// excluded from events to avoid the watcher re-triggering on its own
// log writes.
func New(dirs []string, changeLogPath, marker string, store *logstore.Store[Event], dispatcher Dispatcher, logger *log.Logger) *Pool {
	return &Pool{
		dirs:          dirs,
		changeLogPath: changeLogPath,
		marker:        marker,
		log:           store,
		dispatcher:    dispatcher,
		logger:        logger,
		events:        make(chan fsnotify.Event, 256),
		stopCh:        make(chan struct{}),
	}
}

// Start spawns one watcher goroutine per directory plus the consumer
// goroutine, returning once every directory watcher is subscribed (or
// has failed and logged a warning).
func (p *Pool) Start() {
	for _, dir := range p.dirs {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			p.logf("watcher: creating fsnotify watcher for %s: %v", dir, err)
			continue
		}
		if err := addRecursive(w, dir); err != nil {
			p.logf("watcher: watching %s: %v", dir, err)
			w.Close()
			continue
		}
		p.fsWatch = append(p.fsWatch, w)

		p.wg.Add(1)
		go p.runDirWatcher(w)
	}

	p.wg.Add(1)
	go p.runConsumer()
}

// addRecursive walks dir and adds a watch for every subdirectory,
// fsnotify's Add not being recursive on Linux/BSD.
func addRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

// runDirWatcher drains one directory's fsnotify watcher into the shared
// channel, extending the watch to newly created subdirectories so the
// subscription stays recursive over the directory's lifetime.
func (p *Pool) runDirWatcher(w *fsnotify.Watcher) {
	defer p.wg.Done()
	defer w.Close()

	for {
		select {
		case <-p.stopCh:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.Add(ev.Name)
				}
			}
			select {
			case p.events <- ev:
			case <-p.stopCh:
				return
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			p.logf("watcher: fsnotify error: %v", err)
		}
	}
}

// runConsumer is the single consumer draining all directories' events.
func (p *Pool) runConsumer() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			return
		case ev, ok := <-p.events:
			if !ok {
				return
			}
			p.handle(ev)
		}
	}
}

func (p *Pool) handle(raw fsnotify.Event) {
	if p.skip(raw.Name) {
		return
	}

	kind := normalizeKind(raw.Op)
	event := Event{Kind: kind, Paths: []string{raw.Name}, Timestamp: time.Now()}

	if err := p.log.Append(event); err != nil {
		p.logf("watcher: appending file-change event: %v", err)
	}

	if kind == KindModify {
		p.extractNotes(event)
	}
}

// skip implements the reflexive-log and hidden-path exclusions: the
// watcher's own log file, and any dotfile path component.
func (p *Pool) skip(path string) bool {
	if path == p.changeLogPath {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasPrefix(part, ".") && part != "" {
			return true
		}
	}
	return false
}

func normalizeKind(op fsnotify.Op) Kind {
	switch {
	case op.Has(fsnotify.Create):
		return KindCreate
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return KindRemove
	case op.Has(fsnotify.Write):
		return KindModify
	case op.Has(fsnotify.Chmod):
		return KindAccess
	default:
		return KindAccess
	}
}

// Stop signals every directory watcher and the consumer to exit, then
// blocks until they have all returned.
func (p *Pool) Stop() {
	close(p.stopCh)
	p.wg.Wait()
}

func (p *Pool) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}
