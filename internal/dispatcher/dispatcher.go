// Package dispatcher implements the single-writer coordination point
// of the daemon: the only goroutine allowed to mutate the note
// store or read the app sampler's shared state. The UI and the file
// watcher talk to it exclusively through request messages carried on a
// channel, each with its own single-shot reply channel where a reply is
// expected.
package dispatcher

import (
	"log"
	"time"

	"github.com/noted-app/noted/internal/notes"
	"github.com/noted-app/noted/internal/sampler"
	"github.com/noted-app/noted/internal/watcher"
)

// joinTimeout bounds how long shutdown waits for a worker to join
// before abandoning it with a logged warning.
const joinTimeout = 5 * time.Second

// recentAppsRequest asks for the sampler's recent list, truncated to N.
type recentAppsRequest struct {
	n     int
	reply chan []sampler.WindowSession
}

// currentAppRequest asks for the sampler's current session.
type currentAppRequest struct {
	reply chan currentAppReply
}

type currentAppReply struct {
	session sampler.WindowSession
	ok      bool
}

// getLinkNotesRequest asks for active notes linked to label.
type getLinkNotesRequest struct {
	label string
	reply chan []notes.Note
}

// newNoteRequest is fire-and-forget.
type newNoteRequest struct {
	text  string
	links []string
}

// archiveNoteRequest is fire-and-forget.
type archiveNoteRequest struct {
	id string
}

// editNoteRequest is fire-and-forget.
type editNoteRequest struct {
	id   string
	text string
}

// quitRequest causes the dispatcher loop to exit after this message.
type quitRequest struct{}

// Dispatcher is the single owning goroutine for the note store and the
// read side of the sampler's shared state. Its exported methods are the
// request-reply client API used by the UI and the file watcher; Run is
// the loop that actually owns and mutates state.
type Dispatcher struct {
	sampler *sampler.Sampler
	notes   *notes.Store
	watcher *watcher.Pool
	logger  *log.Logger

	requests chan any
	done     chan struct{}
}

// New constructs a Dispatcher. The sampler and watcher pool must already
// be constructed (but not necessarily started); Run starts neither — the
// caller starts them and hands the dispatcher the already-running
// components, since the dispatcher's job is coordination, not lifecycle.
// w may be nil at construction time (the watcher pool needs the
// dispatcher itself to build its Dispatcher interface, so callers
// typically wire it in afterward with SetWatcher).
func New(s *sampler.Sampler, n *notes.Store, w *watcher.Pool, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		sampler:  s,
		notes:    n,
		watcher:  w,
		logger:   logger,
		requests: make(chan any, 64),
		done:     make(chan struct{}),
	}
}

// SetWatcher assigns the watcher pool the dispatcher stops on shutdown.
// It resolves the construction-order cycle between the dispatcher and
// the watcher pool and must be called before Run if w was not passed to
// New.
func (d *Dispatcher) SetWatcher(w *watcher.Pool) { d.watcher = w }

// Run is the dispatcher's main loop. It processes requests strictly in
// channel FIFO order until it receives Quit, then runs the shutdown
// protocol and closes done.
func (d *Dispatcher) Run() {
	defer close(d.done)

	for req := range d.requests {
		if d.handle(req) {
			d.shutdown()
			return
		}
	}
}

// handle processes one request and returns true if it was Quit.
func (d *Dispatcher) handle(req any) bool {
	switch r := req.(type) {
	case recentAppsRequest:
		r.reply <- d.sampler.Recent(r.n)
	case currentAppRequest:
		session, ok := d.sampler.Current()
		r.reply <- currentAppReply{session: session, ok: ok}
	case getLinkNotesRequest:
		r.reply <- d.notes.NotesForLink(r.label)
	case newNoteRequest:
		if _, err := d.notes.Add(r.text, r.links); err != nil && d.logger != nil {
			d.logger.Printf("dispatcher: adding note failed: %v", err)
		}
	case archiveNoteRequest:
		d.notes.Archive(r.id)
	case editNoteRequest:
		d.notes.Edit(r.id, r.text)
	case quitRequest:
		return true
	}
	return false
}

// shutdown runs the ordered cleanup: stop and join the
// sampler, stop and join the watcher pool, then drain any straggler
// requests without handling them (their reply channels, if any, are
// closed without a value — callers blocked on recv get a zero-value
// reply, which they treat as a clean shutdown).
func (d *Dispatcher) shutdown() {
	d.joinWithTimeout("sampler", func() {
		d.sampler.Stop()
		d.sampler.Wait()
	})
	if d.watcher != nil {
		d.joinWithTimeout("watcher pool", func() {
			d.watcher.Stop()
		})
	}
	d.drainStragglers()
}

func (d *Dispatcher) joinWithTimeout(name string, join func()) {
	joined := make(chan struct{})
	go func() {
		join()
		close(joined)
	}()
	select {
	case <-joined:
	case <-time.After(joinTimeout):
		if d.logger != nil {
			d.logger.Printf("dispatcher: %s did not join within %v, abandoning", name, joinTimeout)
		}
	}
}

// drainStragglers consumes any requests left in the channel without
// handling them, closing each reply channel so a caller waiting on it is
// released, and so senders that raced with Quit don't leak their
// goroutines waiting to send; it does not block waiting for new requests.
func (d *Dispatcher) drainStragglers() {
	for {
		select {
		case req := <-d.requests:
			switch r := req.(type) {
			case recentAppsRequest:
				close(r.reply)
			case currentAppRequest:
				close(r.reply)
			case getLinkNotesRequest:
				close(r.reply)
			}
		default:
			return
		}
	}
}

// send posts req onto the request channel. It is used internally by the
// typed client methods below.
func (d *Dispatcher) send(req any) {
	d.requests <- req
}

// RecentApps replies with up to n of the sampler's most recent sessions.
func (d *Dispatcher) RecentApps(n int) []sampler.WindowSession {
	reply := make(chan []sampler.WindowSession, 1)
	d.send(recentAppsRequest{n: n, reply: reply})
	return <-reply
}

// CurrentApp replies with the sampler's current session, if any.
func (d *Dispatcher) CurrentApp() (sampler.WindowSession, bool) {
	reply := make(chan currentAppReply, 1)
	d.send(currentAppRequest{reply: reply})
	r := <-reply
	return r.session, r.ok
}

// CurrentAppTitle satisfies watcher.Dispatcher: it is CurrentApp
// narrowed to just the title, for note extraction's link-building.
func (d *Dispatcher) CurrentAppTitle() (string, bool) {
	session, ok := d.CurrentApp()
	if !ok {
		return "", false
	}
	return session.Title, true
}

// GetLinkNotes replies with active notes linked to label.
func (d *Dispatcher) GetLinkNotes(label string) []notes.Note {
	reply := make(chan []notes.Note, 1)
	d.send(getLinkNotesRequest{label: label, reply: reply})
	return <-reply
}

// NewNote is fire-and-forget; it satisfies watcher.Dispatcher too.
func (d *Dispatcher) NewNote(text string, links []string) {
	d.send(newNoteRequest{text: text, links: links})
}

// ArchiveNote is fire-and-forget.
func (d *Dispatcher) ArchiveNote(id string) {
	d.send(archiveNoteRequest{id: id})
}

// EditNote is fire-and-forget.
func (d *Dispatcher) EditNote(id, text string) {
	d.send(editNoteRequest{id: id, text: text})
}

// Quit causes Run's loop to exit after draining no further messages.
func (d *Dispatcher) Quit() {
	d.send(quitRequest{})
}

// Wait blocks until Run has completed its shutdown protocol.
func (d *Dispatcher) Wait() { <-d.done }
