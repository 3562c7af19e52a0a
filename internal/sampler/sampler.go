// Package sampler implements the app sampler: a worker goroutine that
// periodically polls the focused window, deduplicates consecutive
// identical samples, and maintains a recency list and a "current" slot
// that the dispatcher reads on demand.
package sampler

import (
	"log"
	"strings"
	"sync"
	"time"

	"github.com/noted-app/noted/internal/logstore"
	"github.com/noted-app/noted/internal/platform"
)

// WindowSample is a single normalized observation of the focused window.
type WindowSample struct {
	Title            string    `json:"title"`
	App              string    `json:"app"`
	WindowID         string    `json:"window_id"`
	PID              int       `json:"pid"`
	ExecutablePath   string    `json:"executable_path"`
	ParentPID        int       `json:"parent_pid,omitempty"`
	ProcessStartTime time.Time `json:"process_start_time"`
	IgnoreFilterTag  string    `json:"ignore_filter_tag,omitempty"`
}

// equal reports whether two samples should be treated as the same
// ongoing focus: equal pid, equal normalized title, and equal process
// start time.
func (s WindowSample) equal(o WindowSample) bool {
	// ProcessStartTime guards against pid reuse: if the OS recycled s.PID
	// to a different process between samples, its start time will differ
	// even though the pid and (coincidentally) the title match.
	return s.PID == o.PID && s.Title == o.Title && s.ProcessStartTime.Equal(o.ProcessStartTime)
}

// WindowSession is a WindowSample extended with focus timing.
type WindowSession struct {
	WindowSample
	FirstFocusedAt time.Time     `json:"first_focused_at"`
	ActiveDuration time.Duration `json:"active_duration"`
}

// IgnoreList reports whether a raw title should never become a session
// (the sampler's own window, a task-switcher artifact, or empty).
type IgnoreList interface {
	Ignore(title string) bool
}

// DefaultIgnoreList ignores only the empty title; callers append their
// own entries (e.g. the daemon's own terminal window) at construction.
type DefaultIgnoreList struct {
	Titles map[string]struct{}
}

// NewDefaultIgnoreList returns an IgnoreList seeded with titles.
func NewDefaultIgnoreList(titles ...string) *DefaultIgnoreList {
	l := &DefaultIgnoreList{Titles: make(map[string]struct{}, len(titles))}
	for _, t := range titles {
		l.Titles[t] = struct{}{}
	}
	return l
}

// Ignore reports true for the empty title or any configured title.
func (l *DefaultIgnoreList) Ignore(title string) bool {
	if title == "" {
		return true
	}
	_, ok := l.Titles[title]
	return ok
}

// Sampler owns the "current" and "recent" shared state cells: a worker
// goroutine writes them under a short lock, and readers (the dispatcher)
// copy them out under the same lock without doing any work while
// holding it.
type Sampler struct {
	focuser  platform.Focuser
	process  platform.ProcessLookuper
	ignore   IgnoreList
	period   time.Duration
	log      *logstore.Store[WindowSession]
	logger   *log.Logger
	recentN  int

	mu      sync.Mutex
	current *WindowSession
	recent  []WindowSession // newest last; capped at recentN

	stopCh chan struct{}
	doneCh chan struct{}
}

// Option configures a Sampler at construction.
type Option func(*Sampler)

// WithIgnoreList overrides the default ignore list.
func WithIgnoreList(l IgnoreList) Option {
	return func(s *Sampler) { s.ignore = l }
}

// WithRecentCap overrides how many closed sessions are retained in
// memory before the oldest are dropped (independent of how many the
// dispatcher asks for via Recent).
func WithRecentCap(n int) Option {
	return func(s *Sampler) { s.recentN = n }
}

// New constructs a Sampler. focuser and process are the platform
// collaborators; store is the app log the sampler exclusively owns.
func New(focuser platform.Focuser, process platform.ProcessLookuper, period time.Duration, store *logstore.Store[WindowSession], logger *log.Logger) *Sampler {
	return &Sampler{
		focuser: focuser,
		process: process,
		ignore:  NewDefaultIgnoreList(),
		period:  period,
		log:     store,
		logger:  logger,
		recentN: 64,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Apply applies options after construction (kept separate from New to
// match the positional-then-options style used elsewhere in the stack).
func (s *Sampler) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(s)
	}
}

// Run is the sampler's worker loop. It blocks until Stop is called or
// the focuser/process lookup reports a fatal inconsistency, then closes
// doneCh. Callers run this in its own goroutine and join it with Stop
// followed by Wait.
func (s *Sampler) Run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			if !s.tick() {
				return
			}
		}
	}
}

// tick performs one sample-and-transition cycle. It returns false if the
// sampler must stop due to a fatal process-lookup inconsistency.
func (s *Sampler) tick() bool {
	raw, err := s.focuser.Focused()
	if err != nil {
		s.clearCurrent()
		return true
	}

	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = raw.App
	}
	if s.ignore.Ignore(title) {
		return true
	}

	info, err := s.process.Lookup(raw.PID)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("sampler: fatal process lookup error for pid %d: %v", raw.PID, err)
		}
		return false
	}

	sample := WindowSample{
		Title:            title,
		App:              raw.App,
		WindowID:         raw.WindowID,
		PID:              raw.PID,
		ExecutablePath:   info.ExecutablePath,
		ParentPID:        info.ParentPID,
		ProcessStartTime: info.StartTime,
	}

	s.observe(sample)
	return true
}

// observe applies one sample to the state machine under the shared lock,
// doing no I/O while holding it: the log append happens after the lock
// is released (on the previous, now-closing session) so the critical
// section stays "lock, copy/mutate, unlock".
func (s *Sampler) observe(sample WindowSample) {
	s.mu.Lock()
	if s.current != nil && s.current.WindowSample.equal(sample) {
		s.current.ActiveDuration += s.period
		s.mu.Unlock()
		return
	}

	closing := s.current
	now := time.Now()
	s.current = &WindowSession{WindowSample: sample, FirstFocusedAt: now}
	s.mu.Unlock()

	if closing == nil {
		return
	}

	if err := s.log.Append(*closing); err != nil && s.logger != nil {
		s.logger.Printf("sampler: append to app log failed: %v", err)
	}

	s.mu.Lock()
	s.recent = append(s.recent, *closing)
	if len(s.recent) > s.recentN {
		s.recent = s.recent[len(s.recent)-s.recentN:]
	}
	s.mu.Unlock()
}

// clearCurrent transitions Current(s) -> ∅ on a platform lookup failure.
func (s *Sampler) clearCurrent() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// Current returns the session currently focused, or false if none.
func (s *Sampler) Current() (WindowSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return WindowSession{}, false
	}
	return *s.current, true
}

// Recent returns up to n sessions ordered newest first and deduplicated
// by title (only the newest occurrence of each title is retained). The
// still-open current session, if any, counts as the newest entry: the
// window someone is looking at right now is the most recent one by any
// reasonable reading of "recent".
func (s *Sampler) Recent(n int) []WindowSession {
	s.mu.Lock()
	snapshot := make([]WindowSession, len(s.recent))
	copy(snapshot, s.recent)
	current := s.current
	s.mu.Unlock()

	seen := make(map[string]struct{}, len(snapshot)+1)
	var out []WindowSession

	if current != nil && len(out) < n {
		seen[current.Title] = struct{}{}
		out = append(out, *current)
	}

	// snapshot is newest-last; walk backward so the first occurrence we
	// keep per title is the newest one.
	for i := len(snapshot) - 1; i >= 0 && len(out) < n; i-- {
		title := snapshot[i].Title
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		out = append(out, snapshot[i])
	}
	return out
}

// Stop signals the worker loop to exit at its next non-blocking check.
func (s *Sampler) Stop() { close(s.stopCh) }

// Wait blocks until Run has returned.
func (s *Sampler) Wait() { <-s.doneCh }
