package sampler

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/noted-app/noted/internal/logstore"
	"github.com/noted-app/noted/internal/platform"
)

// fakeFocuser feeds a scripted sequence of titles to the sampler, one per
// call to Focused, reusing the pid for every title so samples only differ
// by title.
type fakeFocuser struct {
	titles []string
	i      int
}

func (f *fakeFocuser) Focused() (platform.RawWindow, error) {
	if f.i >= len(f.titles) {
		f.i = len(f.titles) - 1
	}
	t := f.titles[f.i]
	f.i++
	return platform.RawWindow{Title: t, App: t, PID: 1}, nil
}

type fakeProcessLookuper struct{}

func (fakeProcessLookuper) Lookup(pid int) (platform.ProcessInfo, error) {
	return platform.ProcessInfo{ExecutablePath: "/bin/fake", StartTime: time.Unix(0, 0)}, nil
}

func newTestSampler(t *testing.T, titles []string) *Sampler {
	t.Helper()
	store := logstore.New[WindowSession](filepath.Join(t.TempDir(), "apps.json"))
	s := New(&fakeFocuser{titles: titles}, fakeProcessLookuper{}, time.Millisecond, store, nil)
	return s
}

// driveTicks runs n sample-and-transition cycles synchronously, bypassing
// the ticker so the test is deterministic.
func driveTicks(s *Sampler, n int) {
	for i := 0; i < n; i++ {
		s.tick()
	}
}

func TestAtMostOneCurrentSession(t *testing.T) {
	s := newTestSampler(t, []string{"A", "A", "B", "A", "C"})
	driveTicks(s, 5)

	cur, ok := s.Current()
	if !ok {
		t.Fatal("Current() = false, want true")
	}
	if cur.Title != "C" {
		t.Errorf("Current().Title = %q, want %q", cur.Title, "C")
	}
}

// The still-open current session ("C") counts as the newest entry, ahead
// of the closed sessions in the recency list.
func TestRecencyDedupNewestFirst(t *testing.T) {
	s := newTestSampler(t, []string{"A", "A", "B", "A", "C"})
	driveTicks(s, 5)

	recent := s.Recent(5)
	titles := make([]string, len(recent))
	for i, r := range recent {
		titles[i] = r.Title
	}

	want := []string{"C", "A", "B"}
	if len(titles) != len(want) {
		t.Fatalf("Recent(5) titles = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("Recent(5)[%d] = %q, want %q", i, titles[i], want[i])
		}
	}
}

func TestRecencyDedupNoDuplicateTitles(t *testing.T) {
	s := newTestSampler(t, []string{"A", "B", "A", "B", "A", "B", "C"})
	driveTicks(s, 7)

	seen := map[string]bool{}
	for _, r := range s.Recent(10) {
		if seen[r.Title] {
			t.Fatalf("Recent(10) contains duplicate title %q", r.Title)
		}
		seen[r.Title] = true
	}
}

func TestIgnoreListSkipsTick(t *testing.T) {
	s := newTestSampler(t, []string{"noted", "Editor"})
	s.Apply(WithIgnoreList(NewDefaultIgnoreList("noted")))
	driveTicks(s, 2)

	cur, ok := s.Current()
	if !ok || cur.Title != "Editor" {
		t.Errorf("Current() = %+v, %v, want Editor, true", cur, ok)
	}
}

func TestPlatformErrorClearsCurrent(t *testing.T) {
	store := logstore.New[WindowSession](filepath.Join(t.TempDir(), "apps.json"))
	s := New(failingFocuser{}, fakeProcessLookuper{}, time.Millisecond, store, nil)
	s.tick()

	if _, ok := s.Current(); ok {
		t.Error("Current() ok = true after platform error, want false")
	}
}

type failingFocuser struct{}

func (failingFocuser) Focused() (platform.RawWindow, error) {
	return platform.RawWindow{}, platform.ErrUnavailable
}

func TestProcessLookupErrorStopsSampler(t *testing.T) {
	store := logstore.New[WindowSession](filepath.Join(t.TempDir(), "apps.json"))
	s := New(&fakeFocuser{titles: []string{"A"}}, failingProcessLookuper{}, time.Millisecond, store, nil)

	if ok := s.tick(); ok {
		t.Error("tick() = true after fatal process lookup error, want false")
	}
}

type failingProcessLookuper struct{}

func (failingProcessLookuper) Lookup(pid int) (platform.ProcessInfo, error) {
	return platform.ProcessInfo{}, &platform.ProcessLookupError{PID: pid, Err: errNoSuchProcess}
}

var errNoSuchProcess = errors.New("no such process")
