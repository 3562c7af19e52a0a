// Package platform defines the boundary between the sampler's core logic
// and the OS-specific call that discovers the currently focused window.
// The call itself is platform-specific and out of scope here; this
// package only fixes the interface and supplies process enrichment, which
// is in scope and portable across the supported platforms via /proc.
package platform

import (
	"errors"
	"strconv"
	"time"
)

// ErrUnavailable is returned by Focuser.Focused when no window is
// currently focused, or the platform call could not be completed. The
// sampler treats this the same as "no current app".
var ErrUnavailable = errors.New("platform: no focused window available")

// RawWindow is what the platform collaborator reports about the
// currently focused window, before process enrichment.
type RawWindow struct {
	Title    string
	App      string
	WindowID string
	PID      int
}

// Focuser is implemented by the platform-specific collaborator that knows
// how to ask the OS which window currently has focus.
type Focuser interface {
	// Focused returns the currently focused window, or ErrUnavailable if
	// none could be determined.
	Focused() (RawWindow, error)
}

// ProcessInfo is everything the sampler needs about the process that
// owns a focused window, beyond what the window system itself reports.
type ProcessInfo struct {
	ExecutablePath string
	ParentPID      int
	StartTime      time.Time
}

// ProcessLookupError marks a process-inconsistency failure: the focused
// window points at a pid with no matching process record. This is fatal
// for the sampler loop.
type ProcessLookupError struct {
	PID int
	Err error
}

func (e *ProcessLookupError) Error() string {
	return "platform: process lookup for pid " + strconv.Itoa(e.PID) + ": " + e.Err.Error()
}

func (e *ProcessLookupError) Unwrap() error { return e.Err }

// ProcessLookuper resolves process metadata for a pid. A nonexistent pid
// is reported via ProcessLookupError, which the sampler treats as fatal.
type ProcessLookuper interface {
	Lookup(pid int) (ProcessInfo, error)
}
