//go:build !linux

package platform

import "fmt"

// procLookuper is unavailable outside Linux; process enrichment is a
// platform collaborator concern and is not required on other OSes for
// the core engine to run (tests supply a fake ProcessLookuper).
type procLookuper struct{}

// NewProcessLookuper returns a ProcessLookuper that always fails. Wire a
// real implementation for other OSes the same way this one reads /proc.
func NewProcessLookuper() ProcessLookuper { return &procLookuper{} }

func (p *procLookuper) Lookup(pid int) (ProcessInfo, error) {
	return ProcessInfo{}, &ProcessLookupError{PID: pid, Err: fmt.Errorf("process lookup not implemented on this platform")}
}
