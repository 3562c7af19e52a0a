//go:build linux

package platform

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// procLookuper resolves process metadata by reading /proc directly. No
// example in the retrieval pack imports a third-party process-info
// library directly (the one pin for it is an unused indirect dependency),
// so this single, narrow piece is hand-rolled against the /proc ABI
// instead of the rest of the stack's usual third-party-first rule.
type procLookuper struct {
	bootTime time.Time
}

// NewProcessLookuper returns a ProcessLookuper backed by /proc.
func NewProcessLookuper() ProcessLookuper {
	return &procLookuper{bootTime: readBootTime()}
}

func (p *procLookuper) Lookup(pid int) (ProcessInfo, error) {
	// unix.Kill with signal 0 does no signaling; it only probes whether
	// pid currently names a live process. ESRCH means it doesn't (exited
	// or reused away already); EPERM means it does but we can't signal
	// it, which is not a lookup failure. Catching ESRCH here, before
	// touching /proc, keeps the race window between "focused window
	// reported this pid" and "we read its details" as small as possible.
	if err := unix.Kill(pid, 0); err == unix.ESRCH {
		return ProcessInfo{}, &ProcessLookupError{PID: pid, Err: err}
	}

	dir := fmt.Sprintf("/proc/%d", pid)

	exe, err := os.Readlink(dir + "/exe")
	if err != nil {
		// A process that has already exited, or a kernel thread with no
		// resolvable executable, looks like this. This is the fatal
		// "OS state inconsistency" case for the sampler.
		return ProcessInfo{}, &ProcessLookupError{PID: pid, Err: err}
	}

	stat, err := os.ReadFile(dir + "/stat")
	if err != nil {
		return ProcessInfo{}, &ProcessLookupError{PID: pid, Err: err}
	}
	ppid, startTicks, err := parseStat(string(stat))
	if err != nil {
		return ProcessInfo{}, &ProcessLookupError{PID: pid, Err: err}
	}

	clockTicks := clockTicksPerSecond()
	startOffset := time.Duration(float64(startTicks)/clockTicks) * time.Second
	startTime := p.bootTime.Add(startOffset)

	return ProcessInfo{
		ExecutablePath: exe,
		ParentPID:      ppid,
		StartTime:      startTime,
	}, nil
}

// parseStat extracts ppid (field 4) and starttime (field 22) from
// /proc/<pid>/stat. The second field is the command name in parentheses
// and may itself contain spaces or parentheses, so the parse skips past
// the last ")" before splitting the remaining fields.
func parseStat(stat string) (ppid int, startTicks uint64, err error) {
	close := strings.LastIndexByte(stat, ')')
	if close < 0 {
		return 0, 0, fmt.Errorf("malformed /proc stat line")
	}
	rest := strings.Fields(stat[close+2:])
	// rest[0] = state, rest[1] = ppid, ..., rest[19] = starttime (fields
	// 4 and 22 overall, 0-indexed from state as field 3).
	if len(rest) < 20 {
		return 0, 0, fmt.Errorf("unexpected /proc stat field count: %d", len(rest))
	}
	ppid, err = strconv.Atoi(rest[1])
	if err != nil {
		return 0, 0, fmt.Errorf("parsing ppid: %w", err)
	}
	startTicks, err = strconv.ParseUint(rest[19], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing starttime: %w", err)
	}
	return ppid, startTicks, nil
}

func clockTicksPerSecond() float64 {
	// USER_HZ is 100 on every mainstream Linux distribution; reading it
	// portably requires cgo (sysconf), which the rest of this module
	// avoids, so the common value is hardcoded the way many
	// /proc-parsing tools do.
	return 100
}

func readBootTime() time.Time {
	f, err := os.Open("/proc/stat")
	if err != nil {
		return time.Time{}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "btime ") {
			secs, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, "btime")), 10, 64)
			if err != nil {
				return time.Time{}
			}
			return time.Unix(secs, 0)
		}
	}
	return time.Time{}
}
