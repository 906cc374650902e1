package aggregate

import "fmt"

const millisPerDay = 24 * 60 * 60 * 1000

// Window is a caller-selected trailing time range for KPI scoping.
type Window string

const (
	Window24h Window = "24h"
	Window7d  Window = "7d"
	Window30d Window = "30d"
	WindowAll Window = "all"
)

// ParseWindow converts the wire string into a Window. The empty string
// defaults to all-time.
func ParseWindow(s string) (Window, error) {
	switch s {
	case "24h":
		return Window24h, nil
	case "7d":
		return Window7d, nil
	case "30d":
		return Window30d, nil
	case "all", "":
		return WindowAll, nil
	default:
		return WindowAll, fmt.Errorf("unknown window %q", s)
	}
}

// Start returns the window's lower bound in epoch milliseconds relative
// to now. Zero means all-time.
func (w Window) Start(now int64) int64 {
	switch w {
	case Window24h:
		return now - millisPerDay
	case Window7d:
		return now - 7*millisPerDay
	case Window30d:
		return now - 30*millisPerDay
	default:
		return 0
	}
}

// inWindow reports whether a timestamp falls inside [windowStart, now].
// windowStart == 0 means all-time.
func inWindow(ts, windowStart, now int64) bool {
	if windowStart > 0 && ts < windowStart {
		return false
	}
	return ts <= now
}
