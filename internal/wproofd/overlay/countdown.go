package overlay

import "time"

// DefaultTickInterval is how often countdown progress is reported
const DefaultTickInterval = 50 * time.Millisecond

// Progress maps elapsed display time to a countdown ratio clamped to [0, 1]
func Progress(elapsed, duration time.Duration) float64 {
	if duration <= 0 {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= duration {
		return 1
	}
	return float64(elapsed) / float64(duration)
}

// DashOffset converts a progress ratio to the stroke offset of the circular
// countdown arc, from 0 (full ring) to 100 (empty ring)
func DashOffset(ratio float64) float64 {
	switch {
	case ratio <= 0:
		return 0
	case ratio >= 1:
		return 100
	}
	return 100 * ratio
}
