package manager

import "time"

// msToDuration converts a millisecond count from the QoS/wire layer
// into a time.Duration, clamping negative values to zero rather than
// arming a timer in the past.
func msToDuration(ms int64) time.Duration {
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms) * time.Millisecond
}
