package engine

import "time"

// Clock abstracts time.Now() so that "today" can be pinned in tests.
// The Planner and the FeedGenerator read the current date through it.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock in the local time zone.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
