package dispatch

import "time"

// Timer is a scheduled callback that can be stopped before it runs.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The debounce timer is the only user.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock schedules with time.AfterFunc.
type RealClock struct{}

// AfterFunc implements Clock.
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
