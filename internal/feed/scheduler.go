package feed

import "time"

// Timer is a pending scheduled call.
type Timer interface {
	// Stop prevents the call from running if it has not started yet.
	Stop() bool
}

// Scheduler runs f once after d. Sessions re-arm it after every tick.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemScheduler is backed by time.AfterFunc.
func SystemScheduler() Scheduler {
	return systemScheduler{}
}
