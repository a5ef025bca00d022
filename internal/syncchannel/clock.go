package syncchannel

import "time"

// Timer is the subset of *time.Timer the throttler needs.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so throttling can be tested deterministically.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
