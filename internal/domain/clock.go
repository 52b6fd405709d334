package domain

import "github.com/jonboulle/clockwork"

// ClockOrReal returns c, or the real clock when c is nil. Services take the
// clock as a constructor argument so tests can freeze time with a fake.
func ClockOrReal(c clockwork.Clock) clockwork.Clock {
	if c == nil {
		return clockwork.NewRealClock()
	}
	return c
}
