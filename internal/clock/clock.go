// Package clock lets time-dependent code run against the wall clock in
// production and a hand-driven clock in tests.
//
// Flows and the daily broadcaster take a Clock instead of calling
// time.Now, time.After or time.AfterFunc directly. Tests build a Fake,
// wait until the code under test has registered its timer with
// WaitForTimers, then move time with Advance.
package clock

import "time"

// Clock is the subset of the time package used by slaymom.
type Clock interface {
	Now() time.Time

	// After delivers the current time once d has elapsed. d <= 0 fires
	// immediately.
	After(d time.Duration) <-chan time.Time

	// AfterFunc calls f once d has elapsed. The returned Timer can
	// cancel the call.
	AfterFunc(d time.Duration, f func()) *Timer

	Sleep(d time.Duration)
}

// Timer is a pending AfterFunc call.
type Timer struct {
	stop func() bool
}

// Stop cancels the call. It reports false if the call already ran or
// was already stopped.
func (t *Timer) Stop() bool { return t.stop() }

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	t := time.AfterFunc(d, f)
	return &Timer{stop: t.Stop}
}

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }
