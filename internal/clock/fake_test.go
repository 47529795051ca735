package clock

import (
	"sync/atomic"
	"testing"
	"time"
)

var epoch = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func TestFakeAfterFiresOnAdvance(t *testing.T) {
	c := Fake(epoch)
	ch := c.After(5 * time.Second)

	c.Advance(4 * time.Second)
	select {
	case <-ch:
		t.Fatal("fired early")
	default:
	}

	c.Advance(time.Second)
	select {
	case got := <-ch:
		if !got.Equal(epoch.Add(5 * time.Second)) {
			t.Errorf("fire time = %v, want %v", got, epoch.Add(5*time.Second))
		}
	default:
		t.Fatal("did not fire at deadline")
	}
}

func TestFakeAfterFuncStop(t *testing.T) {
	c := Fake(epoch)
	var calls atomic.Int32
	timer := c.AfterFunc(time.Minute, func() { calls.Add(1) })

	if !timer.Stop() {
		t.Fatal("Stop on pending timer returned false")
	}
	if timer.Stop() {
		t.Error("second Stop returned true")
	}
	c.Advance(time.Hour)
	if calls.Load() != 0 {
		t.Errorf("stopped callback ran %d times", calls.Load())
	}
	if c.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", c.Pending())
	}
}

func TestFakeAfterFuncRunsOnce(t *testing.T) {
	c := Fake(epoch)
	var calls atomic.Int32
	timer := c.AfterFunc(time.Second, func() { calls.Add(1) })

	c.Advance(time.Second)
	c.Advance(time.Second)
	if calls.Load() != 1 {
		t.Errorf("callback ran %d times, want 1", calls.Load())
	}
	if timer.Stop() {
		t.Error("Stop after firing returned true")
	}
}

func TestFakeWaitForTimers(t *testing.T) {
	c := Fake(epoch)
	done := make(chan struct{})
	go func() {
		c.Sleep(time.Minute)
		close(done)
	}()

	c.WaitForTimers(1)
	c.Advance(time.Minute)
	<-done
}

func TestFakeSet(t *testing.T) {
	c := Fake(epoch)
	ch := c.After(time.Hour)
	c.Set(epoch.Add(2 * time.Hour))
	select {
	case <-ch:
	default:
		t.Fatal("Set past the deadline did not fire the waiter")
	}
	if !c.Now().Equal(epoch.Add(2 * time.Hour)) {
		t.Errorf("Now = %v", c.Now())
	}
}
