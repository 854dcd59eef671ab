package virt

import "time"

// Timer is a pending scheduled callback. Stop cancels it; stopping an already
// fired or stopped timer is a no-op.
type Timer interface {
	Stop()
}

// Scheduler schedules a callback to run exactly once after a delay. The
// virtualizer is single-threaded by contract: implementations must deliver
// the callback serialized with every other call into the virtualizer, the
// way an event loop or a cooperative tick does.
type Scheduler interface {
	ScheduleAfter(d time.Duration, fn func()) Timer
}

// timeScheduler is the default Scheduler, backed by the runtime timer heap.
// Hosts that own an event loop should replace it with one that delivers on
// that loop.
type timeScheduler struct{}

func (timeScheduler) ScheduleAfter(d time.Duration, fn func()) Timer {
	return goTimer{time.AfterFunc(d, fn)}
}

type goTimer struct {
	t *time.Timer
}

func (g goTimer) Stop() {
	g.t.Stop()
}

// TickScheduler is a cooperative Scheduler for hosts that advance time from
// their own frame loop. ScheduleAfter records a deadline; Advance fires every
// callback whose deadline has passed, in scheduling order.
type TickScheduler struct {
	now    time.Time
	timers []*tickTimer
}

type tickTimer struct {
	deadline time.Time
	fn       func()
	stopped  bool
}

func (t *tickTimer) Stop() {
	t.stopped = true
}

// NewTickScheduler returns a TickScheduler whose clock starts at now.
func NewTickScheduler(now time.Time) *TickScheduler {
	return &TickScheduler{now: now}
}

// ScheduleAfter records fn to fire once the clock has advanced by d.
func (s *TickScheduler) ScheduleAfter(d time.Duration, fn func()) Timer {
	t := &tickTimer{deadline: s.now.Add(d), fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock to now and fires all due, unstopped callbacks.
func (s *TickScheduler) Advance(now time.Time) {
	if now.After(s.now) {
		s.now = now
	}
	remaining := s.timers[:0]
	var due []*tickTimer
	for _, t := range s.timers {
		if t.stopped {
			continue
		}
		if !t.deadline.After(s.now) {
			due = append(due, t)
			continue
		}
		remaining = append(remaining, t)
	}
	s.timers = remaining
	for _, t := range due {
		t.fn()
	}
}

// Pending reports whether any unstopped callback is still scheduled.
func (s *TickScheduler) Pending() bool {
	for _, t := range s.timers {
		if !t.stopped {
			return true
		}
	}
	return false
}
