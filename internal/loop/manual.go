package loop

import (
	"sort"
	"sync"
	"time"
)

// maxIdleRounds bounds RunUntilIdle against tasks that keep rescheduling themselves
const maxIdleRounds = 10000

// Manual is a deterministic Scheduler driven by the caller.
// Posted tasks run on RunPending; timers fire on Advance.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	queue  []func()
	timers []*manualTimer
	seq    uint64
}

type manualTimer struct {
	m       *Manual
	due     time.Time
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

// NewManual creates a manual scheduler with its clock at the Unix epoch
func NewManual() *Manual {
	return &Manual{now: time.Unix(0, 0)}
}

// Now returns the virtual time
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Post enqueues fn
func (m *Manual) Post(fn func()) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
}

// AfterFunc registers fn to run once the virtual clock passes now+d
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, due: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// RunPending runs queued tasks, including ones they post, and returns how many ran
func (m *Manual) RunPending() int {
	n := 0
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return n
		}
		fn := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()

		fn()
		n++
	}
}

// Advance moves the clock forward by d, firing due timers in order
func (m *Manual) Advance(d time.Duration) {
	m.RunPending()

	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		t.fn()
		m.RunPending()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// RunUntilIdle runs tasks and fires timers until nothing is left
func (m *Manual) RunUntilIdle() {
	for i := 0; i < maxIdleRounds; i++ {
		m.RunPending()
		m.mu.Lock()
		var next *manualTimer
		for _, t := range m.live() {
			if next == nil || t.due.Before(next.due) {
				next = t
			}
		}
		m.mu.Unlock()
		if next == nil {
			return
		}
		m.Advance(next.due.Sub(m.Now()))
	}
}

// PendingTimers returns the number of timers that have neither fired nor been stopped
func (m *Manual) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live())
}

// PendingTasks returns the number of queued tasks
func (m *Manual) PendingTasks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// nextDue pops the earliest live timer due at or before target, advancing the clock to it
func (m *Manual) nextDue(target time.Time) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.live()
	sort.SliceStable(live, func(i, j int) bool {
		if live[i].due.Equal(live[j].due) {
			return live[i].seq < live[j].seq
		}
		return live[i].due.Before(live[j].due)
	})
	m.timers = live
	if len(live) == 0 || live[0].due.After(target) {
		return nil
	}
	t := live[0]
	t.fired = true
	m.timers = live[1:]
	if t.due.After(m.now) {
		m.now = t.due
	}
	return t
}

// live must be called with mu held
func (m *Manual) live() []*manualTimer {
	out := m.timers[:0:0]
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}
