// Package clock is the single time source for the room. Deferred work is
// expressed as scheduled tasks so timing stays deterministic under test.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock reads the current time and schedules callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func())
}

// Poster hands a callback to whoever owns the state it touches.
type Poster func(fn func())

// System is backed by the wall clock. Fired callbacks are routed through post
// so they run on the owner's goroutine instead of the timer goroutine.
type System struct {
	post Poster
}

func NewSystem(post Poster) *System {
	if post == nil {
		post = func(fn func()) { fn() }
	}
	return &System{post: post}
}

func (s *System) Now() time.Time {
	return time.Now()
}

func (s *System) AfterFunc(d time.Duration, fn func()) {
	if fn == nil {
		return
	}
	time.AfterFunc(d, func() { s.post(fn) })
}

type task struct {
	due time.Time
	seq int
	fn  func()
}

// Manual only moves when told to. Due tasks run synchronously inside Advance.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []task
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.tasks = append(m.tasks, task{due: m.now.Add(d), seq: m.seq, fn: fn})
}

// Advance moves time forward by d and runs every task that became due, in
// due order.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		idx := m.nextDueLocked(target)
		if idx < 0 {
			m.now = target
			m.mu.Unlock()
			return
		}
		t := m.tasks[idx]
		m.tasks = append(m.tasks[:idx], m.tasks[idx+1:]...)
		if t.due.After(m.now) {
			m.now = t.due
		}
		m.mu.Unlock()

		t.fn()
	}
}

// Pending reports how many tasks have not fired yet.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *Manual) nextDueLocked(target time.Time) int {
	if len(m.tasks) == 0 {
		return -1
	}
	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].due.Equal(m.tasks[j].due) {
			return m.tasks[i].seq < m.tasks[j].seq
		}
		return m.tasks[i].due.Before(m.tasks[j].due)
	})
	if m.tasks[0].due.After(target) {
		return -1
	}
	return 0
}
