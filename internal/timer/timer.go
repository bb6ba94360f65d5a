// Package timer schedules delayed and repeating callbacks for game sessions.
package timer

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// Scheduler is what the engine needs from a timer source. Ids are never reused,
// removing an unknown or already fired id is a no-op.
type Scheduler interface {
	AddTimer(delay, interval time.Duration, callback func()) int64
	RemoveTimer(id int64)
}

type task struct {
	id       int64
	execute  time.Time
	interval time.Duration
	callback func()
	index    int
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].execute.Equal(q[j].execute) {
		return q[i].id < q[j].id
	}
	return q[i].execute.Before(q[j].execute)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*task)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// timers is the heap shared by the wall clock and manual schedulers.
type timers struct {
	mu     sync.Mutex
	queue  taskQueue
	byID   map[int64]*task
	nextID int64
}

func (t *timers) init() {
	t.byID = make(map[int64]*task)
	t.nextID = 1
}

func (t *timers) add(at time.Time, interval time.Duration, callback func()) int64 {
	tk := &task{id: t.nextID, execute: at, interval: interval, callback: callback}
	t.nextID++
	heap.Push(&t.queue, tk)
	t.byID[tk.id] = tk
	return tk.id
}

func (t *timers) remove(id int64) {
	tk, ok := t.byID[id]
	if !ok {
		return
	}
	delete(t.byID, id)
	if tk.index >= 0 {
		heap.Remove(&t.queue, tk.index)
	}
}

// popDue removes the earliest task due at or before now. Repeating tasks are
// pushed back for their next run before being returned.
func (t *timers) popDue(now time.Time) (*task, bool) {
	if t.queue.Len() == 0 || t.queue[0].execute.After(now) {
		return nil, false
	}
	tk := heap.Pop(&t.queue).(*task)
	if tk.interval > 0 {
		fired := *tk
		tk.execute = tk.execute.Add(tk.interval)
		heap.Push(&t.queue, tk)
		return &fired, true
	}
	delete(t.byID, tk.id)
	return tk, true
}

func (t *timers) next() (time.Time, bool) {
	if t.queue.Len() == 0 {
		return time.Time{}, false
	}
	return t.queue[0].execute, true
}

func (t *timers) pending() int {
	return t.queue.Len()
}

// Manager runs callbacks against the wall clock on a background goroutine.
type Manager struct {
	timers
	wake chan struct{}
}

func NewManager() *Manager {
	m := &Manager{wake: make(chan struct{}, 1)}
	m.init()
	return m
}

func (m *Manager) AddTimer(delay, interval time.Duration, callback func()) int64 {
	m.mu.Lock()
	id := m.add(time.Now().Add(delay), interval, callback)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
	return id
}

func (m *Manager) RemoveTimer(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(id)
}

func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending()
}

// Run fires due callbacks until ctx is cancelled. Each callback runs on its
// own goroutine.
func (m *Manager) Run(ctx context.Context) {
	wait := time.NewTimer(time.Hour)
	defer wait.Stop()

	for {
		m.mu.Lock()
		now := time.Now()
		var due []func()
		for {
			tk, ok := m.popDue(now)
			if !ok {
				break
			}
			due = append(due, tk.callback)
		}
		sleep := time.Hour
		if at, ok := m.next(); ok {
			sleep = at.Sub(now)
		}
		m.mu.Unlock()

		for _, fn := range due {
			go fn()
		}

		wait.Reset(sleep)
		select {
		case <-ctx.Done():
			return
		case <-m.wake:
		case <-wait.C:
		}
	}
}

// Manual is a Scheduler driven by Advance instead of the wall clock.
// Callbacks run synchronously on the goroutine calling Advance.
type Manual struct {
	timers
	now time.Time
}

func NewManual() *Manual {
	m := &Manual{now: time.Unix(0, 0)}
	m.init()
	return m
}

func (m *Manual) AddTimer(delay, interval time.Duration, callback func()) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(m.now.Add(delay), interval, callback)
}

func (m *Manual) RemoveTimer(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(id)
}

func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending()
}

// Advance moves the clock forward by d, firing every task that falls due in
// order. Tasks removed by an earlier callback do not fire.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		tk, ok := m.popDue(target)
		if !ok {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = tk.execute
		m.mu.Unlock()

		tk.callback()
	}
}
