// Package enginetest provides deterministic clocks, randomness and presenters
// for driving the engine in tests.
package enginetest

import (
	"sort"
	"sync"
	"time"

	"stress-quiz/internal/engine"
)

type timer struct {
	id       int
	at       time.Time
	interval time.Duration
	fn       func()
	dead     bool
}

// FakeClock is a manual clock. Callbacks run on the goroutine calling Advance.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers []*timer
}

func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) AfterFunc(d time.Duration, fn func()) engine.Cancel {
	return c.add(d, 0, fn)
}

func (c *FakeClock) Every(interval time.Duration, fn func()) engine.Cancel {
	if interval <= 0 {
		interval = time.Millisecond
	}
	return c.add(interval, interval, fn)
}

func (c *FakeClock) add(d, interval time.Duration, fn func()) engine.Cancel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &timer{id: c.nextID, at: c.now.Add(max(d, 0)), interval: interval, fn: fn}
	c.timers = append(c.timers, t)
	return func() {
		c.mu.Lock()
		t.dead = true
		c.mu.Unlock()
	}
}

// Advance moves time forward by d, firing due callbacks in deadline order.
// Time is set to each callback's deadline before it runs.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()
	for {
		t, ok := c.nextDue(target)
		if !ok {
			break
		}
		t.fn()
	}
	c.mu.Lock()
	c.now = target
	c.mu.Unlock()
}

// Jump moves time forward without firing anything, as if ticks were skipped.
func (c *FakeClock) Jump(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Pending counts live callbacks.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compact()
	return len(c.timers)
}

func (c *FakeClock) nextDue(target time.Time) (*timer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compact()
	if len(c.timers) == 0 {
		return nil, false
	}
	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].at.Equal(c.timers[j].at) {
			return c.timers[i].id < c.timers[j].id
		}
		return c.timers[i].at.Before(c.timers[j].at)
	})
	t := c.timers[0]
	if t.at.After(target) {
		return nil, false
	}
	if t.at.After(c.now) {
		c.now = t.at
	}
	if t.interval > 0 {
		t.at = t.at.Add(t.interval)
	} else {
		t.dead = true
	}
	return t, true
}

func (c *FakeClock) compact() {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.dead {
			live = append(live, t)
		}
	}
	c.timers = live
}
