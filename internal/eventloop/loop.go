// Package eventloop serializes a session's work onto one goroutine. It is the
// production engine.Clock: timers and tickers only post closures to the loop's
// inbox, so callbacks never run concurrently with user actions.
package eventloop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"stress-quiz/internal/engine"
)

// ErrStopped is returned for work submitted after the loop has exited.
var ErrStopped = errors.New("event loop stopped")

type Loop struct {
	inbox    chan func()
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a loop with an inbox of the given capacity. Run must be called to start it.
func New(buffer int) *Loop {
	if buffer <= 0 {
		buffer = 64
	}
	return &Loop{
		inbox: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run executes posted closures in order until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer l.stopOnce.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.inbox:
			fn()
		}
	}
}

// Done is closed once Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Do posts fn without waiting for it to run.
func (l *Loop) Do(fn func()) error {
	select {
	case l.inbox <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Call runs fn on the loop and waits for its result.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	select {
	case l.inbox <- func() { result <- fn() }:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-result:
		return err
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) Now() time.Time {
	return time.Now()
}

// AfterFunc runs fn on the loop after d. A cancel that wins the race against
// delivery drops the callback even if it was already queued.
func (l *Loop) AfterFunc(d time.Duration, fn func()) engine.Cancel {
	var cancelled atomic.Bool
	t := time.AfterFunc(d, func() {
		_ = l.Do(func() {
			if !cancelled.Load() {
				fn()
			}
		})
	})
	return func() {
		cancelled.Store(true)
		t.Stop()
	}
}

// Every runs fn on the loop at each interval. Ticks that find the inbox full
// are dropped.
func (l *Loop) Every(interval time.Duration, fn func()) engine.Cancel {
	var cancelled atomic.Bool
	stop := make(chan struct{})
	ticker := time.NewTicker(interval)
	tick := func() {
		if !cancelled.Load() {
			fn()
		}
	}
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-l.done:
				return
			case <-ticker.C:
				select {
				case l.inbox <- tick:
				default:
				}
			}
		}
	}()
	var once sync.Once
	return func() {
		cancelled.Store(true)
		once.Do(func() { close(stop) })
	}
}

var _ engine.Clock = (*Loop)(nil)
