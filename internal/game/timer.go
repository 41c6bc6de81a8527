// internal/game/timer.go
//
// Cancellable periodic timer task tied to a session's lifetime. The UI-facing
// tick (elapsed-seconds display) maps onto this: a repeating callback that is
// explicitly stopped on win or reset rather than left running.

package game

import (
	"sync"
	"time"
)

// Ticker invokes a callback at a fixed interval until stopped.
type Ticker struct {
	done chan struct{}
	once sync.Once
}

// NewTicker starts a goroutine calling fn every interval. Stop terminates it;
// Stop is idempotent and safe from any goroutine.
func NewTicker(interval time.Duration, fn func(elapsed time.Duration)) *Ticker {
	t := &Ticker{done: make(chan struct{})}
	start := time.Now()
	go func() {
		tk := time.NewTicker(interval)
		defer tk.Stop()
		for {
			select {
			case <-t.done:
				return
			case now := <-tk.C:
				fn(now.Sub(start))
			}
		}
	}()
	return t
}

// Stop cancels the periodic task. Subsequent calls are no-ops.
func (t *Ticker) Stop() {
	t.once.Do(func() { close(t.done) })
}
