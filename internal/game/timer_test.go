package game

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTickerFiresAndStops(t *testing.T) {
	var ticks atomic.Int64
	tk := NewTicker(10*time.Millisecond, func(time.Duration) {
		ticks.Add(1)
	})
	time.Sleep(60 * time.Millisecond)
	tk.Stop()
	time.Sleep(20 * time.Millisecond) // let an in-flight tick land
	got := ticks.Load()
	if got == 0 {
		t.Fatal("ticker never fired")
	}
	time.Sleep(40 * time.Millisecond)
	if after := ticks.Load(); after != got {
		t.Errorf("ticker fired after Stop: %d -> %d", got, after)
	}
}

func TestTickerStopIdempotent(t *testing.T) {
	tk := NewTicker(time.Hour, func(time.Duration) {})
	tk.Stop()
	tk.Stop() // must not panic
}
