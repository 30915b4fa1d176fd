package controller

import (
	"sync"
	"time"
)

// fpsCounter reports completed frames per second over a window that restarts
// once more than a second has elapsed.
type fpsCounter struct {
	mu     sync.Mutex
	frames int
	start  time.Time
}

func newFPSCounter(now time.Time) *fpsCounter {
	return &fpsCounter{start: now}
}

// tick records one completed frame at now and returns the current rate.
func (f *fpsCounter) tick(now time.Time) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.frames++
	elapsed := now.Sub(f.start).Seconds()
	if elapsed <= 0 {
		return 0
	}
	fps := float64(f.frames) / elapsed
	if elapsed > 1 {
		f.frames = 0
		f.start = now
	}
	return fps
}
