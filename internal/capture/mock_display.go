package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDisplay records shown frames and replays scripted key presses.
type MockDisplay struct {
	mu     sync.Mutex
	shown  [][]byte
	keys   map[int]int
	polls  int
	closes int
	onShow func(n int)
}

// NewMockDisplay returns a display that never reports a key press.
func NewMockDisplay() *MockDisplay {
	return &MockDisplay{keys: make(map[int]int)}
}

// PressAt makes the poll following the nth shown frame (1-based) return key.
func (d *MockDisplay) PressAt(n int, key int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys[n] = key
}

// OnShow registers a callback invoked with the number of frames shown so far.
func (d *MockDisplay) OnShow(fn func(n int)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onShow = fn
}

func (d *MockDisplay) Show(frame *gocv.Mat) {
	d.mu.Lock()
	var data []byte
	if frame != nil && !frame.Empty() {
		data = frame.ToBytes()
	}
	d.shown = append(d.shown, data)
	n, fn := len(d.shown), d.onShow
	d.mu.Unlock()

	if fn != nil {
		fn(n)
	}
}

func (d *MockDisplay) PollKey(delayMs int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.polls++
	if key, ok := d.keys[len(d.shown)]; ok {
		delete(d.keys, len(d.shown))
		return key
	}
	return NoKey
}

func (d *MockDisplay) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closes++
	return nil
}

// Shown returns the raw bytes of every frame shown, in order.
func (d *MockDisplay) Shown() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]byte, len(d.shown))
	copy(out, d.shown)
	return out
}

// Closes returns the number of Close calls.
func (d *MockDisplay) Closes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closes
}
