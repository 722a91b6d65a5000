package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// NoKey is returned by PollKey when no key was pressed.
const NoKey = -1

// Display shows frames and reports key presses.
//
// HighGUI windows must be driven from the goroutine that created them, which
// on macOS has to be the main thread.
type Display interface {
	Show(frame *gocv.Mat)
	// PollKey waits up to delayMs for a key press and returns its code,
	// or NoKey.
	PollKey(delayMs int) int
	Close() error
}

type windowDisplay struct {
	window *gocv.Window
	once   sync.Once
}

// NewWindow opens a named HighGUI window.
func NewWindow(name string) Display {
	return &windowDisplay{window: gocv.NewWindow(name)}
}

func (d *windowDisplay) Show(frame *gocv.Mat) {
	if frame == nil || frame.Empty() {
		return
	}
	d.window.IMShow(*frame)
}

func (d *windowDisplay) PollKey(delayMs int) int {
	if delayMs < 1 {
		delayMs = 1
	}
	return d.window.WaitKey(delayMs)
}

func (d *windowDisplay) Close() error {
	var err error
	d.once.Do(func() {
		err = d.window.Close()
	})
	return err
}

// IsQuitKey reports whether key, as returned by PollKey, is quit.
// Only the low byte of the key code is compared.
func IsQuitKey(key int, quit rune) bool {
	return key != NoKey && key&0xFF == int(quit)&0xFF
}
