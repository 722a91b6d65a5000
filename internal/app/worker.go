package app

import (
	"sync/atomic"

	"github.com/ayusman/signcam/internal/recognizer"
	"gocv.io/x/gocv"
)

// State is the lifecycle state of a Worker.
type State int32

const (
	// StateRunning means the worker is consuming frames.
	StateRunning State = iota
	// StateStopped means the inbound channel was closed and the worker exited.
	StateStopped
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "stopped"
}

// Processor annotates one frame in place.
type Processor interface {
	Process(frame *gocv.Mat) recognizer.Result
}

// Observer is told about every processed frame before it is handed back.
// The frame must not be retained after Observe returns.
type Observer interface {
	Observe(frame *gocv.Mat, result recognizer.Result)
}

// Worker turns raw frames into annotated frames. Frames arrive on the inbound
// channel and leave, in the same order and one for one, on the outbound
// channel. Closing the inbound channel stops the worker, which then closes
// the outbound channel without sending anything further.
type Worker struct {
	in        <-chan *gocv.Mat
	out       chan<- *gocv.Mat
	processor Processor
	observer  Observer

	state  atomic.Int32
	frames atomic.Int64
	done   chan struct{}
}

// NewWorker creates a Worker. observer may be nil.
func NewWorker(in <-chan *gocv.Mat, out chan<- *gocv.Mat, processor Processor, observer Observer) *Worker {
	return &Worker{
		in:        in,
		out:       out,
		processor: processor,
		observer:  observer,
		done:      make(chan struct{}),
	}
}

// Run processes frames until the inbound channel is closed.
func (w *Worker) Run() {
	w.state.Store(int32(StateRunning))
	defer func() {
		w.state.Store(int32(StateStopped))
		close(w.out)
		close(w.done)
	}()

	for frame := range w.in {
		result := w.processor.Process(frame)
		if w.observer != nil {
			w.observer.Observe(frame, result)
		}
		w.frames.Add(1)
		w.out <- frame
	}
}

// State returns the worker's current state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Frames returns the number of frames processed so far.
func (w *Worker) Frames() int64 {
	return w.frames.Load()
}

// Done is closed once Run has returned.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}
