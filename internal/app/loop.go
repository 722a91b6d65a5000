package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayusman/signcam/internal/capture"
	"github.com/ayusman/signcam/internal/log"
	"gocv.io/x/gocv"
)

// StopReason says why a capture loop ended.
type StopReason int

const (
	// StopEndOfStream means the camera stopped producing frames.
	StopEndOfStream StopReason = iota
	// StopQuitKey means the user pressed the quit key.
	StopQuitKey
	// StopCancelled means the context was cancelled.
	StopCancelled
)

func (r StopReason) String() string {
	switch r {
	case StopEndOfStream:
		return "end of stream"
	case StopQuitKey:
		return "quit key"
	case StopCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Summary describes a finished capture loop.
type Summary struct {
	Frames int64
	Reason StopReason
}

// LoopConfig configures a CaptureLoop.
type LoopConfig struct {
	Camera    capture.Camera
	Display   capture.Display
	Processor Processor
	Observer  Observer

	QuitKey    rune
	KeyDelayMs int
}

// CaptureLoop owns the camera and the display and paces the pipeline: one
// frame is in flight at a time.
type CaptureLoop struct {
	cfg LoopConfig
}

// NewCaptureLoop validates cfg and creates a CaptureLoop.
func NewCaptureLoop(cfg LoopConfig) (*CaptureLoop, error) {
	switch {
	case cfg.Camera == nil:
		return nil, errors.New("capture loop: camera is required")
	case cfg.Display == nil:
		return nil, errors.New("capture loop: display is required")
	case cfg.Processor == nil:
		return nil, errors.New("capture loop: processor is required")
	}
	if cfg.QuitKey == 0 {
		cfg.QuitKey = 'q'
	}
	if cfg.KeyDelayMs <= 0 {
		cfg.KeyDelayMs = 1
	}
	return &CaptureLoop{cfg: cfg}, nil
}

// Run opens the camera, starts the worker and shows annotated frames until
// the camera fails, the quit key is pressed or ctx is cancelled. It then
// stops the worker, waits for it, and releases the camera and display. The
// camera and display are released on every return path. Only a camera that
// cannot be opened is reported as an error.
func (l *CaptureLoop) Run(ctx context.Context) (Summary, error) {
	defer func() {
		if err := l.cfg.Display.Close(); err != nil {
			log.Warn("closing display failed", "err", err)
		}
	}()

	if err := l.cfg.Camera.Open(); err != nil {
		return Summary{}, fmt.Errorf("camera unavailable: %w", err)
	}
	defer func() {
		if err := l.cfg.Camera.Close(); err != nil {
			log.Warn("closing camera failed", "err", err)
		}
	}()

	in := make(chan *gocv.Mat, 1)
	out := make(chan *gocv.Mat, 1)
	worker := NewWorker(in, out, l.cfg.Processor, l.cfg.Observer)
	go worker.Run()

	reason := l.loop(ctx, in, out)

	close(in)
	for frame := range out {
		frame.Close()
	}
	<-worker.Done()

	log.Info("capture loop stopped", "reason", reason.String(), "frames", worker.Frames())
	return Summary{Frames: worker.Frames(), Reason: reason}, nil
}

func (l *CaptureLoop) loop(ctx context.Context, in chan<- *gocv.Mat, out <-chan *gocv.Mat) StopReason {
	for {
		if ctx.Err() != nil {
			return StopCancelled
		}

		frame, err := l.cfg.Camera.ReadFrame()
		if err != nil {
			log.Debug("camera read ended", "err", err)
			return StopEndOfStream
		}

		in <- frame
		annotated := <-out

		l.cfg.Display.Show(annotated)
		annotated.Close()

		if capture.IsQuitKey(l.cfg.Display.PollKey(l.cfg.KeyDelayMs), l.cfg.QuitKey) {
			return StopQuitKey
		}
	}
}
