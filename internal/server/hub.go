package server

import (
	"context"
	"sync"

	"gocv.io/x/gocv"
)

// Hub holds the most recent annotated frame as JPEG for preview clients.
type Hub struct {
	mu      sync.Mutex
	jpeg    []byte
	seq     uint64
	viewers int
	notify  chan struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{notify: make(chan struct{})}
}

// Publish encodes frame and makes it the latest frame. It does nothing while
// no client is watching.
func (h *Hub) Publish(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() || h.Viewers() == 0 {
		return nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return err
	}
	defer buf.Close()

	h.PublishJPEG(buf.GetBytes())
	return nil
}

// PublishJPEG stores an already encoded frame. data is copied.
func (h *Hub) PublishJPEG(data []byte) {
	frame := make([]byte, len(data))
	copy(frame, data)

	h.mu.Lock()
	h.jpeg = frame
	h.seq++
	close(h.notify)
	h.notify = make(chan struct{})
	h.mu.Unlock()
}

// Next blocks until a frame newer than after is available and returns it
// with its sequence number.
func (h *Hub) Next(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		h.mu.Lock()
		if h.seq > after {
			frame, seq := h.jpeg, h.seq
			h.mu.Unlock()
			return frame, seq, nil
		}
		wait := h.notify
		h.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, after, ctx.Err()
		case <-wait:
		}
	}
}

// Watch registers a viewer and returns a function that unregisters it.
func (h *Hub) Watch() func() {
	h.mu.Lock()
	h.viewers++
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			h.viewers--
			h.mu.Unlock()
		})
	}
}

// Viewers returns the number of connected preview clients.
func (h *Hub) Viewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.viewers
}
