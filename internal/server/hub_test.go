package server

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestHub_Next(t *testing.T) {
	h := NewHub()

	t.Run("returns immediately when a newer frame exists", func(t *testing.T) {
		h.PublishJPEG([]byte{1})
		frame, seq, err := h.Next(context.Background(), 0)
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if seq != 1 || !bytes.Equal(frame, []byte{1}) {
			t.Errorf("Next() = %v, %d", frame, seq)
		}
	})

	t.Run("blocks until publish", func(t *testing.T) {
		go func() {
			time.Sleep(20 * time.Millisecond)
			h.PublishJPEG([]byte{2})
		}()

		frame, seq, err := h.Next(context.Background(), 1)
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if seq != 2 || frame[0] != 2 {
			t.Errorf("Next() = %v, %d", frame, seq)
		}
	})

	t.Run("honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		if _, _, err := h.Next(ctx, 2); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Next() error = %v, want deadline exceeded", err)
		}
	})
}

func TestHub_PublishJPEGCopies(t *testing.T) {
	h := NewHub()
	data := []byte{1, 2, 3}
	h.PublishJPEG(data)
	data[0] = 9

	frame, _, _ := h.Next(context.Background(), 0)
	if frame[0] != 1 {
		t.Error("hub should keep its own copy of the frame")
	}
}

func TestHub_Watch(t *testing.T) {
	h := NewHub()

	done := h.Watch()
	if h.Viewers() != 1 {
		t.Fatalf("Viewers() = %d, want 1", h.Viewers())
	}
	done()
	done()
	if h.Viewers() != 0 {
		t.Errorf("Viewers() = %d, want 0 after release", h.Viewers())
	}
}

func TestHub_PublishSkipsWithoutViewers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	h := NewHub()
	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	if err := h.Publish(&frame); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, _, err := h.Next(ctx, 0); err == nil {
		t.Error("frame should not be encoded without viewers")
	}

	defer h.Watch()()
	if err := h.Publish(&frame); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	jpeg, _, err := h.Next(context.Background(), 0)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if len(jpeg) < 2 || jpeg[0] != 0xFF || jpeg[1] != 0xD8 {
		t.Error("published frame is not a JPEG")
	}
}

func TestStreamHandler(t *testing.T) {
	hub := NewHub()
	ts := httptest.NewServer(New(Config{Hub: hub}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/stream", nil)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET /api/stream error = %v", err)
	}
	defer resp.Body.Close()

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/x-mixed-replace" {
		t.Fatalf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}

	// The handler has registered as a viewer once headers arrive.
	if hub.Viewers() != 1 {
		t.Fatalf("Viewers() = %d, want 1", hub.Viewers())
	}
	hub.PublishJPEG([]byte("frame-1"))

	mr := multipart.NewReader(bufio.NewReader(resp.Body), params["boundary"])
	part, err := mr.NextPart()
	if err != nil {
		t.Fatalf("NextPart() error = %v", err)
	}
	if ct := part.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("part Content-Type = %q", ct)
	}
	// The part has no end until the next frame, so read only its payload.
	body := make([]byte, len("frame-1"))
	if _, err := io.ReadFull(part, body); err != nil {
		t.Fatalf("reading part: %v", err)
	}
	if string(body) != "frame-1" {
		t.Errorf("part body = %q, want frame-1", body)
	}
}

func TestStreamHandler_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NewStreamHandler(NewHub()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/stream", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
