package detector

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.StaticImageMode {
		t.Error("expected static image mode")
	}
	if cfg.MinConfidence != 0.3 {
		t.Errorf("MinConfidence = %f, want 0.3", cfg.MinConfidence)
	}
	if cfg.MaxHands != 2 {
		t.Errorf("MaxHands = %d, want 2", cfg.MaxHands)
	}
}

func TestHandLandmarks_Complete(t *testing.T) {
	tests := []struct {
		name string
		hand *HandLandmarks
		want bool
	}{
		{"nil hand", nil, false},
		{"full hand", func() *HandLandmarks { h := SignALandmarks(); return &h }(), true},
		{"partial hand", func() *HandLandmarks { h := PartialLandmarks(15); return &h }(), false},
		{"empty hand", &HandLandmarks{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hand.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandConnections_InRange(t *testing.T) {
	for _, c := range HandConnections {
		if c.From < 0 || c.From >= NumLandmarks || c.To < 0 || c.To >= NumLandmarks {
			t.Errorf("connection %v out of range", c)
		}
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
		if mock.Calls() != 1 {
			t.Errorf("Calls() = %d, want 1", mock.Calls())
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{SignALandmarks(), OpenPalmLandmarks()})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestPresetLandmarks_Normalized(t *testing.T) {
	for name, hand := range map[string]HandLandmarks{
		"sign A":    SignALandmarks(),
		"open palm": OpenPalmLandmarks(),
	} {
		t.Run(name, func(t *testing.T) {
			if len(hand.Points) != NumLandmarks {
				t.Fatalf("expected %d points, got %d", NumLandmarks, len(hand.Points))
			}
			for i, p := range hand.Points {
				if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
					t.Errorf("point %d (%f,%f) outside [0,1]", i, p.X, p.Y)
				}
			}
		})
	}
}

func TestPartialLandmarks(t *testing.T) {
	if got := len(PartialLandmarks(10).Points); got != 10 {
		t.Errorf("expected 10 points, got %d", got)
	}
	if got := len(PartialLandmarks(50).Points); got != NumLandmarks {
		t.Errorf("expected clamp to %d points, got %d", NumLandmarks, got)
	}
}

func TestWriteFrame(t *testing.T) {
	t.Run("writes header and pixels", func(t *testing.T) {
		var buf bytes.Buffer
		pixels := bytes.Repeat([]byte{1, 2, 3}, 2*4)

		if err := writeFrame(&buf, 2, 4, pixels); err != nil {
			t.Fatalf("writeFrame() error = %v", err)
		}

		out := buf.Bytes()
		if len(out) != 8+len(pixels) {
			t.Fatalf("wrote %d bytes, want %d", len(out), 8+len(pixels))
		}
		if rows := binary.BigEndian.Uint32(out[0:4]); rows != 2 {
			t.Errorf("rows = %d, want 2", rows)
		}
		if cols := binary.BigEndian.Uint32(out[4:8]); cols != 4 {
			t.Errorf("cols = %d, want 4", cols)
		}
		if !bytes.Equal(out[8:], pixels) {
			t.Error("pixel payload mismatch")
		}
	})

	t.Run("rejects wrong payload size", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeFrame(&buf, 2, 2, []byte{0, 0, 0}); err == nil {
			t.Error("expected error for short payload")
		}
		if buf.Len() != 0 {
			t.Error("nothing should be written for an invalid frame")
		}
	})
}

func TestReadHands(t *testing.T) {
	t.Run("parses hands", func(t *testing.T) {
		line := `{"hands":[{"points":[{"x":0.1,"y":0.2,"z":0},{"x":0.3,"y":0.4,"z":0}],"handedness":"Left","score":0.8}]}` + "\n"

		hands, err := readHands(bufio.NewReader(strings.NewReader(line)))
		if err != nil {
			t.Fatalf("readHands() error = %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}
		if hands[0].Handedness != "Left" || hands[0].Score != 0.8 {
			t.Errorf("unexpected hand metadata: %+v", hands[0])
		}
		if len(hands[0].Points) != 2 {
			t.Errorf("partial hand should keep its 2 points, got %d", len(hands[0].Points))
		}
		if hands[0].Complete() {
			t.Error("partial hand should not be complete")
		}
	})

	t.Run("no hands", func(t *testing.T) {
		hands, err := readHands(bufio.NewReader(strings.NewReader(`{"hands":[]}` + "\n")))
		if err != nil {
			t.Fatalf("readHands() error = %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected no hands, got %d", len(hands))
		}
	})

	t.Run("service error", func(t *testing.T) {
		_, err := readHands(bufio.NewReader(strings.NewReader(`{"error":"bad frame"}` + "\n")))
		if err == nil || !strings.Contains(err.Error(), "bad frame") {
			t.Errorf("expected service error, got %v", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		if _, err := readHands(bufio.NewReader(strings.NewReader("not json\n"))); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("closed pipe", func(t *testing.T) {
		if _, err := readHands(bufio.NewReader(strings.NewReader(""))); err == nil {
			t.Error("expected read error")
		}
	})
}

func TestMediaPipeDetector_Args(t *testing.T) {
	d := &MediaPipeDetector{config: DefaultConfig(), scriptPath: "/opt/mediapipe_service.py"}

	args := strings.Join(d.args(), " ")
	for _, want := range []string{
		"/opt/mediapipe_service.py",
		"--static-image-mode=true",
		"--max-hands=2",
		"--min-detection-confidence=0.3",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
}

func TestMediaPipeDetector_CloseNotStarted(t *testing.T) {
	d := &MediaPipeDetector{config: DefaultConfig()}
	if err := d.Close(); err != nil {
		t.Errorf("Close() on idle detector = %v, want nil", err)
	}
}
