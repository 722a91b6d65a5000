package app

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ayusman/signcam/internal/log"
	"github.com/ayusman/signcam/internal/plugin"
	"github.com/ayusman/signcam/internal/recognizer"
	"github.com/ayusman/signcam/internal/server/api"
	"github.com/ayusman/signcam/internal/store"
	"gocv.io/x/gocv"
)

// PredictionSink persists predictions.
type PredictionSink interface {
	Create(p *store.Prediction) error
}

// FramePublisher receives every annotated frame.
type FramePublisher interface {
	Publish(frame *gocv.Mat) error
}

// Broadcaster pushes recorded predictions to live clients.
type Broadcaster interface {
	Broadcast(v any) error
}

// EventDispatcher hands recognized signs to plugins.
type EventDispatcher interface {
	Dispatch(req plugin.Request) bool
}

// RecorderConfig wires a Recorder's outputs. Nil outputs are skipped.
type RecorderConfig struct {
	SessionID   string
	Predictions PredictionSink
	Frames      FramePublisher
	Broadcaster Broadcaster
	Plugins     EventDispatcher
}

// Recorder is an Observer that records each newly recognized sign. A sign is
// new when it differs from the last label recorded for the same hand; a
// frame with no recognized hand forgets the last labels. Predictions are
// broadcast in the same shape /api/history serves.
type Recorder struct {
	cfg  RecorderConfig
	mu   sync.Mutex
	last map[string]string
	now  func() time.Time
}

// NewRecorder creates a Recorder.
func NewRecorder(cfg RecorderConfig) *Recorder {
	return &Recorder{
		cfg:  cfg,
		last: make(map[string]string),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Observe implements Observer.
func (r *Recorder) Observe(frame *gocv.Mat, result recognizer.Result) {
	if r.cfg.Frames != nil {
		if err := r.cfg.Frames.Publish(frame); err != nil {
			log.Warn("publishing preview frame failed", "err", err)
		}
	}

	for _, hand := range r.fresh(result) {
		r.record(hand)
	}
}

// fresh returns the recognized hands whose label changed since the last frame.
func (r *Recorder) fresh(result recognizer.Result) []recognizer.HandResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	recognized := result.Recognized()
	if len(recognized) == 0 {
		clear(r.last)
		return nil
	}

	var out []recognizer.HandResult
	for i, key := range handKeys(recognized) {
		hand := recognized[i]
		if last, ok := r.last[key]; ok && last == hand.Label {
			continue
		}
		r.last[key] = hand.Label
		out = append(out, hand)
	}
	return out
}

// handKeys names each hand by its handedness. The detector may report the
// same handedness twice in one frame; such hands are told apart by their
// left-to-right position.
func handKeys(hands []recognizer.HandResult) []string {
	order := make([]int, len(hands))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Or(
			strings.Compare(hands[a].Handedness, hands[b].Handedness),
			cmp.Compare(hands[a].Box.Min.X, hands[b].Box.Min.X),
		)
	})

	keys := make([]string, len(hands))
	rank := make(map[string]int)
	for _, i := range order {
		h := hands[i].Handedness
		keys[i] = h + "#" + strconv.Itoa(rank[h])
		rank[h]++
	}
	return keys
}

func (r *Recorder) record(hand recognizer.HandResult) {
	p := &store.Prediction{
		SessionID:  r.cfg.SessionID,
		Label:      hand.Label,
		Confidence: hand.Confidence,
		Handedness: hand.Handedness,
		Box:        hand.Box,
		CreatedAt:  r.now(),
	}

	log.Info("sign recognized", "label", p.Label, "confidence", p.Confidence, "hand", p.Handedness)

	if r.cfg.Predictions != nil {
		if err := r.cfg.Predictions.Create(p); err != nil {
			log.Warn("saving prediction failed", "err", err)
		}
	}
	if r.cfg.Broadcaster != nil {
		if err := r.cfg.Broadcaster.Broadcast(api.NewPredictionResponse(p)); err != nil {
			log.Warn("broadcasting prediction failed", "err", err)
		}
	}
	if r.cfg.Plugins != nil {
		r.cfg.Plugins.Dispatch(plugin.Request{
			Action:     plugin.ActionRecognized,
			Label:      p.Label,
			Confidence: p.Confidence,
			Handedness: p.Handedness,
			SessionID:  p.SessionID,
			Timestamp:  p.CreatedAt,
		})
	}
}
