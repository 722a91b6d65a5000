package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ayusman/signcam/internal/store"
)

// MaxHistoryLimit caps the number of predictions returned by /api/history.
const MaxHistoryLimit = 500

// HistoryHandler serves GET /api/history.
type HistoryHandler struct {
	store *store.Store
}

// NewHistoryHandler creates a HistoryHandler backed by s.
func NewHistoryHandler(s *store.Store) *HistoryHandler {
	return &HistoryHandler{store: s}
}

// PredictionResponse is the JSON form of a recorded prediction, shared by
// /api/history and the /api/predictions websocket. Box is [x1, y1, x2, y2].
type PredictionResponse struct {
	ID         int64   `json:"id"`
	SessionID  string  `json:"session_id"`
	Label      string  `json:"label"`
	Confidence float32 `json:"confidence"`
	Handedness string  `json:"handedness,omitempty"`
	Box        [4]int  `json:"box"`
	CreatedAt  string  `json:"created_at"`
}

type historyResponse struct {
	Predictions []PredictionResponse `json:"predictions"`
}

// NewPredictionResponse converts a stored prediction.
func NewPredictionResponse(p *store.Prediction) PredictionResponse {
	return PredictionResponse{
		ID:         p.ID,
		SessionID:  p.SessionID,
		Label:      p.Label,
		Confidence: p.Confidence,
		Handedness: p.Handedness,
		Box:        [4]int{p.Box.Min.X, p.Box.Min.Y, p.Box.Max.X, p.Box.Max.Y},
		CreatedAt:  p.CreatedAt.Format(timeFormat),
	}
}

// ServeHTTP returns a session's predictions when ?session= is given, and the
// most recent predictions otherwise. ?limit= bounds the recent list.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(n, MaxHistoryLimit)
	}

	var (
		predictions []*store.Prediction
		err         error
	)
	if session := r.URL.Query().Get("session"); session != "" {
		if _, err := h.store.Sessions().GetByID(session); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Session not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to get session")
			return
		}
		predictions, err = h.store.Predictions().ListBySession(session)
	} else {
		predictions, err = h.store.Predictions().Recent(limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list predictions")
		return
	}

	response := historyResponse{Predictions: make([]PredictionResponse, 0, len(predictions))}
	for _, p := range predictions {
		response.Predictions = append(response.Predictions, NewPredictionResponse(p))
	}
	writeJSON(w, http.StatusOK, response)
}
