package api

import (
	"net/http"

	"github.com/ayusman/signcam/internal/store"
)

// LabelsHandler serves GET /api/labels: the class ordering of the last run.
type LabelsHandler struct {
	store *store.Store
}

// NewLabelsHandler creates a LabelsHandler backed by s.
func NewLabelsHandler(s *store.Store) *LabelsHandler {
	return &LabelsHandler{store: s}
}

type labelsResponse struct {
	Labels []string `json:"labels"`
}

func (h *LabelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	labels, err := h.store.Labels().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list labels")
		return
	}
	if labels == nil {
		labels = []string{}
	}
	writeJSON(w, http.StatusOK, labelsResponse{Labels: labels})
}
