package handlers

import (
	"context"
	"net/http"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
)

// VisitPrepService defines the summary operation used by the handler.
type VisitPrepService interface {
	GetSummary(ctx context.Context, assessmentID string) (*entities.VisitPreparationSummary, error)
}

// VisitPrepHandler handles visit preparation summary requests
type VisitPrepHandler struct {
	service VisitPrepService
}

// NewVisitPrepHandler creates a new visit prep handler
func NewVisitPrepHandler(service VisitPrepService) *VisitPrepHandler {
	return &VisitPrepHandler{service: service}
}

// GetSummary handles GET /api/assessments/{id}/visit-preparation
func (h *VisitPrepHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	assessmentID := r.PathValue("id")
	if assessmentID == "" {
		respondWithError(w, http.StatusBadRequest, "assessment ID is required")
		return
	}

	summary, err := h.service.GetSummary(r.Context(), assessmentID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}
