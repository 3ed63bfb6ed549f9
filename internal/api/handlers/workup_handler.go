package handlers

import (
	"context"
	"net/http"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
)

// WorkupService defines the sufficiency check operations used by the handler.
type WorkupService interface {
	RunCheck(ctx context.Context, assessmentID string) (*entities.WorkupResult, error)
	History(ctx context.Context, assessmentID string) ([]*entities.WorkupResult, error)
}

// WorkupHandler handles workup sufficiency check requests
type WorkupHandler struct {
	service WorkupService
}

// NewWorkupHandler creates a new workup handler
func NewWorkupHandler(service WorkupService) *WorkupHandler {
	return &WorkupHandler{service: service}
}

// RunCheck handles POST /api/assessments/{id}/workup-checks
func (h *WorkupHandler) RunCheck(w http.ResponseWriter, r *http.Request) {
	assessmentID := r.PathValue("id")
	if assessmentID == "" {
		respondWithError(w, http.StatusBadRequest, "assessment ID is required")
		return
	}

	result, err := h.service.RunCheck(r.Context(), assessmentID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetHistory handles GET /api/assessments/{id}/workup-checks
func (h *WorkupHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	assessmentID := r.PathValue("id")
	if assessmentID == "" {
		respondWithError(w, http.StatusBadRequest, "assessment ID is required")
		return
	}

	results, err := h.service.History(r.Context(), assessmentID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}
