package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
	apperrors "github.com/avenahealth/clinical-intake/pkg/errors"
)

// maxUtteranceLength bounds patient free-text input accepted over the API.
const maxUtteranceLength = 2000

// IntakeService defines the intake operations used by the handler.
type IntakeService interface {
	StartAssessment(ctx context.Context, patientID, funnelSlug string) (*entities.Assessment, error)
	NormalizeUtterance(ctx context.Context, assessmentID, phrase string) (*entities.NormalizationTurn, string, error)
	GetRecord(ctx context.Context, assessmentID string) (*entities.IntakeRecord, error)
}

// AssessmentHandler handles assessment lifecycle and utterance requests
type AssessmentHandler struct {
	service IntakeService
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(service IntakeService) *AssessmentHandler {
	return &AssessmentHandler{service: service}
}

type startAssessmentRequest struct {
	PatientID  string `json:"patient_id"`
	FunnelSlug string `json:"funnel_slug"`
}

// StartAssessment handles POST /api/assessments
func (h *AssessmentHandler) StartAssessment(w http.ResponseWriter, r *http.Request) {
	var payload startAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	assessment, err := h.service.StartAssessment(r.Context(), strings.TrimSpace(payload.PatientID), strings.TrimSpace(payload.FunnelSlug))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, assessment)
}

type utteranceRequest struct {
	Phrase string `json:"phrase"`
}

type utteranceResponse struct {
	Turn                *entities.NormalizationTurn `json:"turn"`
	ClarificationPrompt string                      `json:"clarification_prompt,omitempty"`
}

// SubmitUtterance handles POST /api/assessments/{id}/utterances
func (h *AssessmentHandler) SubmitUtterance(w http.ResponseWriter, r *http.Request) {
	assessmentID := r.PathValue("id")
	if assessmentID == "" {
		respondWithError(w, http.StatusBadRequest, "assessment ID is required")
		return
	}

	var payload utteranceRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if len(payload.Phrase) > maxUtteranceLength {
		respondWithError(w, http.StatusBadRequest, "phrase is too long")
		return
	}

	turn, prompt, err := h.service.NormalizeUtterance(r.Context(), assessmentID, payload.Phrase)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, utteranceResponse{
		Turn:                turn,
		ClarificationPrompt: prompt,
	})
}

// GetIntakeRecord handles GET /api/assessments/{id}/record
func (h *AssessmentHandler) GetIntakeRecord(w http.ResponseWriter, r *http.Request) {
	assessmentID := r.PathValue("id")
	if assessmentID == "" {
		respondWithError(w, http.StatusBadRequest, "assessment ID is required")
		return
	}

	record, err := h.service.GetRecord(r.Context(), assessmentID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, record)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps application error types onto HTTP status codes.
// Internal detail is never echoed back to the patient.
func respondWithAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeConflict:
			respondWithError(w, http.StatusConflict, appErr.Message)
		default:
			respondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}
