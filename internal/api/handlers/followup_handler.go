package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
)

// FollowupService defines the answer classification operation used by the handler.
type FollowupService interface {
	ClassifyAnswer(ctx context.Context, assessmentID string, askedQuestionIDs []string, askedQuestionText, answerText string) (entities.FollowupAnswerClassification, error)
}

// FollowupHandler handles follow-up answer classification requests
type FollowupHandler struct {
	service FollowupService
}

// NewFollowupHandler creates a new followup handler
func NewFollowupHandler(service FollowupService) *FollowupHandler {
	return &FollowupHandler{service: service}
}

type classifyAnswerRequest struct {
	AskedQuestionIDs  []string `json:"asked_question_ids"`
	AskedQuestionText string   `json:"asked_question_text"`
	AnswerText        string   `json:"answer_text"`
}

type classifyAnswerResponse struct {
	Classification entities.FollowupAnswerClassification `json:"classification"`
}

// ClassifyAnswer handles POST /api/assessments/{id}/followup-answers
func (h *FollowupHandler) ClassifyAnswer(w http.ResponseWriter, r *http.Request) {
	assessmentID := r.PathValue("id")
	if assessmentID == "" {
		respondWithError(w, http.StatusBadRequest, "assessment ID is required")
		return
	}

	var payload classifyAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if len(payload.AnswerText) > maxUtteranceLength {
		respondWithError(w, http.StatusBadRequest, "answer is too long")
		return
	}

	classification, err := h.service.ClassifyAnswer(r.Context(), assessmentID,
		payload.AskedQuestionIDs, payload.AskedQuestionText, payload.AnswerText)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, classifyAnswerResponse{Classification: classification})
}
