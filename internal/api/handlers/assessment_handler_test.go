package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
	apperrors "github.com/avenahealth/clinical-intake/pkg/errors"
)

type stubIntakeService struct {
	assessment *entities.Assessment
	turn       *entities.NormalizationTurn
	prompt     string
	record     *entities.IntakeRecord
	err        error

	gotPhrase string
}

func (s *stubIntakeService) StartAssessment(ctx context.Context, patientID, funnelSlug string) (*entities.Assessment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.assessment, nil
}

func (s *stubIntakeService) NormalizeUtterance(ctx context.Context, assessmentID, phrase string) (*entities.NormalizationTurn, string, error) {
	s.gotPhrase = phrase
	if s.err != nil {
		return nil, "", s.err
	}
	return s.turn, s.prompt, nil
}

func (s *stubIntakeService) GetRecord(ctx context.Context, assessmentID string) (*entities.IntakeRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

func newMux(h *AssessmentHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/assessments", h.StartAssessment)
	mux.HandleFunc("POST /api/assessments/{id}/utterances", h.SubmitUtterance)
	mux.HandleFunc("GET /api/assessments/{id}/record", h.GetIntakeRecord)
	return mux
}

func TestStartAssessmentHandler(t *testing.T) {
	service := &stubIntakeService{assessment: &entities.Assessment{
		ID:         "a1",
		PatientID:  "p1",
		FunnelSlug: "chest-pain",
		Status:     entities.AssessmentStatusInProgress,
	}}
	mux := newMux(NewAssessmentHandler(service))

	req := httptest.NewRequest(http.MethodPost, "/api/assessments",
		strings.NewReader(`{"patient_id":"p1","funnel_slug":"chest-pain"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var got entities.Assessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "a1", got.ID)
	assert.Equal(t, entities.AssessmentStatusInProgress, got.Status)
}

func TestStartAssessmentHandler_InvalidPayload(t *testing.T) {
	mux := newMux(NewAssessmentHandler(&stubIntakeService{}))

	req := httptest.NewRequest(http.MethodPost, "/api/assessments", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartAssessmentHandler_ValidationErrorMapsTo400(t *testing.T) {
	service := &stubIntakeService{err: apperrors.NewValidationError("patient id is required")}
	mux := newMux(NewAssessmentHandler(service))

	req := httptest.NewRequest(http.MethodPost, "/api/assessments",
		strings.NewReader(`{"funnel_slug":"chest-pain"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "patient id is required")
}

func TestSubmitUtteranceHandler(t *testing.T) {
	service := &stubIntakeService{
		turn: &entities.NormalizationTurn{
			TurnID:                "t1",
			DetectedLanguage:      entities.LanguageGerman,
			ClarificationRequired: true,
		},
		prompt: "Können Sie Ihre Beschwerden genauer beschreiben?",
	}
	mux := newMux(NewAssessmentHandler(service))

	req := httptest.NewRequest(http.MethodPost, "/api/assessments/a1/utterances",
		strings.NewReader(`{"phrase":"Brustschmerz"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Brustschmerz", service.gotPhrase)

	var got utteranceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.NotNil(t, got.Turn)
	assert.Equal(t, "t1", got.Turn.TurnID)
	assert.NotEmpty(t, got.ClarificationPrompt)
}

func TestSubmitUtteranceHandler_UnknownAssessmentMapsTo404(t *testing.T) {
	service := &stubIntakeService{err: apperrors.NewNotFoundError("assessment missing not found")}
	mux := newMux(NewAssessmentHandler(service))

	req := httptest.NewRequest(http.MethodPost, "/api/assessments/missing/utterances",
		strings.NewReader(`{"phrase":"Brustschmerz"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitUtteranceHandler_PhraseTooLong(t *testing.T) {
	mux := newMux(NewAssessmentHandler(&stubIntakeService{}))

	body, err := json.Marshal(map[string]string{"phrase": strings.Repeat("a", maxUtteranceLength+1)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/assessments/a1/utterances", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetIntakeRecordHandler(t *testing.T) {
	service := &stubIntakeService{record: &entities.IntakeRecord{
		AssessmentID:   "a1",
		ChiefComplaint: "Brustschmerz",
	}}
	mux := newMux(NewAssessmentHandler(service))

	req := httptest.NewRequest(http.MethodGet, "/api/assessments/a1/record", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got entities.IntakeRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Brustschmerz", got.ChiefComplaint)
}
