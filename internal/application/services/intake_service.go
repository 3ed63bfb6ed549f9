package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
	"github.com/avenahealth/clinical-intake/internal/domain/providers"
	"github.com/avenahealth/clinical-intake/internal/domain/repositories"
	"github.com/avenahealth/clinical-intake/internal/infrastructure/observability"
	"github.com/avenahealth/clinical-intake/internal/normalization"
	apperrors "github.com/avenahealth/clinical-intake/pkg/errors"
)

// IntakeService orchestrates utterance normalization: it loads the current
// intake state, runs the normalizer, persists the updated record and publishes
// assessment events.
type IntakeService struct {
	normalizer  *normalization.Normalizer
	assessments repositories.AssessmentRepository
	records     repositories.IntakeRecordRepository
	eventBus    providers.EventBus
	metrics     *observability.Metrics
}

// NewIntakeService creates a new intake service. eventBus and metrics may be
// nil; normalization then runs without publishing or instrumentation.
func NewIntakeService(
	normalizer *normalization.Normalizer,
	assessments repositories.AssessmentRepository,
	records repositories.IntakeRecordRepository,
	eventBus providers.EventBus,
	metrics *observability.Metrics,
) *IntakeService {
	return &IntakeService{
		normalizer:  normalizer,
		assessments: assessments,
		records:     records,
		eventBus:    eventBus,
		metrics:     metrics,
	}
}

// StartAssessment creates a new assessment in progress
func (s *IntakeService) StartAssessment(ctx context.Context, patientID, funnelSlug string) (*entities.Assessment, error) {
	if patientID == "" {
		return nil, apperrors.NewValidationError("patient id is required")
	}

	now := time.Now().UTC()
	assessment := &entities.Assessment{
		ID:         uuid.New().String(),
		PatientID:  patientID,
		FunnelSlug: funnelSlug,
		Status:     entities.AssessmentStatusInProgress,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.assessments.Create(ctx, assessment); err != nil {
		return nil, err
	}
	return assessment, nil
}

// NormalizeUtterance runs one patient utterance through the normalizer and
// persists the updated intake record. It returns the appended turn and the
// clarification prompt, both empty for blank input.
func (s *IntakeService) NormalizeUtterance(ctx context.Context, assessmentID, phrase string) (*entities.NormalizationTurn, string, error) {
	ctx, span := observability.StartSpan(ctx, "IntakeService.NormalizeUtterance")
	defer span.End()

	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, "", err
	}

	record, err := s.records.GetByAssessment(ctx, assessmentID)
	if err != nil {
		if !isNotFound(err) {
			observability.RecordError(span, err)
			return nil, "", err
		}
		// First utterance of this assessment
		record = &entities.IntakeRecord{
			AssessmentID: assessmentID,
			FunnelSlug:   assessment.FunnelSlug,
		}
	}

	turnID := uuid.New().String()
	updated, turn, prompt := s.normalizer.Normalize(*record, turnID, phrase, time.Now().UTC())
	if turn == nil {
		return nil, "", nil
	}

	if err := s.records.Save(ctx, &updated); err != nil {
		observability.RecordError(span, err)
		return nil, "", err
	}

	if s.metrics != nil {
		observability.RecordNormalizationTurn(ctx, s.metrics, assessment.FunnelSlug, turn.AmbiguityScore, turn.ClarificationRequired)
	}

	s.publishIntakeEvents(ctx, assessmentID, turn, prompt)

	return turn, prompt, nil
}

// GetRecord returns the stored intake record of an assessment
func (s *IntakeService) GetRecord(ctx context.Context, assessmentID string) (*entities.IntakeRecord, error) {
	return s.records.GetByAssessment(ctx, assessmentID)
}

// publishIntakeEvents emits intake.updated and, when a clarification is
// required, clarification.requested. Publish failures are logged, never
// surfaced: persistence already succeeded.
func (s *IntakeService) publishIntakeEvents(ctx context.Context, assessmentID string, turn *entities.NormalizationTurn, prompt string) {
	if s.eventBus == nil {
		return
	}
	logger := observability.LoggerFromContext(ctx)

	events := []*entities.AssessmentEvent{{
		ID:           uuid.New().String(),
		AssessmentID: assessmentID,
		EventType:    entities.EventIntakeUpdated,
		Payload: map[string]any{
			"turn_id":           turn.TurnID,
			"detected_language": string(turn.DetectedLanguage),
			"ambiguity_score":   turn.AmbiguityScore,
		},
		CreatedAt: time.Now().UTC(),
	}}

	if prompt != "" {
		events = append(events, &entities.AssessmentEvent{
			ID:           uuid.New().String(),
			AssessmentID: assessmentID,
			EventType:    entities.EventClarificationRequested,
			Payload: map[string]any{
				"turn_id": turn.TurnID,
				"prompt":  prompt,
			},
			CreatedAt: time.Now().UTC(),
		})
	}

	channel := providers.GetAssessmentChannel(assessmentID)
	for _, event := range events {
		if err := s.eventBus.Publish(ctx, channel, event); err != nil {
			logger.Warn().Err(err).Str("assessment_id", assessmentID).
				Str("event_type", string(event.EventType)).Msg("failed to publish intake event")
		}
		if err := s.eventBus.Publish(ctx, providers.EventChannelAssessmentUpdates, event); err != nil {
			logger.Warn().Err(err).Str("assessment_id", assessmentID).
				Str("event_type", string(event.EventType)).Msg("failed to publish intake event")
		}
	}
}

func isNotFound(err error) bool {
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeNotFound
}
