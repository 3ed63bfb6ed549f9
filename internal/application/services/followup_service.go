package services

import (
	"context"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
	"github.com/avenahealth/clinical-intake/internal/domain/repositories"
	"github.com/avenahealth/clinical-intake/internal/followup"
	"github.com/avenahealth/clinical-intake/internal/infrastructure/observability"
)

// FollowupService classifies patient replies to follow-up questions,
// consulting the assessment's latest normalization turn for contradiction
// detection.
type FollowupService struct {
	records repositories.IntakeRecordRepository
}

// NewFollowupService creates a new followup service
func NewFollowupService(records repositories.IntakeRecordRepository) *FollowupService {
	return &FollowupService{records: records}
}

// ClassifyAnswer classifies one reply. A missing intake record is not an
// error; classification then runs without normalization context.
func (s *FollowupService) ClassifyAnswer(ctx context.Context, assessmentID string, askedQuestionIDs []string, askedQuestionText, answerText string) (entities.FollowupAnswerClassification, error) {
	ctx, span := observability.StartSpan(ctx, "FollowupService.ClassifyAnswer")
	defer span.End()

	var turn *entities.NormalizationTurn
	record, err := s.records.GetByAssessment(ctx, assessmentID)
	switch {
	case err == nil:
		turn = record.LatestTurn()
	case isNotFound(err):
		// classify without context
	default:
		observability.RecordError(span, err)
		return "", err
	}

	return followup.Classify(askedQuestionIDs, askedQuestionText, answerText, turn), nil
}
