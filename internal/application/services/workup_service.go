package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
	"github.com/avenahealth/clinical-intake/internal/domain/providers"
	"github.com/avenahealth/clinical-intake/internal/domain/repositories"
	"github.com/avenahealth/clinical-intake/internal/infrastructure/observability"
	"github.com/avenahealth/clinical-intake/internal/workup"
	"github.com/avenahealth/clinical-intake/pkg/canonical"
)

// WorkupService runs sufficiency checks over assembled evidence packs. The
// evidence-pack hash is the idempotency key: re-checking identical evidence
// under the same ruleset returns the stored verdict instead of writing a new
// one.
type WorkupService struct {
	engine      *workup.Engine
	packs       providers.EvidencePackProvider
	results     repositories.WorkupResultRepository
	assessments repositories.AssessmentRepository
	eventBus    providers.EventBus
	metrics     *observability.Metrics
}

// NewWorkupService creates a new workup service. eventBus and metrics may be nil.
func NewWorkupService(
	engine *workup.Engine,
	packs providers.EvidencePackProvider,
	results repositories.WorkupResultRepository,
	assessments repositories.AssessmentRepository,
	eventBus providers.EventBus,
	metrics *observability.Metrics,
) *WorkupService {
	return &WorkupService{
		engine:      engine,
		packs:       packs,
		results:     results,
		assessments: assessments,
		eventBus:    eventBus,
		metrics:     metrics,
	}
}

// RunCheck builds the assessment's evidence pack, evaluates it and persists
// the verdict. The assessment status follows the verdict.
func (s *WorkupService) RunCheck(ctx context.Context, assessmentID string) (*entities.WorkupResult, error) {
	ctx, span := observability.StartSpan(ctx, "WorkupService.RunCheck")
	defer span.End()

	pack, err := s.packs.Build(ctx, assessmentID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	result, err := s.engine.Check(*pack)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	// Identical evidence under the same ruleset: reuse the stored verdict.
	existing, err := s.results.GetByHash(ctx, assessmentID, result.EvidencePackHash, result.RulesetVersion)
	if err == nil {
		return existing, nil
	}
	if !isNotFound(err) {
		observability.RecordError(span, err)
		return nil, err
	}

	result.ID = uuid.New().String()
	result.CreatedAt = time.Now().UTC()

	if err := s.results.Create(ctx, &result); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	if err := s.assessments.UpdateStatus(ctx, assessmentID, result.Status()); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	if s.metrics != nil {
		observability.RecordWorkupVerdict(ctx, s.metrics, result.RulesetVersion, result.IsSufficient)
	}

	s.publishWorkupCompleted(ctx, pack, &result)

	return &result, nil
}

// History lists all stored verdicts of an assessment, newest first
func (s *WorkupService) History(ctx context.Context, assessmentID string) ([]*entities.WorkupResult, error) {
	return s.results.ListByAssessment(ctx, assessmentID)
}

func (s *WorkupService) publishWorkupCompleted(ctx context.Context, pack *entities.EvidencePack, result *entities.WorkupResult) {
	if s.eventBus == nil {
		return
	}
	logger := observability.LoggerFromContext(ctx)

	payload := map[string]any{
		"is_sufficient":       result.IsSufficient,
		"missing_data_fields": result.MissingDataFields,
		"evidence_pack_hash":  result.EvidencePackHash,
		"ruleset_version":     result.RulesetVersion,
	}
	if reportVersion, err := canonical.BuildReportVersion(pack.FunnelSlug, result.RulesetVersion, pack.PDFTemplateVersion, pack.SectionsData); err == nil {
		payload["report_version"] = reportVersion
	} else {
		logger.Warn().Err(err).Str("assessment_id", result.AssessmentID).Msg("failed to derive report version")
	}

	event := &entities.AssessmentEvent{
		ID:           uuid.New().String(),
		AssessmentID: result.AssessmentID,
		EventType:    entities.EventWorkupCompleted,
		Payload:      payload,
		CreatedAt:    time.Now().UTC(),
	}

	for _, channel := range []string{
		providers.GetAssessmentChannel(result.AssessmentID),
		providers.EventChannelAssessmentUpdates,
	} {
		if err := s.eventBus.Publish(ctx, channel, event); err != nil {
			logger.Warn().Err(err).Str("assessment_id", result.AssessmentID).
				Str("channel", channel).Msg("failed to publish workup event")
		}
	}
}
