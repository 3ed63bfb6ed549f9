package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
	"github.com/avenahealth/clinical-intake/internal/domain/providers"
	"github.com/avenahealth/clinical-intake/internal/domain/repositories"
	"github.com/avenahealth/clinical-intake/internal/infrastructure/observability"
	"github.com/avenahealth/clinical-intake/internal/visitprep"
	"github.com/avenahealth/clinical-intake/pkg/canonical"
)

// visitPrepCacheTTLSeconds bounds how long a cached brief survives; the cache
// key already changes with the record content, so the TTL only limits storage.
const visitPrepCacheTTLSeconds = 3600

// VisitPrepService produces the clinician-facing visit preparation brief,
// cached per intake-record content hash.
type VisitPrepService struct {
	records repositories.IntakeRecordRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewVisitPrepService creates a new visit prep service. cache and metrics may
// be nil.
func NewVisitPrepService(records repositories.IntakeRecordRepository, cache providers.CacheProvider, metrics *observability.Metrics) *VisitPrepService {
	return &VisitPrepService{records: records, cache: cache, metrics: metrics}
}

// GetSummary builds (or serves from cache) the brief for an assessment. A
// missing intake record yields the all-empty summary, not an error.
func (s *VisitPrepService) GetSummary(ctx context.Context, assessmentID string) (*entities.VisitPreparationSummary, error) {
	ctx, span := observability.StartSpan(ctx, "VisitPrepService.GetSummary")
	defer span.End()

	record, err := s.records.GetByAssessment(ctx, assessmentID)
	if err != nil {
		if isNotFound(err) {
			summary := visitprep.Summarize(nil)
			return &summary, nil
		}
		observability.RecordError(span, err)
		return nil, err
	}

	cacheKey, keyErr := s.cacheKey(assessmentID, record)
	if s.cache != nil && keyErr == nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			summary := &entities.VisitPreparationSummary{}
			if err := json.Unmarshal(cached, summary); err == nil {
				if s.metrics != nil {
					observability.RecordCacheHit(ctx, s.metrics, cacheKey)
				}
				return summary, nil
			}
		}
		if s.metrics != nil {
			observability.RecordCacheMiss(ctx, s.metrics, cacheKey)
		}
	}

	summary := visitprep.Summarize(record)

	if s.cache != nil && keyErr == nil {
		if data, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data, visitPrepCacheTTLSeconds); err != nil {
				observability.LoggerFromContext(ctx).Warn().Err(err).
					Str("assessment_id", assessmentID).Msg("failed to cache visit prep summary")
			}
		}
	}

	return &summary, nil
}

// cacheKey derives the cache key from the record content so stale briefs are
// never served after the intake changes.
func (s *VisitPrepService) cacheKey(assessmentID string, record *entities.IntakeRecord) (string, error) {
	hash, err := canonical.Hash(record)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("visitprep:%s:%s", assessmentID, hash[:16]), nil
}
