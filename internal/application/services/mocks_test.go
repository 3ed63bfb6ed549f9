package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
	apperrors "github.com/avenahealth/clinical-intake/pkg/errors"
)

type memAssessmentRepo struct {
	mu          sync.Mutex
	assessments map[string]*entities.Assessment
}

func newMemAssessmentRepo(seed ...*entities.Assessment) *memAssessmentRepo {
	repo := &memAssessmentRepo{assessments: make(map[string]*entities.Assessment)}
	for _, a := range seed {
		repo.assessments[a.ID] = a
	}
	return repo
}

func (r *memAssessmentRepo) Create(ctx context.Context, assessment *entities.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.assessments[assessment.ID]; exists {
		return apperrors.NewConflictError("assessment already exists")
	}
	r.assessments[assessment.ID] = assessment
	return nil
}

func (r *memAssessmentRepo) GetByID(ctx context.Context, id string) (*entities.Assessment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assessment, ok := r.assessments[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("assessment %s not found", id))
	}
	return assessment, nil
}

func (r *memAssessmentRepo) UpdateStatus(ctx context.Context, id string, status entities.AssessmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	assessment, ok := r.assessments[id]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("assessment %s not found", id))
	}
	assessment.Status = status
	return nil
}

type memIntakeRepo struct {
	mu      sync.Mutex
	records map[string]*entities.IntakeRecord
	saves   int
	reads   int
}

func newMemIntakeRepo(seed ...*entities.IntakeRecord) *memIntakeRepo {
	repo := &memIntakeRepo{records: make(map[string]*entities.IntakeRecord)}
	for _, record := range seed {
		repo.records[record.AssessmentID] = record
	}
	return repo
}

func (r *memIntakeRepo) GetByAssessment(ctx context.Context, assessmentID string) (*entities.IntakeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	record, ok := r.records[assessmentID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("intake record for %s not found", assessmentID))
	}
	clone := record.Clone()
	return &clone, nil
}

func (r *memIntakeRepo) Save(ctx context.Context, record *entities.IntakeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	clone := record.Clone()
	r.records[record.AssessmentID] = &clone
	return nil
}

type memWorkupRepo struct {
	mu      sync.Mutex
	results []*entities.WorkupResult
}

func (r *memWorkupRepo) Create(ctx context.Context, result *entities.WorkupResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *result
	r.results = append(r.results, &stored)
	return nil
}

func (r *memWorkupRepo) GetByHash(ctx context.Context, assessmentID, evidencePackHash, rulesetVersion string) (*entities.WorkupResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.results) - 1; i >= 0; i-- {
		result := r.results[i]
		if result.AssessmentID == assessmentID &&
			result.EvidencePackHash == evidencePackHash &&
			result.RulesetVersion == rulesetVersion {
			return result, nil
		}
	}
	return nil, apperrors.NewNotFoundError("no workup result for hash")
}

func (r *memWorkupRepo) ListByAssessment(ctx context.Context, assessmentID string) ([]*entities.WorkupResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var results []*entities.WorkupResult
	for i := len(r.results) - 1; i >= 0; i-- {
		if r.results[i].AssessmentID == assessmentID {
			results = append(results, r.results[i])
		}
	}
	return results, nil
}

type publishedEvent struct {
	channel string
	event   *entities.AssessmentEvent
}

type memEventBus struct {
	mu        sync.Mutex
	published []publishedEvent
}

func (b *memEventBus) Publish(ctx context.Context, channel string, event *entities.AssessmentEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, publishedEvent{channel: channel, event: event})
	return nil
}

func (b *memEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.AssessmentEvent, error) {
	ch := make(chan *entities.AssessmentEvent)
	close(ch)
	return ch, nil
}

func (b *memEventBus) Unsubscribe(ctx context.Context, channel string) error { return nil }

func (b *memEventBus) Close() error { return nil }

func (b *memEventBus) eventTypes() []entities.AssessmentEventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	types := make([]entities.AssessmentEventType, 0, len(b.published))
	for _, p := range b.published {
		types = append(types, p.event.EventType)
	}
	return types
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	if !ok {
		return nil, fmt.Errorf("key not found: %s", key)
	}
	c.hits++
	return value, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok, nil
}
