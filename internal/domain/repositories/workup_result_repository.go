package repositories

import (
	"context"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
)

// WorkupResultRepository defines the interface for workup verdict storage.
type WorkupResultRepository interface {
	Create(ctx context.Context, result *entities.WorkupResult) error

	// GetByHash returns the stored verdict for an evidence-pack hash under the
	// given ruleset version, or a not-found error. Callers use it to avoid
	// re-storing identical verdicts.
	GetByHash(ctx context.Context, assessmentID, evidencePackHash, rulesetVersion string) (*entities.WorkupResult, error)

	ListByAssessment(ctx context.Context, assessmentID string) ([]*entities.WorkupResult, error)
}
