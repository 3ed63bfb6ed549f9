package repositories

import (
	"context"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
)

// AssessmentRepository defines the interface for assessment operations.
type AssessmentRepository interface {
	Create(ctx context.Context, assessment *entities.Assessment) error
	GetByID(ctx context.Context, id string) (*entities.Assessment, error)
	UpdateStatus(ctx context.Context, id string, status entities.AssessmentStatus) error
}
