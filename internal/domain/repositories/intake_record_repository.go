package repositories

import (
	"context"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
)

// IntakeRecordRepository defines the interface for intake record persistence.
// Save is a full-record upsert: the core returns complete new record states
// and the repository stores them verbatim.
type IntakeRecordRepository interface {
	GetByAssessment(ctx context.Context, assessmentID string) (*entities.IntakeRecord, error)
	Save(ctx context.Context, record *entities.IntakeRecord) error
}
