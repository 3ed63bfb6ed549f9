package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
	"github.com/avenahealth/clinical-intake/internal/domain/repositories"
	"github.com/avenahealth/clinical-intake/internal/infrastructure/clients/postgres"
	apperrors "github.com/avenahealth/clinical-intake/pkg/errors"
)

// IntakeRecordAdapter implements IntakeRecordRepository. The record body is
// persisted as one JSONB document: the normalization pipeline always produces
// complete new record states, so the adapter never patches individual fields.
type IntakeRecordAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewIntakeRecordAdapter creates a new intake record adapter
func NewIntakeRecordAdapter(client *postgres.Client) repositories.IntakeRecordRepository {
	return &IntakeRecordAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByAssessment retrieves the intake record of an assessment
func (a *IntakeRecordAdapter) GetByAssessment(ctx context.Context, assessmentID string) (*entities.IntakeRecord, error) {
	query, args, err := a.db.Select("record").
		From("intake_records").
		Where(goqu.Ex{"assessment_id": assessmentID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var payload []byte
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("intake record for assessment %s not found", assessmentID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get intake record", err)
	}

	record := &entities.IntakeRecord{}
	if err := json.Unmarshal(payload, record); err != nil {
		return nil, apperrors.NewInternalError("failed to unmarshal intake record", err)
	}

	return record, nil
}

// Save upserts the full intake record state
func (a *IntakeRecordAdapter) Save(ctx context.Context, record *entities.IntakeRecord) error {
	if record.AssessmentID == "" {
		return apperrors.NewValidationError("intake record has no assessment id")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal intake record", err)
	}

	row := goqu.Record{
		"assessment_id": record.AssessmentID,
		"funnel_slug":   record.FunnelSlug,
		"record":        payload,
		"updated_at":    time.Now().UTC(),
	}

	query, args, err := a.db.Insert("intake_records").
		Rows(row).
		OnConflict(goqu.DoUpdate("assessment_id", goqu.Record{
			"funnel_slug": record.FunnelSlug,
			"record":      payload,
			"updated_at":  time.Now().UTC(),
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err = a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to save intake record", err)
	}

	return nil
}
