package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
	"github.com/avenahealth/clinical-intake/internal/domain/repositories"
	"github.com/avenahealth/clinical-intake/internal/infrastructure/clients/postgres"
	apperrors "github.com/avenahealth/clinical-intake/pkg/errors"
)

// uniqueViolation is the postgres error code for duplicate key inserts.
const uniqueViolation pq.ErrorCode = "23505"

// AssessmentAdapter implements AssessmentRepository
type AssessmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAssessmentAdapter creates a new assessment adapter
func NewAssessmentAdapter(client *postgres.Client) repositories.AssessmentRepository {
	return &AssessmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new assessment
func (a *AssessmentAdapter) Create(ctx context.Context, assessment *entities.Assessment) error {
	if !assessment.Status.IsValid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid assessment status %q", assessment.Status))
	}

	record := goqu.Record{
		"id":          assessment.ID,
		"patient_id":  assessment.PatientID,
		"funnel_slug": assessment.FunnelSlug,
		"status":      string(assessment.Status),
		"created_at":  assessment.CreatedAt,
		"updated_at":  assessment.UpdatedAt,
	}

	query, args, err := a.db.Insert("assessments").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err = a.client.DB().ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperrors.NewConflictError(fmt.Sprintf("assessment with id %s already exists", assessment.ID))
		}
		return apperrors.NewInternalError("failed to create assessment", err)
	}

	return nil
}

// GetByID retrieves an assessment by ID
func (a *AssessmentAdapter) GetByID(ctx context.Context, id string) (*entities.Assessment, error) {
	query, args, err := a.db.Select(
		"id", "patient_id", "funnel_slug", "status", "created_at", "updated_at",
	).From("assessments").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	assessment := &entities.Assessment{}
	var status string

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&assessment.ID,
		&assessment.PatientID,
		&assessment.FunnelSlug,
		&status,
		&assessment.CreatedAt,
		&assessment.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("assessment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get assessment", err)
	}

	assessment.Status = entities.AssessmentStatus(status)
	return assessment, nil
}

// UpdateStatus updates the review status of an assessment
func (a *AssessmentAdapter) UpdateStatus(ctx context.Context, id string, status entities.AssessmentStatus) error {
	if !status.IsValid() {
		return apperrors.NewValidationError(fmt.Sprintf("invalid assessment status %q", status))
	}

	query, args, err := a.db.Update("assessments").
		Set(goqu.Record{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update assessment status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("assessment with id %s not found", id))
	}

	return nil
}
