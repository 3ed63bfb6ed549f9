package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
	"github.com/avenahealth/clinical-intake/internal/domain/repositories"
	"github.com/avenahealth/clinical-intake/internal/infrastructure/clients/postgres"
	apperrors "github.com/avenahealth/clinical-intake/pkg/errors"
)

// WorkupResultAdapter implements WorkupResultRepository
type WorkupResultAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewWorkupResultAdapter creates a new workup result adapter
func NewWorkupResultAdapter(client *postgres.Client) repositories.WorkupResultRepository {
	return &WorkupResultAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create stores a new workup verdict
func (a *WorkupResultAdapter) Create(ctx context.Context, result *entities.WorkupResult) error {
	record := goqu.Record{
		"id":                  result.ID,
		"assessment_id":       result.AssessmentID,
		"is_sufficient":       result.IsSufficient,
		"missing_data_fields": pq.Array(result.MissingDataFields),
		"follow_up_questions": pq.Array(result.FollowUpQuestions),
		"evidence_pack_hash":  result.EvidencePackHash,
		"ruleset_version":     result.RulesetVersion,
		"created_at":          result.CreatedAt,
	}

	query, args, err := a.db.Insert("workup_results").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err = a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create workup result", err)
	}

	return nil
}

// GetByHash retrieves the most recent verdict for an evidence-pack hash under
// a ruleset version
func (a *WorkupResultAdapter) GetByHash(ctx context.Context, assessmentID, evidencePackHash, rulesetVersion string) (*entities.WorkupResult, error) {
	query, args, err := a.selectColumns().
		Where(goqu.Ex{
			"assessment_id":      assessmentID,
			"evidence_pack_hash": evidencePackHash,
			"ruleset_version":    rulesetVersion,
		}).
		Order(goqu.I("created_at").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	result, err := a.scanResult(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no workup result for hash %s", evidencePackHash))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get workup result", err)
	}

	return result, nil
}

// ListByAssessment retrieves all verdicts of an assessment, newest first
func (a *WorkupResultAdapter) ListByAssessment(ctx context.Context, assessmentID string) ([]*entities.WorkupResult, error) {
	query, args, err := a.selectColumns().
		Where(goqu.Ex{"assessment_id": assessmentID}).
		Order(goqu.I("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list workup results", err)
	}
	defer rows.Close()

	var results []*entities.WorkupResult
	for rows.Next() {
		result, err := a.scanResult(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan workup result", err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating workup results", err)
	}

	return results, nil
}

func (a *WorkupResultAdapter) selectColumns() *goqu.SelectDataset {
	return a.db.Select(
		"id", "assessment_id", "is_sufficient", "missing_data_fields",
		"follow_up_questions", "evidence_pack_hash", "ruleset_version", "created_at",
	).From("workup_results")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (a *WorkupResultAdapter) scanResult(row rowScanner) (*entities.WorkupResult, error) {
	result := &entities.WorkupResult{}
	err := row.Scan(
		&result.ID,
		&result.AssessmentID,
		&result.IsSufficient,
		pq.Array(&result.MissingDataFields),
		pq.Array(&result.FollowUpQuestions),
		&result.EvidencePackHash,
		&result.RulesetVersion,
		&result.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}
