//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avenahealth/clinical-intake/internal/adapters/database"
	"github.com/avenahealth/clinical-intake/internal/domain/entities"
)

func TestIntakeRecordAdapterUpsertIntegration(t *testing.T) {
	if os.Getenv("TEST_DB_HOST") == "" {
		t.Skip("Skipping integration test: TEST_DB_HOST not set")
	}

	dbClient := newTestPostgresClient(t)
	defer dbClient.Close()

	db := dbClient.DB()
	runMigrations(t, db, "../../migrations/001_initial_schema.sql")
	cleanupAssessmentData(t, db)
	seedAssessment(t, db, "assessment-rec-1", "chest-pain")

	repo := database.NewIntakeRecordAdapter(dbClient)
	ctx := context.Background()

	record := &entities.IntakeRecord{
		AssessmentID:   "assessment-rec-1",
		FunnelSlug:     "chest-pain",
		ChiefComplaint: "Brustschmerz",
		History:        entities.HistoryOfPresentIllness{Onset: "seit heute"},
		Turns: []entities.NormalizationTurn{{
			TurnID:           "t1",
			Source:           "patient",
			DetectedLanguage: entities.LanguageGerman,
			OriginalPhrase:   "Ich habe seit heute starke Brustschmerzen",
			CreatedAt:        time.Now().UTC().Truncate(time.Second),
		}},
		LastUpdatedAt: time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, repo.Save(ctx, record))

	loaded, err := repo.GetByAssessment(ctx, "assessment-rec-1")
	require.NoError(t, err)
	assert.Equal(t, "Brustschmerz", loaded.ChiefComplaint)
	assert.Equal(t, "seit heute", loaded.History.Onset)
	require.Len(t, loaded.Turns, 1)

	// Second save replaces the stored document
	record.ChiefComplaint = "Brustschmerz mit Ausstrahlung"
	require.NoError(t, repo.Save(ctx, record))

	loaded, err = repo.GetByAssessment(ctx, "assessment-rec-1")
	require.NoError(t, err)
	assert.Equal(t, "Brustschmerz mit Ausstrahlung", loaded.ChiefComplaint)

	cleanupAssessmentData(t, db)
}

func TestWorkupResultAdapterIdempotencyLookupIntegration(t *testing.T) {
	if os.Getenv("TEST_DB_HOST") == "" {
		t.Skip("Skipping integration test: TEST_DB_HOST not set")
	}

	dbClient := newTestPostgresClient(t)
	defer dbClient.Close()

	db := dbClient.DB()
	runMigrations(t, db, "../../migrations/001_initial_schema.sql")
	cleanupAssessmentData(t, db)
	seedAssessment(t, db, "assessment-wr-1", "chest-pain")

	repo := database.NewWorkupResultAdapter(dbClient)
	ctx := context.Background()

	hash := "3f8e2a1b9c0d4e5f3f8e2a1b9c0d4e5f3f8e2a1b9c0d4e5f3f8e2a1b9c0d4e5f"
	result := &entities.WorkupResult{
		ID:                "wr-1",
		AssessmentID:      "assessment-wr-1",
		IsSufficient:      false,
		MissingDataFields: []string{"onset", "duration"},
		FollowUpQuestions: []string{"Seit wann haben Sie die Beschwerden?"},
		EvidencePackHash:  hash,
		RulesetVersion:    "chest-pain-v2",
		CreatedAt:         time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, repo.Create(ctx, result))

	found, err := repo.GetByHash(ctx, "assessment-wr-1", hash, "chest-pain-v2")
	require.NoError(t, err)
	assert.Equal(t, "wr-1", found.ID)
	assert.Equal(t, []string{"onset", "duration"}, found.MissingDataFields)

	history, err := repo.ListByAssessment(ctx, "assessment-wr-1")
	require.NoError(t, err)
	require.Len(t, history, 1)

	cleanupAssessmentData(t, db)
}
