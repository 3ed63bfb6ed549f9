//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avenahealth/clinical-intake/internal/adapters/database"
	"github.com/avenahealth/clinical-intake/internal/adapters/events"
	"github.com/avenahealth/clinical-intake/internal/application/services"
	"github.com/avenahealth/clinical-intake/internal/domain/entities"
	"github.com/avenahealth/clinical-intake/internal/domain/providers"
	"github.com/avenahealth/clinical-intake/internal/normalization"
)

func TestRedisEventBusFanoutIntegration(t *testing.T) {
	if os.Getenv("TEST_REDIS_HOST") == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}

	redisClient := newTestRedisClient(t)
	defer redisClient.Close()

	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	channel := providers.EventChannelAssessmentUpdates
	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel1()
	defer cancel2()

	sub1, err := eventBus.Subscribe(ctx1, channel)
	require.NoError(t, err)
	sub2, err := eventBus.Subscribe(ctx2, channel)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	event := &entities.AssessmentEvent{
		ID:           uuid.New().String(),
		AssessmentID: "assessment-redis-1",
		EventType:    entities.EventIntakeUpdated,
		Payload:      map[string]any{"turn_id": "t1"},
		CreatedAt:    time.Now().UTC(),
	}

	err = eventBus.Publish(context.Background(), channel, event)
	require.NoError(t, err)

	received1 := waitForAssessmentEvent(t, sub1)
	received2 := waitForAssessmentEvent(t, sub2)

	assert.Equal(t, event.ID, received1.ID)
	assert.Equal(t, event.ID, received2.ID)
}

func TestIntakeService_NormalizeUtterance_PublishesEvent(t *testing.T) {
	if os.Getenv("TEST_DB_HOST") == "" || os.Getenv("TEST_REDIS_HOST") == "" {
		t.Skip("Skipping integration test: TEST_DB_HOST or TEST_REDIS_HOST not set")
	}

	dbClient := newTestPostgresClient(t)
	defer dbClient.Close()

	db := dbClient.DB()
	runMigrations(t, db, "../../migrations/001_initial_schema.sql")
	cleanupAssessmentData(t, db)
	seedAssessment(t, db, "assessment-evt-1", "chest-pain")

	redisClient := newTestRedisClient(t)
	defer redisClient.Close()

	eventBus := events.NewRedisEventBus(redisClient)
	defer eventBus.Close()

	assessmentRepo := database.NewAssessmentAdapter(dbClient)
	recordRepo := database.NewIntakeRecordAdapter(dbClient)
	normalizer := normalization.NewNormalizer(normalization.DefaultKnowledgeBase())

	service := services.NewIntakeService(normalizer, assessmentRepo, recordRepo, eventBus, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channel := providers.GetAssessmentChannel("assessment-evt-1")
	eventChan, err := eventBus.Subscribe(ctx, channel)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	turn, _, err := service.NormalizeUtterance(ctx, "assessment-evt-1", "Ich habe seit heute starke Brustschmerzen")
	require.NoError(t, err)
	require.NotNil(t, turn)

	received := waitForAssessmentEvent(t, eventChan)
	assert.Equal(t, entities.EventIntakeUpdated, received.EventType)
	assert.Equal(t, "assessment-evt-1", received.AssessmentID)
	assert.Equal(t, turn.TurnID, received.Payload["turn_id"])

	cleanupAssessmentData(t, db)
}

func waitForAssessmentEvent(t *testing.T, ch <-chan *entities.AssessmentEvent) *entities.AssessmentEvent {
	t.Helper()
	select {
	case event := <-ch:
		require.NotNil(t, event)
		return event
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for assessment event")
		return nil
	}
}
