package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/avenahealth/clinical-intake/pkg/config"
	"github.com/avenahealth/clinical-intake/pkg/retry"
)

const (
	// VocabularyCollection holds the canonical clinical entity table with its
	// alias phrases, powering patient-facing symptom autocomplete.
	VocabularyCollection = "clinical_vocabulary"
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	// Test connection with retry
	err := retry.DoWithLog(
		context.Background(),
		retry.DefaultConfig(),
		"Typesense",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := client.Health(ctx, 2*time.Second)
			return err
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).
				Msg("Typesense connection attempt failed, retrying")
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	log.Info().Msg("connected to Typesense")
	return &Client{client: client}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// InitSchema ensures the clinical vocabulary collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	for _, col := range collections {
		if col.Name == VocabularyCollection {
			log.Debug().Str("collection", VocabularyCollection).Msg("Typesense collection already exists")
			return nil
		}
	}

	schema := &api.CollectionSchema{
		Name: VocabularyCollection,
		Fields: []api.Field{
			{
				Name: "id",
				Type: "string",
			},
			{
				Name: "canonical_name",
				Type: "string",
			},
			{
				Name:  "entity_type",
				Type:  "string",
				Facet: pointer.True(),
			},
			{
				Name: "aliases",
				Type: "string[]",
			},
			{
				Name: "confidence",
				Type: "float",
			},
		},
		DefaultSortingField: pointer.String("confidence"),
	}

	if _, err := c.client.Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Info().Str("collection", VocabularyCollection).Msg("created Typesense collection")
	return nil
}

// IndexEntity indexes one vocabulary document
func (c *Client) IndexEntity(ctx context.Context, document map[string]interface{}) error {
	_, err := c.client.Collection(VocabularyCollection).Documents().Upsert(ctx, document)
	return err
}
