package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avenahealth/clinical-intake/internal/adapters/search"
	"github.com/avenahealth/clinical-intake/internal/infrastructure/clients/typesense"
	"github.com/avenahealth/clinical-intake/internal/infrastructure/observability"
	"github.com/avenahealth/clinical-intake/internal/normalization"
	"github.com/avenahealth/clinical-intake/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	observability.InitLogger("clinical-intake-indexer", os.Getenv("APP_ENV"))

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Str("interval", intervalValue).Err(err).Msg("invalid interval")
		}
		if interval <= 0 {
			log.Fatal().Msg("interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("next_run_in", interval).Msg("reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("indexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	kb := normalization.DefaultKnowledgeBase()
	if cfg.Knowledge.ClinicalEntitiesPath != "" {
		kb, err = normalization.LoadKnowledgeBase(cfg.Knowledge.ClinicalEntitiesPath)
		if err != nil {
			return err
		}
	}

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Info().Msg("deleting clinical vocabulary collection")
		if _, err := tsClient.Client().Collection(typesense.VocabularyCollection).Delete(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to delete collection")
		}
	}

	if err := tsClient.InitSchema(ctx); err != nil {
		return err
	}

	adapter := search.NewVocabularyAdapter(tsClient)

	log.Info().Int("candidates", len(kb.Candidates)).Msg("indexing clinical vocabulary")
	if err := adapter.IndexKnowledgeBase(ctx, kb); err != nil {
		return err
	}

	log.Info().Msg("indexing complete")
	return nil
}
