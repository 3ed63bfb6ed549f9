package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/avenahealth/clinical-intake/internal/evaluation"
	"github.com/avenahealth/clinical-intake/internal/infrastructure/observability"
	"github.com/avenahealth/clinical-intake/internal/normalization"
	"github.com/avenahealth/clinical-intake/pkg/config"
)

func main() {
	var goldenPath string
	flag.StringVar(&goldenPath, "golden", "", "path to the golden utterance file (overrides GOLDEN_UTTERANCES_CONFIG)")
	flag.Parse()

	observability.InitLogger("clinical-intake-evaluate", os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if goldenPath == "" {
		goldenPath = cfg.Knowledge.GoldenUtterancesPath
	}

	kb := normalization.DefaultKnowledgeBase()
	if cfg.Knowledge.ClinicalEntitiesPath != "" {
		kb, err = normalization.LoadKnowledgeBase(cfg.Knowledge.ClinicalEntitiesPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Knowledge.ClinicalEntitiesPath).
				Msg("failed to load clinical entities")
		}
	}

	utterances, err := evaluation.LoadGoldenUtterances(goldenPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", goldenPath).Msg("failed to load golden utterances")
	}
	if err := evaluation.ValidateGoldenUtterances(utterances); err != nil {
		log.Fatal().Err(err).Msg("invalid golden utterances")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := evaluation.NewRunner(normalization.NewNormalizer(kb))
	summary, err := runner.Run(ctx, utterances)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluation run failed")
	}

	log.Info().
		Int("utterances", summary.TotalUtterances).
		Float64("avg_precision", summary.AvgPrecision).
		Float64("avg_recall", summary.AvgRecall).
		Float64("language_accuracy", summary.LanguageAccuracy).
		Float64("clarification_rate", summary.ClarificationRate).
		Dur("avg_latency", summary.AvgLatency).
		Msg("evaluation summary")

	for language, ls := range summary.ByLanguage {
		log.Info().
			Str("language", string(language)).
			Int("utterances", ls.Count).
			Float64("avg_precision", ls.AvgPrecision).
			Float64("avg_recall", ls.AvgRecall).
			Msg("per-language summary")
	}

	guardrails := evaluation.NewGuardrails(evaluation.DefaultGuardrailConfig())
	violations := guardrails.Check(summary)
	if len(violations) > 0 {
		for _, v := range violations {
			log.Error().Str("violation", v).Msg("guardrail violated")
		}
		os.Exit(1)
	}

	log.Info().Msg("all guardrails passed")
}
