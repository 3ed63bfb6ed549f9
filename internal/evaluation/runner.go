package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
	"github.com/avenahealth/clinical-intake/internal/normalization"
)

// Runner runs the normalizer across a set of golden utterances.
type Runner struct {
	normalizer *normalization.Normalizer
}

func NewRunner(normalizer *normalization.Normalizer) *Runner {
	return &Runner{normalizer: normalizer}
}

// Run evaluates every utterance against a fresh intake record so results stay
// independent of each other.
func (r *Runner) Run(ctx context.Context, utterances []GoldenUtterance) (*EvalSummary, error) {
	summary := &EvalSummary{
		TotalUtterances: len(utterances),
		ByLanguage:      make(map[entities.DetectedLanguage]*LanguageSummary),
	}

	for i, gu := range utterances {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("evaluation aborted: %w", err)
		}

		start := time.Now()
		_, turn, _ := r.normalizer.Normalize(entities.IntakeRecord{}, fmt.Sprintf("eval-%d", i), gu.Phrase, time.Now())
		latency := time.Since(start)
		if turn == nil {
			continue
		}

		mapped := uniqueCanonicals(turn.MappedEntities)
		result := UtteranceResult{
			UtteranceID:           gu.ID,
			Phrase:                gu.Phrase,
			DetectedLanguage:      turn.DetectedLanguage,
			LanguageCorrect:       turn.DetectedLanguage == gu.ExpectedLanguage,
			Precision:             Precision(gu.ExpectedCanonicals, mapped),
			Recall:                Recall(gu.ExpectedCanonicals, mapped),
			AmbiguityScore:        turn.AmbiguityScore,
			ClarificationRequired: turn.ClarificationRequired,
			MappedCanonicals:      mapped,
			Latency:               latency,
		}

		r.updateSummary(summary, gu, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func uniqueCanonicals(mapped []entities.CanonicalEntity) []string {
	out := make([]string, 0, len(mapped))
	seen := make(map[string]struct{}, len(mapped))
	for _, e := range mapped {
		if _, dup := seen[e.CanonicalName]; dup {
			continue
		}
		seen[e.CanonicalName] = struct{}{}
		out = append(out, e.CanonicalName)
	}
	return out
}

func (r *Runner) updateSummary(s *EvalSummary, gu GoldenUtterance, res UtteranceResult) {
	s.AvgPrecision += res.Precision
	s.AvgRecall += res.Recall
	s.AvgLatency += res.Latency
	if res.LanguageCorrect {
		s.LanguageAccuracy++
	}
	if res.ClarificationRequired {
		s.ClarificationRate++
	}

	if _, ok := s.ByLanguage[gu.ExpectedLanguage]; !ok {
		s.ByLanguage[gu.ExpectedLanguage] = &LanguageSummary{}
	}
	ls := s.ByLanguage[gu.ExpectedLanguage]
	ls.Count++
	ls.AvgPrecision += res.Precision
	ls.AvgRecall += res.Recall
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalUtterances > 0 {
		n := float64(s.TotalUtterances)
		s.AvgPrecision /= n
		s.AvgRecall /= n
		s.LanguageAccuracy /= n
		s.ClarificationRate /= n
		s.AvgLatency /= time.Duration(s.TotalUtterances)
	}

	for _, ls := range s.ByLanguage {
		if ls.Count > 0 {
			n := float64(ls.Count)
			ls.AvgPrecision /= n
			ls.AvgRecall /= n
		}
	}
}
