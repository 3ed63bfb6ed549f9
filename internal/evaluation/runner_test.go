package evaluation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
	"github.com/avenahealth/clinical-intake/internal/normalization"
)

func TestRunner_Run(t *testing.T) {
	runner := NewRunner(normalization.NewNormalizer(normalization.DefaultKnowledgeBase()))

	utterances := []GoldenUtterance{
		{
			ID:                 "g1",
			Phrase:             "Ich habe seit heute starke Brustschmerzen",
			ExpectedLanguage:   entities.LanguageGerman,
			ExpectedCanonicals: []string{"chest_pain", "high_intensity", "acute_hours"},
			Difficulty:         "easy",
		},
		{
			ID:                 "g2",
			Phrase:             "xyzzy frobnitz",
			ExpectedLanguage:   entities.LanguageUnknown,
			ExpectedCanonicals: []string{},
			Difficulty:         "hard",
		},
	}

	summary, err := runner.Run(context.Background(), utterances)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalUtterances)
	// g1 maps all three expected canonicals; g2 maps nothing against an empty
	// expectation, so both score perfect precision and recall.
	assert.Equal(t, 1.0, summary.AvgPrecision)
	assert.Equal(t, 1.0, summary.AvgRecall)
	assert.Equal(t, 1.0, summary.LanguageAccuracy)
	// only the gibberish utterance requires clarification
	assert.Equal(t, 0.5, summary.ClarificationRate)

	require.Contains(t, summary.ByLanguage, entities.LanguageGerman)
	assert.Equal(t, 1, summary.ByLanguage[entities.LanguageGerman].Count)
}

func TestRunner_RunHonorsContextCancellation(t *testing.T) {
	runner := NewRunner(normalization.NewNormalizer(normalization.DefaultKnowledgeBase()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, []GoldenUtterance{validUtterance("g1")})
	assert.Error(t, err)
}
