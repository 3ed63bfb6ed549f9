package normalization

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	kb := DefaultKnowledgeBase()
	require.NoError(t, kb.Validate())
	return NewNormalizer(kb)
}

func TestNormalize_BlankPhraseShortCircuits(t *testing.T) {
	n := newTestNormalizer(t)
	record := entities.IntakeRecord{AssessmentID: "a1"}

	updated, turn, prompt := n.Normalize(record, "t1", "   ", time.Now())

	assert.Nil(t, turn)
	assert.Empty(t, prompt)
	assert.Empty(t, updated.Turns)
	assert.True(t, updated.LastUpdatedAt.IsZero())
}

func TestNormalize_GermanChestPainUtterance(t *testing.T) {
	n := newTestNormalizer(t)
	now := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

	updated, turn, prompt := n.Normalize(entities.IntakeRecord{AssessmentID: "a1"}, "t1",
		"Ich habe seit heute starke Brustschmerzen", now)

	require.NotNil(t, turn)
	assert.Equal(t, entities.LanguageGerman, turn.DetectedLanguage)

	canonicals := make([]string, 0, len(turn.MappedEntities))
	for _, e := range turn.MappedEntities {
		canonicals = append(canonicals, e.CanonicalName)
	}
	assert.Contains(t, canonicals, "chest_pain")
	assert.Contains(t, canonicals, "high_intensity")
	assert.Contains(t, canonicals, "acute_hours")

	assert.Less(t, turn.AmbiguityScore, ClarificationThreshold)
	assert.False(t, turn.ClarificationRequired)
	assert.Empty(t, prompt)
	assert.Equal(t, now, updated.LastUpdatedAt)
	assert.Empty(t, updated.PendingClarifications)
}

func TestNormalize_UnmatchedPhraseIsMaximallyAmbiguous(t *testing.T) {
	n := newTestNormalizer(t)

	_, turn, prompt := n.Normalize(entities.IntakeRecord{}, "t1", "xyzzy frobnitz", time.Now())

	require.NotNil(t, turn)
	assert.Empty(t, turn.MappedEntities)
	assert.Equal(t, 1.0, turn.AmbiguityScore)
	assert.True(t, turn.ClarificationRequired)
	assert.Contains(t, prompt, `"xyzzy frobnitz"`)
	assert.Equal(t, entities.LanguageUnknown, turn.DetectedLanguage)
}

func TestNormalize_EnglishPromptForEnglishUtterance(t *testing.T) {
	n := newTestNormalizer(t)

	_, turn, prompt := n.Normalize(entities.IntakeRecord{}, "t1", "i have a weird thing", time.Now())

	require.NotNil(t, turn)
	assert.Equal(t, entities.LanguageEnglish, turn.DetectedLanguage)
	assert.Contains(t, prompt, "Did you mean a symptom")
}

func TestNormalize_MixedLanguageDetection(t *testing.T) {
	n := newTestNormalizer(t)

	_, turn, _ := n.Normalize(entities.IntakeRecord{}, "t1", "Ich habe chest pain", time.Now())

	require.NotNil(t, turn)
	assert.Equal(t, entities.LanguageMixed, turn.DetectedLanguage)
}

func TestNormalize_DiacriticInsensitiveMatching(t *testing.T) {
	n := newTestNormalizer(t)

	_, turn, _ := n.Normalize(entities.IntakeRecord{}, "t1", "Mir ist übel, ich habe Übelkeit", time.Now())

	require.NotNil(t, turn)
	found := false
	for _, e := range turn.MappedEntities {
		if e.CanonicalName == "nausea" {
			found = true
		}
	}
	assert.True(t, found, "expected nausea entity from 'Übelkeit'")
}

func TestNormalize_TurnLogEvictsOldestAtCap(t *testing.T) {
	n := newTestNormalizer(t)
	record := entities.IntakeRecord{AssessmentID: "a1"}
	now := time.Now()

	for i := 0; i < MaxTurns+1; i++ {
		record, _, _ = n.Normalize(record, fmt.Sprintf("t%d", i), fmt.Sprintf("unmatched phrase %d", i), now)
	}

	require.Len(t, record.Turns, MaxTurns)
	// Oldest turn (t0) was evicted first
	assert.Equal(t, "t1", record.Turns[0].TurnID)
	assert.Equal(t, fmt.Sprintf("t%d", MaxTurns), record.Turns[MaxTurns-1].TurnID)
}

func TestNormalize_PendingClarificationsCapped(t *testing.T) {
	n := newTestNormalizer(t)
	record := entities.IntakeRecord{AssessmentID: "a1"}

	for i := 0; i < MaxPendingClarifications+5; i++ {
		record, _, _ = n.Normalize(record, fmt.Sprintf("t%d", i), fmt.Sprintf("gibberish %d", i), time.Now())
	}

	assert.Len(t, record.PendingClarifications, MaxPendingClarifications)
	assert.Equal(t, "t5", record.PendingClarifications[0].TurnID)
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	n := newTestNormalizer(t)
	record := entities.IntakeRecord{AssessmentID: "a1"}

	updated, _, _ := n.Normalize(record, "t1", "Kopfschmerzen", time.Now())

	assert.Empty(t, record.Turns, "input record must stay untouched")
	assert.Len(t, updated.Turns, 1)
}

func TestNormalize_DeduplicatesExactEntityHits(t *testing.T) {
	n := newTestNormalizer(t)

	_, turn, _ := n.Normalize(entities.IntakeRecord{}, "t1", "Fieber und nochmal Fieber", time.Now())

	require.NotNil(t, turn)
	count := 0
	for _, e := range turn.MappedEntities {
		if e.CanonicalName == "fever" && e.SourcePhrase == "fieber" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAmbiguityScore_Rounding(t *testing.T) {
	mapped := []entities.CanonicalEntity{
		{Confidence: 0.9},
		{Confidence: 0.8},
		{Confidence: 0.8},
	}
	// 1 - 0.8333... = 0.1666... -> 0.17
	assert.InDelta(t, 0.17, ambiguityScore(mapped), 1e-9)
}

func TestLoadKnowledgeBase_InvalidConfidenceRejected(t *testing.T) {
	kb := KnowledgeBase{
		Candidates: []EntityCandidate{
			{Type: entities.EntityTypeSymptom, Canonical: "x", Aliases: []string{"x"}, Confidence: 1.5},
		},
		GermanMarkers:  []string{"ich"},
		EnglishMarkers: []string{"i"},
	}
	assert.Error(t, kb.Validate())
}
