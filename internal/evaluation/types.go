// Package evaluation measures normalization quality against a labeled set of
// golden utterances. It is an offline harness: results feed release decisions
// for vocabulary changes, not runtime behavior.
package evaluation

import (
	"time"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
)

// GoldenUtterance is one labeled patient phrase with its expected outcomes.
type GoldenUtterance struct {
	ID                 string                    `json:"id"`
	Phrase             string                    `json:"phrase"`
	ExpectedLanguage   entities.DetectedLanguage `json:"expected_language"`
	ExpectedCanonicals []string                  `json:"expected_canonicals"`
	Difficulty         string                    `json:"difficulty"` // easy, medium, hard
}

// UtteranceResult holds the evaluation outcome for a single utterance.
type UtteranceResult struct {
	UtteranceID           string
	Phrase                string
	DetectedLanguage      entities.DetectedLanguage
	LanguageCorrect       bool
	Precision             float64
	Recall                float64
	AmbiguityScore        float64
	ClarificationRequired bool
	MappedCanonicals      []string
	Latency               time.Duration
}

// EvalSummary holds aggregate metrics across all golden utterances.
type EvalSummary struct {
	TotalUtterances   int
	AvgPrecision      float64
	AvgRecall         float64
	LanguageAccuracy  float64
	ClarificationRate float64
	AvgLatency        time.Duration
	ByLanguage        map[entities.DetectedLanguage]*LanguageSummary
}

// LanguageSummary holds metrics grouped by expected language.
type LanguageSummary struct {
	Count        int
	AvgPrecision float64
	AvgRecall    float64
}
